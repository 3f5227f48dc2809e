package graph

import (
	"sort"
	"strconv"

	"smatch/lexgraph/internal/augment"
)

// RelationCount is the number of edges carrying one relation name
type RelationCount struct {
	RelName  string `json:"rel_name"`
	Edges    int    `json:"edges"`
	MaxDepth int    `json:"max_depth"`
}

// DepthBucket counts edges at one depth
type DepthBucket struct {
	Depth int `json:"depth"`
	Count int `json:"count"`
}

// RelationReport breaks the edge set down by relation, depth and provenance
type RelationReport struct {
	Relations  []RelationCount `json:"relations"`
	Depths     []DepthBucket   `json:"depths"`
	Provenance map[string]int  `json:"provenance"`
	Imported   int             `json:"imported"`
	Inferred   int             `json:"inferred"`
}

// ComputeRelations counts edges per relation name, per depth and per
// provenance tag. Edges tagged inferredTag count as inferred.
func ComputeRelations(snap *GraphSnapshot, inferredTag string) *RelationReport {
	byRel := make(map[string]*RelationCount)
	byDepth := make(map[int]int)
	report := &RelationReport{Provenance: make(map[string]int)}

	for _, e := range snap.Edges {
		rc, ok := byRel[e.RelName]
		if !ok {
			rc = &RelationCount{RelName: e.RelName}
			byRel[e.RelName] = rc
		}
		rc.Edges++
		rc.MaxDepth = max(rc.MaxDepth, e.Depth)
		byDepth[e.Depth]++

		tag := e.Provenance
		if tag == "" {
			tag = "(none)"
		}
		report.Provenance[tag]++
		if e.Provenance == inferredTag {
			report.Inferred++
		} else {
			report.Imported++
		}
	}

	for _, rc := range byRel {
		report.Relations = append(report.Relations, *rc)
	}
	sort.Slice(report.Relations, func(i, j int) bool {
		a, b := report.Relations[i], report.Relations[j]
		if a.Edges != b.Edges {
			return a.Edges > b.Edges
		}
		return a.RelName < b.RelName
	})

	for d, n := range byDepth {
		report.Depths = append(report.Depths, DepthBucket{Depth: d, Count: n})
	}
	sort.Slice(report.Depths, func(i, j int) bool { return report.Depths[i].Depth < report.Depths[j].Depth })
	return report
}

// DepthLabel renders a depth for display
func DepthLabel(d int) string {
	if d == 1 {
		return "1 (direct)"
	}
	return strconv.Itoa(d)
}

// edgeIndex is a set of edge identities for the integrity checks.
type edgeIndex map[augment.Triple]struct{}

func indexEdges(edges []augment.Edge) edgeIndex {
	idx := make(edgeIndex, len(edges))
	for _, e := range edges {
		idx[e.Triple()] = struct{}{}
	}
	return idx
}

func (idx edgeIndex) has(source, target, relName string) bool {
	_, ok := idx[augment.Triple{Source: source, Target: target, RelName: relName}]
	return ok
}
