package graph

import "sort"

// HubNode is a sense with high connectivity
type HubNode struct {
	ID        string `json:"id"`
	Degree    int    `json:"degree"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// DegreeBucket is one bucket in the degree histogram
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopologyReport contains topology analysis results
type TopologyReport struct {
	TotalNodes        int            `json:"total_nodes"`
	TotalEdges        int            `json:"total_edges"`
	NumComponents     int            `json:"num_components"`
	LargestComponent  int            `json:"largest_component"`
	SmallestComponent int            `json:"smallest_component"`
	SelfLoops         int            `json:"self_loops"`
	RootCount         int            `json:"root_count"` // no outgoing edge
	RootIDs           []string       `json:"root_ids"`
	DegreeHistogram   []DegreeBucket `json:"degree_histogram"`
	Hubs              []HubNode      `json:"hubs"`
}

// ComputeTopology analyzes graph topology: components, roots, degree distribution, hubs
func ComputeTopology(snap *GraphSnapshot, hubThreshold, topN int) *TopologyReport {
	totalNodes := len(snap.Nodes)
	totalEdges := len(snap.Edges)

	if totalNodes == 0 {
		return &TopologyReport{
			DegreeHistogram: defaultHistogram(),
		}
	}

	// Connected components via UnionFind
	nodeIDs := snap.NodeIDs()
	uf := NewUnionFind(nodeIDs)
	selfLoops := 0
	for _, e := range snap.Edges {
		if e.Source == e.Target {
			selfLoops++
			continue
		}
		uf.Union(e.Source, e.Target)
	}

	components := uf.Components()
	numComponents := len(components)
	largest, smallest := len(components[0]), len(components[numComponents-1])

	// Roots: nothing above them in any relation
	var roots []string
	for _, id := range nodeIDs {
		if outDegree(snap, id) == 0 {
			roots = append(roots, id)
		}
	}
	rootCount := len(roots)
	if len(roots) > topN {
		roots = roots[:topN]
	}

	// Degree histogram (log-scale buckets)
	buckets := [7]int{}
	for _, id := range nodeIDs {
		buckets[degreeBucket(len(snap.Adj[id]))]++
	}
	histogram := defaultHistogram()
	for i := range histogram {
		histogram[i].Count = buckets[i]
	}

	// Hubs: degree > threshold
	var hubs []HubNode
	for _, id := range nodeIDs {
		degree := len(snap.Adj[id])
		if degree > hubThreshold {
			hubs = append(hubs, HubNode{
				ID:        id,
				Degree:    degree,
				InDegree:  len(snap.InAdj[id]),
				OutDegree: len(snap.OutAdj[id]),
			})
		}
	}
	sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].Degree > hubs[j].Degree })
	if len(hubs) > topN {
		hubs = hubs[:topN]
	}

	return &TopologyReport{
		TotalNodes:        totalNodes,
		TotalEdges:        totalEdges,
		NumComponents:     numComponents,
		LargestComponent:  largest,
		SmallestComponent: smallest,
		SelfLoops:         selfLoops,
		RootCount:         rootCount,
		RootIDs:           roots,
		DegreeHistogram:   histogram,
		Hubs:              hubs,
	}
}

// outDegree counts outgoing neighbours other than the node itself.
func outDegree(snap *GraphSnapshot, id string) int {
	n := 0
	for _, t := range snap.OutAdj[id] {
		if t != id {
			n++
		}
	}
	return n
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
