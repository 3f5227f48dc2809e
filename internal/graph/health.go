package graph

import (
	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/catalog"
)

// IntegrityReport counts edges still missing after augmentation. On a fully
// augmented graph both counters are zero.
type IntegrityReport struct {
	// InverseGaps counts edges whose canonical inverse is absent.
	InverseGaps int `json:"inverse_gaps"`
	// ClosureGaps counts composable canonical pairs (a,b,r), (b,c,r) with no (a,c,r).
	ClosureGaps int              `json:"closure_gaps"`
	Examples    []augment.Triple `json:"examples,omitempty"`
}

// AnalysisReport is the full analysis result
type AnalysisReport struct {
	Topology  *TopologyReport  `json:"topology"`
	Relations *RelationReport  `json:"relations"`
	Integrity *IntegrityReport `json:"integrity,omitempty"`
}

// AnalyzerConfig holds analysis parameters
type AnalyzerConfig struct {
	HubThreshold int
	TopN         int
	// InferredTag is the provenance that marks inferred edges.
	InferredTag string
	// Catalog enables the integrity checks when set.
	Catalog *catalog.Catalog
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		HubThreshold: 10,
		TopN:         50,
		InferredTag:  augment.DefaultProvenance,
		Catalog:      catalog.Default(),
	}
}

// Analyze runs all analyses
func Analyze(snap *GraphSnapshot, config *AnalyzerConfig) *AnalysisReport {
	if config == nil {
		config = DefaultConfig()
	}
	report := &AnalysisReport{
		Topology:  ComputeTopology(snap, config.HubThreshold, config.TopN),
		Relations: ComputeRelations(snap, config.InferredTag),
	}
	if config.Catalog != nil {
		report.Integrity = ComputeIntegrity(snap, config.Catalog, config.TopN)
	}
	return report
}

// ComputeIntegrity finds missing inverses and missing transitive edges for
// the catalog's canonical relations. At most maxExamples missing triples are
// reported.
func ComputeIntegrity(snap *GraphSnapshot, cat *catalog.Catalog, maxExamples int) *IntegrityReport {
	idx := indexEdges(snap.Edges)
	report := &IntegrityReport{}
	example := func(t augment.Triple) {
		if len(report.Examples) < maxExamples {
			report.Examples = append(report.Examples, t)
		}
	}

	// Canonical edges grouped by (source, relation) for the composition check.
	type key struct{ node, rel string }
	out := make(map[key][]string)

	for _, e := range snap.Edges {
		if inv, err := cat.InverseOf(e.RelName); err == nil && cat.IsCanonical(inv) {
			if !idx.has(e.Target, e.Source, inv) {
				report.InverseGaps++
				example(augment.Triple{Source: e.Target, Target: e.Source, RelName: inv})
			}
		}
		if cat.IsCanonical(e.RelName) {
			out[key{e.Source, e.RelName}] = append(out[key{e.Source, e.RelName}], e.Target)
		}
	}

	for _, e := range snap.Edges {
		if !cat.IsCanonical(e.RelName) {
			continue
		}
		for _, c := range out[key{e.Target, e.RelName}] {
			if !idx.has(e.Source, c, e.RelName) {
				report.ClosureGaps++
				example(augment.Triple{Source: e.Source, Target: c, RelName: e.RelName})
			}
		}
	}
	return report
}
