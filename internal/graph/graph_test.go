package graph

import (
	"context"
	"reflect"
	"testing"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/catalog"
)

func edge(source, target, relName string, depth int, provenance string) augment.Edge {
	return augment.Edge{Source: source, Target: target, RelName: relName, Depth: depth, Provenance: provenance}
}

// quickSnapshot builds a snapshot of imported hypernym edges
func quickSnapshot(edges [][2]string) *GraphSnapshot {
	var out []augment.Edge
	for _, e := range edges {
		out = append(out, edge(e[0], e[1], catalog.Hypernym, 1, "import"))
	}
	return NewSnapshot(out)
}

// --- Snapshot Tests ---

func TestSnapshot_Adjacency(t *testing.T) {
	snap := NewSnapshot([]augment.Edge{
		edge("A", "B", catalog.Hypernym, 1, "import"),
		edge("A", "B", catalog.HolonymPart, 1, "import"),
		edge("B", "A", catalog.Hyponym, 1, "import"),
		edge("C", "C", catalog.Hypernym, 2, "import"),
	})
	if len(snap.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(snap.Nodes))
	}
	if !reflect.DeepEqual(snap.Adj["A"], []string{"B"}) {
		t.Errorf("parallel edges should collapse, Adj[A] = %v", snap.Adj["A"])
	}
	if !reflect.DeepEqual(snap.OutAdj["A"], []string{"B"}) || !reflect.DeepEqual(snap.OutAdj["B"], []string{"A"}) {
		t.Errorf("OutAdj = %v", snap.OutAdj)
	}
	if len(snap.Adj["C"]) != 0 {
		t.Errorf("self-loop should not be an undirected neighbour, got %v", snap.Adj["C"])
	}
}

func TestSnapshot_Filter(t *testing.T) {
	snap := NewSnapshot([]augment.Edge{
		edge("A", "B", catalog.Hypernym, 1, "import"),
		edge("B", "A", catalog.Hyponym, 1, "import"),
	})
	cat := catalog.Default()
	filtered := snap.Filter(func(e augment.Edge) bool { return cat.IsCanonical(e.RelName) })
	if len(filtered.Edges) != 1 || filtered.Edges[0].RelName != catalog.Hypernym {
		t.Errorf("filtered edges = %v", filtered.Edges)
	}
	if len(snap.Edges) != 2 {
		t.Error("Filter must not modify the original snapshot")
	}
}

type fakeReader struct {
	augment.Reader
	edges []augment.Edge
}

func (f fakeReader) AllEdges(context.Context) ([]augment.Edge, error) { return f.edges, nil }

func TestSnapshotFromReader_CanonicalOnly(t *testing.T) {
	r := fakeReader{edges: []augment.Edge{
		edge("A", "B", catalog.Hypernym, 1, "import"),
		edge("B", "A", catalog.Hyponym, 1, "import"),
		edge("A", "C", "hello", 1, "import"),
	}}
	all, err := SnapshotFromReader(context.Background(), r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Edges) != 3 {
		t.Errorf("expected 3 edges, got %d", len(all.Edges))
	}
	canon, err := SnapshotFromReader(context.Background(), r, catalog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(canon.Edges) != 1 || len(canon.Nodes) != 2 {
		t.Errorf("canonical view: %d edges, %d nodes", len(canon.Edges), len(canon.Nodes))
	}
}

// --- UnionFind Tests ---

func TestUnionFind_Components(t *testing.T) {
	uf := NewUnionFind([]string{"A", "B", "C", "D", "E"})
	uf.Union("A", "B")
	uf.Union("D", "C")
	uf.Union("C", "E")
	if uf.Union("E", "D") {
		t.Error("E and D were already joined")
	}
	if !uf.Connected("C", "D") || uf.Connected("A", "C") {
		t.Error("unexpected connectivity")
	}
	want := [][]string{{"C", "D", "E"}, {"A", "B"}}
	if got := uf.Components(); !reflect.DeepEqual(got, want) {
		t.Errorf("Components() = %v, want %v", got, want)
	}
}

// --- Topology Tests ---

func TestTopology_EmptyGraph(t *testing.T) {
	snap := NewSnapshot(nil)
	r := ComputeTopology(snap, 4, 10)
	if r.TotalNodes != 0 || r.TotalEdges != 0 || r.NumComponents != 0 {
		t.Errorf("empty graph should have all zeros, got nodes=%d edges=%d components=%d",
			r.TotalNodes, r.TotalEdges, r.NumComponents)
	}
	if len(r.DegreeHistogram) != 7 {
		t.Errorf("expected 7 histogram buckets, got %d", len(r.DegreeHistogram))
	}
}

func TestTopology_SingleComponent(t *testing.T) {
	snap := quickSnapshot([][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"}})
	r := ComputeTopology(snap, 4, 10)
	if r.NumComponents != 1 {
		t.Errorf("expected 1 component, got %d", r.NumComponents)
	}
	if r.LargestComponent != 5 {
		t.Errorf("expected largest=5, got %d", r.LargestComponent)
	}
	if r.RootCount != 1 || r.RootIDs[0] != "E" {
		t.Errorf("expected E as the only root, got %v", r.RootIDs)
	}
}

func TestTopology_TwoComponents(t *testing.T) {
	snap := quickSnapshot([][2]string{{"A", "B"}, {"B", "C"}, {"D", "E"}})
	r := ComputeTopology(snap, 4, 10)
	if r.NumComponents != 2 {
		t.Errorf("expected 2 components, got %d", r.NumComponents)
	}
	if r.LargestComponent != 3 {
		t.Errorf("expected largest=3, got %d", r.LargestComponent)
	}
	if r.SmallestComponent != 2 {
		t.Errorf("expected smallest=2, got %d", r.SmallestComponent)
	}
}

func TestTopology_SelfLoops(t *testing.T) {
	snap := NewSnapshot([]augment.Edge{
		edge("A", "B", catalog.Antonym, 1, "import"),
		edge("B", "A", catalog.Antonym, 1, "import"),
		edge("A", "A", catalog.Antonym, 2, augment.DefaultProvenance),
	})
	r := ComputeTopology(snap, 4, 10)
	if r.SelfLoops != 1 {
		t.Errorf("expected 1 self-loop, got %d", r.SelfLoops)
	}
	if r.RootCount != 0 {
		t.Errorf("a 2-cycle has no roots, got %v", r.RootIDs)
	}
}

func TestHub_Detection(t *testing.T) {
	snap := quickSnapshot([][2]string{
		{"s1", "center"}, {"s2", "center"}, {"s3", "center"}, {"s4", "center"}, {"s5", "center"},
	})
	r := ComputeTopology(snap, 4, 10)
	if len(r.Hubs) != 1 {
		t.Fatalf("expected 1 hub, got %d", len(r.Hubs))
	}
	if r.Hubs[0].ID != "center" {
		t.Errorf("expected center as hub, got %s", r.Hubs[0].ID)
	}
	if r.Hubs[0].InDegree != 5 || r.Hubs[0].OutDegree != 0 {
		t.Errorf("center in/out = %d/%d, want 5/0", r.Hubs[0].InDegree, r.Hubs[0].OutDegree)
	}
}

// --- Relation Tests ---

func TestRelations_Breakdown(t *testing.T) {
	snap := NewSnapshot([]augment.Edge{
		edge("2", "1", catalog.Hypernym, 1, "import"),
		edge("3", "2", catalog.Hypernym, 1, "import"),
		edge("3", "1", catalog.Hypernym, 2, augment.DefaultProvenance),
		edge("1", "2", catalog.Hyponym, 1, "import"),
		edge("5", "4", catalog.HolonymPart, 1, ""),
	})
	r := ComputeRelations(snap, augment.DefaultProvenance)

	wantRels := []RelationCount{
		{RelName: catalog.Hypernym, Edges: 3, MaxDepth: 2},
		{RelName: catalog.HolonymPart, Edges: 1, MaxDepth: 1},
		{RelName: catalog.Hyponym, Edges: 1, MaxDepth: 1},
	}
	if !reflect.DeepEqual(r.Relations, wantRels) {
		t.Errorf("Relations = %+v, want %+v", r.Relations, wantRels)
	}
	wantDepths := []DepthBucket{{Depth: 1, Count: 4}, {Depth: 2, Count: 1}}
	if !reflect.DeepEqual(r.Depths, wantDepths) {
		t.Errorf("Depths = %+v, want %+v", r.Depths, wantDepths)
	}
	if r.Imported != 4 || r.Inferred != 1 {
		t.Errorf("imported/inferred = %d/%d, want 4/1", r.Imported, r.Inferred)
	}
	if r.Provenance["(none)"] != 1 || r.Provenance["import"] != 3 {
		t.Errorf("Provenance = %v", r.Provenance)
	}
}

// --- Integrity Tests ---

func TestIntegrity_Gaps(t *testing.T) {
	snap := NewSnapshot([]augment.Edge{
		edge("1", "2", catalog.Hyponym, 1, "import"),
		edge("2", "3", catalog.Hyponym, 1, "import"),
		edge("2", "1", catalog.Hypernym, 1, "import"),
		edge("3", "2", catalog.Hypernym, 1, "import"),
		edge("9", "8", catalog.MeronymPart, 1, "import"),
	})
	r := ComputeIntegrity(snap, catalog.Default(), 10)
	if r.InverseGaps != 1 {
		t.Errorf("inverse gaps = %d, want 1 (holonymPart 8 -> 9)", r.InverseGaps)
	}
	if r.ClosureGaps != 1 {
		t.Errorf("closure gaps = %d, want 1 (hypernym 3 -> 1)", r.ClosureGaps)
	}
	if len(r.Examples) != 2 {
		t.Errorf("examples = %v", r.Examples)
	}
}

func TestIntegrity_ClosedGraph(t *testing.T) {
	snap := NewSnapshot([]augment.Edge{
		edge("2", "1", catalog.Hypernym, 1, "import"),
		edge("3", "2", catalog.Hypernym, 1, "import"),
		edge("3", "1", catalog.Hypernym, 2, augment.DefaultProvenance),
		edge("1", "2", "hello", 1, "import"),
		edge("2", "4", "hello", 1, "import"),
	})
	r := Analyze(snap, DefaultConfig())
	if r.Integrity.InverseGaps != 0 || r.Integrity.ClosureGaps != 0 {
		t.Errorf("closed graph reported gaps: %+v", r.Integrity)
	}
	if r.Topology.TotalEdges != 5 {
		t.Errorf("TotalEdges = %d", r.Topology.TotalEdges)
	}
}

func TestAnalyze_NoCatalogSkipsIntegrity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog = nil
	if r := Analyze(quickSnapshot([][2]string{{"A", "B"}}), cfg); r.Integrity != nil {
		t.Error("integrity should be skipped without a catalog")
	}
}
