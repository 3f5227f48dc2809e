package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/catalog"
)

// setupTestDB opens a fresh database file. A file is used instead of
// :memory: because every pooled connection would get its own memory DB.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func synset(n int) string { return fmt.Sprintf("synset %d", n) }

func seed(t *testing.T, d *DB, rels ...[3]any) {
	t.Helper()
	edges := make([]augment.Edge, 0, len(rels))
	for _, r := range rels {
		edges = append(edges, augment.Edge{
			Source:     synset(r[0].(int)),
			Target:     synset(r[1].(int)),
			RelName:    r[2].(string),
			Provenance: "import",
		})
	}
	n, err := d.ImportEdges(context.Background(), edges)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(edges) {
		t.Fatalf("seeded %d of %d edges", n, len(edges))
	}
}

func augmentDB(t *testing.T, d *DB, cat *catalog.Catalog, pageSize, batchSize int) *augment.Report {
	t.Helper()
	ctx := context.Background()
	s, err := d.Begin(ctx, WithPageSize(pageSize))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Rollback(ctx)

	report, err := augment.Run(ctx, s, cat, augment.WithBatchSize(batchSize))
	if err != nil {
		t.Fatalf("augment: %v", err)
	}
	if err := s.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return report
}

func edgeDepths(t *testing.T, d *DB) map[augment.Triple]int {
	t.Helper()
	edges, err := d.AllEdges(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[augment.Triple]int, len(edges))
	for _, e := range edges {
		if _, dup := out[e.Triple()]; dup {
			t.Errorf("duplicate triple %s", e.Triple())
		}
		out[e.Triple()] = e.Depth
	}
	return out
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	d, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	seed(t, d, [3]any{2, 1, catalog.Hypernym})
	d.Close()

	d, err = OpenDB(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer d.Close()
	edges, err := d.AllEdges(context.Background())
	if err != nil || len(edges) != 1 {
		t.Fatalf("AllEdges() = %v, %v", edges, err)
	}
	if edges[0].Depth != 1 || edges[0].RelType != "" {
		t.Errorf("unexpected imported edge %+v", edges[0])
	}
}

func TestSession_Hyponym(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d, [3]any{2, 1, catalog.Hyponym})

	r := augmentDB(t, d, catalog.Default(), 2, 20)
	if r.Normalize.Total != 1 || r.Closure.Total != 0 {
		t.Fatalf("inserted %d + %d, want 1 + 0", r.Normalize.Total, r.Closure.Total)
	}

	edges, _ := d.AllEdges(context.Background())
	inv := edges[len(edges)-1]
	want := augment.Edge{
		ID: inv.ID, Source: synset(1), Target: synset(2), RelName: catalog.Hypernym,
		RelType: catalog.Taxonomic, Depth: 1, Provenance: augment.DefaultProvenance,
	}
	if inv != want {
		t.Errorf("inverse = %+v, want %+v", inv, want)
	}
}

func TestSession_Chain3(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d,
		[3]any{2, 1, catalog.Hypernym},
		[3]any{3, 2, catalog.Hypernym},
		[3]any{4, 3, catalog.Hypernym},
	)

	r := augmentDB(t, d, catalog.Default(), 1, 1)
	if r.Closure.Total != 3 || r.Closure.Rounds != 3 {
		t.Errorf("closure inserted %d in %d rounds, want 3 in 3", r.Closure.Total, r.Closure.Rounds)
	}
	got := edgeDepths(t, d)
	for _, tt := range []struct{ s, t, depth int }{{3, 1, 2}, {4, 2, 2}, {4, 1, 3}} {
		tr := augment.Triple{Source: synset(tt.s), Target: synset(tt.t), RelName: catalog.Hypernym}
		if got[tr] != tt.depth {
			t.Errorf("%s depth = %d, want %d", tr, got[tr], tt.depth)
		}
	}

	again := augmentDB(t, d, catalog.Default(), 1, 1)
	if again.TotalInserted() != 0 {
		t.Errorf("re-run inserted %d", again.TotalInserted())
	}
}

func TestSession_PageAndBatchSizeDoNotMatter(t *testing.T) {
	build := func(pageSize, batchSize int) map[augment.Triple]int {
		d := setupTestDB(t)
		// Two interleaved hyponym chains and a part-whole diamond.
		seed(t, d,
			[3]any{1, 2, catalog.Hyponym}, [3]any{2, 3, catalog.Hyponym}, [3]any{3, 4, catalog.Hyponym},
			[3]any{10, 11, catalog.Hyponym}, [3]any{11, 12, catalog.Hyponym},
			[3]any{20, 21, catalog.MeronymPart}, [3]any{20, 22, catalog.MeronymPart},
			[3]any{21, 23, catalog.MeronymPart}, [3]any{22, 23, catalog.MeronymPart},
			[3]any{30, 31, "hello"},
		)
		augmentDB(t, d, catalog.Default(), pageSize, batchSize)
		return edgeDepths(t, d)
	}

	want := build(DefaultPageSize, augment.DefaultBatchSize)
	for _, sizes := range [][2]int{{1, 1}, {2, 3}, {3, 1}, {1, 100}} {
		if got := build(sizes[0], sizes[1]); !reflect.DeepEqual(got, want) {
			t.Errorf("page %d batch %d produced a different graph", sizes[0], sizes[1])
		}
	}

	// The first chain closes to 6 hypernym edges, the second to 3.
	n := 0
	for tr := range want {
		if tr.RelName == catalog.Hypernym {
			n++
		}
	}
	if n != 6+3 {
		t.Errorf("hypernym edges = %d, want 9", n)
	}
}

func TestSession_RollbackDiscards(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d, [3]any{2, 1, catalog.Hyponym})
	ctx := context.Background()

	s, err := d.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := augment.Run(ctx, s, catalog.Default()); err != nil {
		t.Fatal(err)
	}
	if err := s.Rollback(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Rollback(ctx); err != nil {
		t.Errorf("second rollback: %v", err)
	}
	if n := len(edgeDepths(t, d)); n != 1 {
		t.Errorf("edges after rollback = %d, want 1", n)
	}
}

func TestSession_DuplicateInsert(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d, [3]any{2, 1, catalog.Hypernym})
	ctx := context.Background()

	s, err := d.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Rollback(ctx)

	e := augment.Edge{Source: synset(2), Target: synset(1), RelName: catalog.Hypernym, Depth: 1}

	// Not cached yet, so the duplicate surfaces from the unique index on flush.
	if err := s.InsertEdge(ctx, e); err != nil {
		t.Fatalf("buffering: %v", err)
	}
	if err := s.Flush(ctx); !errors.Is(err, augment.ErrDuplicateEdge) {
		t.Errorf("flush error = %v, want ErrDuplicateEdge", err)
	}
}

func TestSession_DuplicatePending(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	s, err := d.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Rollback(ctx)

	e := augment.Edge{Source: synset(1), Target: synset(2), RelName: catalog.Hypernym, Depth: 1}
	if err := s.InsertEdge(ctx, e); err != nil {
		t.Fatal(err)
	}
	if exists, err := s.EdgeExists(ctx, e.Source, e.Target, e.RelName); err != nil || !exists {
		t.Errorf("pending edge should exist: %v, %v", exists, err)
	}
	if err := s.InsertEdge(ctx, e); !errors.Is(err, augment.ErrDuplicateEdge) {
		t.Errorf("error = %v, want ErrDuplicateEdge", err)
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	s.ClearCache()
	if exists, err := s.EdgeExists(ctx, e.Source, e.Target, e.RelName); err != nil || !exists {
		t.Errorf("flushed edge should exist after cache clear: %v, %v", exists, err)
	}
}

func TestSession_RejectsDepthZero(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	s, err := d.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Rollback(ctx)
	if err := s.InsertEdge(ctx, augment.Edge{Source: "a", Target: "b", RelName: "r"}); err == nil {
		t.Error("expected error for depth 0")
	}
}

func TestReader(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d,
		[3]any{1, 2, catalog.Hyponym},
		[3]any{2, 3, catalog.Hyponym},
		[3]any{3, 4, catalog.Hyponym},
		[3]any{3, 9, catalog.MeronymPart},
	)
	augmentDB(t, d, catalog.Default(), DefaultPageSize, augment.DefaultBatchSize)
	ctx := context.Background()

	targets, err := d.RelationTargets(ctx, synset(4), 2, catalog.Hypernym)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{synset(2), synset(3)}; !reflect.DeepEqual(targets, want) {
		t.Errorf("targets within 2 = %v, want %v", targets, want)
	}

	targets, err = d.RelationTargets(ctx, synset(9), 5, catalog.Hypernym, catalog.HolonymPart)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{synset(3)}; !reflect.DeepEqual(targets, want) {
		t.Errorf("holonym targets = %v, want %v", targets, want)
	}

	tests := []struct {
		source, target, depth int
		rels                  []string
		want                  bool
	}{
		{4, 1, 3, []string{catalog.Hypernym}, true},
		{4, 1, 2, []string{catalog.Hypernym}, false},
		{1, 4, 3, []string{catalog.Hypernym}, false},
		{4, 1, 3, []string{catalog.HolonymPart}, false},
		{1, 4, 1, []string{catalog.Hyponym}, false},
		{1, 2, 1, []string{catalog.Hyponym, catalog.Hypernym}, true},
	}
	for _, tt := range tests {
		got, err := d.IsConnected(ctx, synset(tt.source), synset(tt.target), tt.depth, tt.rels...)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("IsConnected(%d, %d, %d, %v) = %v, want %v", tt.source, tt.target, tt.depth, tt.rels, got, tt.want)
		}
	}
}

func TestReader_InvalidQuery(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	if _, err := d.RelationTargets(ctx, "a", 0, catalog.Hypernym); !errors.Is(err, augment.ErrInvalidQuery) {
		t.Errorf("depth 0: %v", err)
	}
	if _, err := d.IsConnected(ctx, "a", "b", 3); !errors.Is(err, augment.ErrInvalidQuery) {
		t.Errorf("no relations: %v", err)
	}
}

func TestImportEdges_SkipsExisting(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d, [3]any{2, 1, catalog.Hypernym})
	n, err := d.ImportEdges(context.Background(), []augment.Edge{
		{Source: synset(2), Target: synset(1), RelName: catalog.Hypernym},
		{Source: synset(3), Target: synset(2), RelName: catalog.Hypernym},
		{Source: synset(3), Target: synset(2), RelName: catalog.Hypernym},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("imported %d, want 1", n)
	}
}
