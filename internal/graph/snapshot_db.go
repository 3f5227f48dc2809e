package graph

import (
	"context"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/catalog"
)

// SnapshotFromReader loads a GraphSnapshot from a relation store. With a
// non-nil catalog only edges of canonical relations are kept.
func SnapshotFromReader(ctx context.Context, r augment.Reader, canonicalOnly *catalog.Catalog) (*GraphSnapshot, error) {
	edges, err := r.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	snap := NewSnapshot(edges)
	if canonicalOnly != nil {
		snap = snap.Filter(func(e augment.Edge) bool {
			return canonicalOnly.IsCanonical(e.RelName)
		})
	}
	return snap, nil
}
