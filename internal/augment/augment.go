// Package augment normalizes a lexical relation graph and computes the
// transitive closure of its canonical relations, writing inferred edges back
// into the store with depth and provenance.
package augment

import (
	"context"
	"fmt"

	"smatch/lexgraph/internal/catalog"
)

// Report holds the results of a full augmentation.
type Report struct {
	Normalize *Result `json:"normalize"`
	Closure   *Result `json:"closure"`
}

// TotalInserted sums the insertions of both phases.
func (r *Report) TotalInserted() int64 {
	var total int64
	if r.Normalize != nil {
		total += r.Normalize.Total
	}
	if r.Closure != nil {
		total += r.Closure.Total
	}
	return total
}

// Run normalizes the graph and then closes it, both against the same store.
// Transaction lifecycle stays with the caller.
func Run(ctx context.Context, store Store, cat *catalog.Catalog, opts ...Option) (*Report, error) {
	norm, err := NewNormalizer(cat, opts...).Run(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("normalizing graph: %w", err)
	}
	closure, err := NewClosureEngine(cat, opts...).Run(ctx, store)
	if err != nil {
		return &Report{Normalize: norm}, fmt.Errorf("computing transitive closure: %w", err)
	}
	return &Report{Normalize: norm, Closure: closure}, nil
}
