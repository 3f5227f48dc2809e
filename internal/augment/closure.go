package augment

import (
	"context"
	"fmt"
	"time"

	"smatch/lexgraph/internal/catalog"
	"smatch/lexgraph/internal/logger"
	"smatch/lexgraph/internal/stats"
)

// ClosureEngine closes the canonical relations transitively. Round d composes
// every depth-d edge with the depth-1 edges of the same relation, so depth
// always equals path length; rounds stop at the first one that adds nothing.
type ClosureEngine struct {
	catalog  *catalog.Catalog
	settings settings
}

// NewClosureEngine creates a closure engine bound to cat.
func NewClosureEngine(cat *catalog.Catalog, opts ...Option) *ClosureEngine {
	return &ClosureEngine{catalog: cat, settings: newSettings(opts)}
}

// Run iterates rounds to fixpoint. The graph should be normalized first.
func (c *ClosureEngine) Run(ctx context.Context, store Store) (*Result, error) {
	started := time.Now()
	st := stats.New()
	b := newBatcher(store, c.settings.batchSize)
	canonical := c.catalog.CanonicalRelations()

	rounds := 0
	if len(canonical) > 0 {
		for depth := 1; ; depth++ {
			rounds++
			inserted, err := c.round(ctx, store, canonical, depth, st, b)
			if err != nil {
				return nil, fmt.Errorf("closure round %d: %w", rounds, err)
			}
			logger.Info("Closure round done", "round", rounds, "depth", depth+1, "inserted", inserted)
			if inserted == 0 {
				break
			}
		}
	}
	if err := b.checkpoint(ctx); err != nil {
		return nil, err
	}

	res := newResult(PhaseClosure, st, started)
	res.Rounds = rounds
	logger.Info("Done computing transitive closure", "rounds", rounds, "inserted", res.Total, "elapsed", res.Elapsed)
	logger.Info("Closure summary\n" + st.Summary())
	return res, nil
}

// round inserts every edge implied by composing depth-d edges with depth-1
// edges and returns how many it inserted.
func (c *ClosureEngine) round(ctx context.Context, store Store, canonical []string, depth int, st *stats.InsertionStats, b *batcher) (int, error) {
	// The composition query has to see every depth-d edge from the
	// previous round.
	if err := b.checkpoint(ctx); err != nil {
		return 0, err
	}

	cur, err := store.Compositions(ctx, canonical, depth)
	if err != nil {
		return 0, storageError(fmt.Sprintf("querying compositions at depth %d", depth), err)
	}
	defer cur.Close()

	inserted := 0
	for cur.Next() {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		t := cur.Triple()
		if !c.catalog.IsCanonical(t.RelName) {
			continue
		}
		// The same triple can come back through several middle nodes.
		exists, err := store.EdgeExists(ctx, t.Source, t.Target, t.RelName)
		if err != nil {
			return inserted, storageError(fmt.Sprintf("checking %s", t), err)
		}
		if exists {
			continue
		}
		relType, err := c.catalog.RelationType(t.RelName)
		if err != nil {
			return inserted, fmt.Errorf("%w: canonical relation without type: %w", ErrInvariantViolation, err)
		}
		e := Edge{
			Source:     t.Source,
			Target:     t.Target,
			RelName:    t.RelName,
			RelType:    relType,
			Depth:      depth + 1,
			Provenance: c.settings.provenance,
		}
		if err := store.InsertEdge(ctx, e); err != nil {
			return inserted, storageError(fmt.Sprintf("inserting %s", e), err)
		}
		st.Increment(t.RelName)
		inserted++
		if err := b.tick(ctx); err != nil {
			return inserted, err
		}
	}
	if err := cur.Err(); err != nil {
		return inserted, storageError(fmt.Sprintf("reading compositions at depth %d", depth), err)
	}
	return inserted, nil
}
