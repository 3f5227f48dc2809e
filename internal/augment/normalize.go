package augment

import (
	"context"
	"fmt"
	"time"

	"smatch/lexgraph/internal/catalog"
	"smatch/lexgraph/internal/logger"
	"smatch/lexgraph/internal/stats"
)

// Normalizer adds the missing depth-1 inverse of every edge whose relation
// has a registered inverse that is itself canonical.
type Normalizer struct {
	catalog  *catalog.Catalog
	settings settings
}

// NewNormalizer creates a normalizer bound to cat.
func NewNormalizer(cat *catalog.Catalog, opts ...Option) *Normalizer {
	return &Normalizer{catalog: cat, settings: newSettings(opts)}
}

// Run scans every edge once and inserts missing inverses. On error the
// remaining scan is abandoned and batches already flushed stay in the store;
// re-running the phase converges to the same graph.
func (n *Normalizer) Run(ctx context.Context, store Store) (*Result, error) {
	started := time.Now()
	st := stats.New()
	b := newBatcher(store, n.settings.batchSize)

	cur, err := store.ScanEdges(ctx)
	if err != nil {
		return nil, storageError("scanning edges", err)
	}
	defer cur.Close()

	scanned := 0
	for cur.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := n.normalizeEdge(ctx, store, cur.Edge(), st); err != nil {
			return nil, err
		}
		scanned++
		if err := b.tick(ctx); err != nil {
			return nil, err
		}
	}
	if err := cur.Err(); err != nil {
		return nil, storageError("scanning edges", err)
	}
	if err := b.checkpoint(ctx); err != nil {
		return nil, err
	}

	res := newResult(PhaseNormalize, st, started)
	res.Scanned = scanned
	logger.Info("Done normalizing relations", "scanned", scanned, "inserted", res.Total, "elapsed", res.Elapsed)
	logger.Info("Normalization summary\n" + st.Summary())
	return res, nil
}

func (n *Normalizer) normalizeEdge(ctx context.Context, store Store, e Edge, st *stats.InsertionStats) error {
	if !n.catalog.HasInverse(e.RelName) {
		return nil
	}
	inverse, err := n.catalog.InverseOf(e.RelName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	if !n.catalog.IsCanonical(inverse) {
		return nil
	}

	exists, err := store.EdgeExists(ctx, e.Target, e.Source, inverse)
	if err != nil {
		return storageError(fmt.Sprintf("checking inverse of %s", e), err)
	}
	if exists {
		return nil
	}

	relType, err := n.catalog.RelationType(inverse)
	if err != nil {
		return fmt.Errorf("%w: canonical relation without type: %w", ErrInvariantViolation, err)
	}
	inv := Edge{
		Source:     e.Target,
		Target:     e.Source,
		RelName:    inverse,
		RelType:    relType,
		Depth:      1,
		Provenance: n.settings.provenance,
	}
	if err := store.InsertEdge(ctx, inv); err != nil {
		return storageError(fmt.Sprintf("inserting %s", inv), err)
	}
	st.Increment(inverse)
	return nil
}
