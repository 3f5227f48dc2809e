package augment

import (
	"context"

	"smatch/lexgraph/internal/logger"
)

// batcher flushes the store and clears its cache every size processed items.
type batcher struct {
	store     Store
	size      int
	processed int
	flushes   int
}

func newBatcher(store Store, size int) *batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &batcher{store: store, size: size}
}

// tick records one processed item and checkpoints on batch boundaries.
func (b *batcher) tick(ctx context.Context) error {
	b.processed++
	if b.processed%b.size != 0 {
		return nil
	}
	return b.checkpoint(ctx)
}

// checkpoint flushes pending writes and releases cached state.
func (b *batcher) checkpoint(ctx context.Context) error {
	if err := b.store.Flush(ctx); err != nil {
		return storageError("flushing batch", err)
	}
	b.store.ClearCache()
	b.flushes++
	logger.Debug("Flushed batch", "processed", b.processed, "flushes", b.flushes)
	return nil
}
