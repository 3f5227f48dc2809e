package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/logger"
)

// DefaultPageSize is how many rows a cursor fetches per query.
const DefaultPageSize = 1000

const insertChunkSize = 1000

// Session is one write transaction exposed as an augment.Store.
type Session struct {
	tx       pgx.Tx
	conn     pgxIConn
	pageSize int

	pending    []augment.Edge
	pendingSet map[augment.Triple]struct{}
	known      map[augment.Triple]bool

	flushed int
}

var _ augment.Store = (*Session)(nil)

// SessionOption tunes a Session.
type SessionOption func(*Session)

// WithPageSize sets the cursor page size. Values below 1 keep the default.
func WithPageSize(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// Begin opens a write transaction. The caller must Commit or Rollback it.
func (d *DB) Begin(ctx context.Context, opts ...SessionOption) (*Session, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s := &Session{
		tx:         tx,
		conn:       tx,
		pageSize:   DefaultPageSize,
		pendingSet: make(map[augment.Triple]struct{}),
		known:      make(map[augment.Triple]bool),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

func (s *Session) ScanEdges(ctx context.Context) (augment.EdgeCursor, error) {
	return &edgeCursor{ctx: ctx, conn: s.conn, pageSize: s.pageSize}, nil
}

func (s *Session) EdgeExists(ctx context.Context, source, target, relName string) (bool, error) {
	t := augment.Triple{Source: source, Target: target, RelName: relName}
	if _, ok := s.pendingSet[t]; ok {
		return true, nil
	}
	if exists, ok := s.known[t]; ok {
		return exists, nil
	}

	var one int
	err := s.conn.QueryRow(ctx,
		`SELECT 1 FROM synset_relations WHERE source_id = $1 AND target_id = $2 AND rel_name = $3`,
		source, target, relName,
	).Scan(&one)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		s.known[t] = false
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up %s: %w", t, err)
	}
	s.known[t] = true
	return true, nil
}

func (s *Session) InsertEdge(ctx context.Context, e augment.Edge) error {
	t := e.Triple()
	if _, ok := s.pendingSet[t]; ok || s.known[t] {
		return fmt.Errorf("inserting %s: %w", t, augment.ErrDuplicateEdge)
	}
	if e.Depth < 1 {
		return fmt.Errorf("inserting %s: depth %d below 1", t, e.Depth)
	}
	s.pending = append(s.pending, e)
	s.pendingSet[t] = struct{}{}
	return nil
}

func (s *Session) Compositions(ctx context.Context, relNames []string, depth int) (augment.TripleCursor, error) {
	return &tripleCursor{
		ctx:      ctx,
		conn:     s.conn,
		pageSize: s.pageSize,
		relNames: relNames,
		depth:    depth,
		done:     len(relNames) == 0,
	}, nil
}

// Flush writes pending inserts as array-parameter chunks.
func (s *Session) Flush(ctx context.Context) error {
	err := chunkRange(len(s.pending), insertChunkSize, func(start, end int) error {
		return s.insertChunk(ctx, s.pending[start:end])
	})
	if err != nil {
		return err
	}
	for _, e := range s.pending {
		s.known[e.Triple()] = true
	}
	s.flushed += len(s.pending)
	s.pending = s.pending[:0]
	clear(s.pendingSet)
	return nil
}

func (s *Session) insertChunk(ctx context.Context, edges []augment.Edge) error {
	n := len(edges)
	sources := make([]string, n)
	targets := make([]string, n)
	relNames := make([]string, n)
	relTypes := make([]*string, n)
	depths := make([]int32, n)
	provenances := make([]string, n)
	for i, e := range edges {
		sources[i], targets[i], relNames[i] = e.Source, e.Target, e.RelName
		if e.RelType != "" {
			rt := string(e.RelType)
			relTypes[i] = &rt
		}
		depths[i] = int32(e.Depth)
		provenances[i] = e.Provenance
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO synset_relations (source_id, target_id, rel_name, rel_type, depth, provenance)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::int[], $6::text[])
	`, sources, targets, relNames, relTypes, depths, provenances)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to insert %d relations: %w", n, augment.ErrDuplicateEdge)
	}
	if err != nil {
		return fmt.Errorf("failed to insert %d relations: %w", n, err)
	}
	return nil
}

func (s *Session) ClearCache() {
	clear(s.known)
}

// Commit flushes and commits the transaction.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		s.tx.Rollback(ctx)
		return err
	}
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logger.Debug("Committed relation session", "inserted", s.flushed)
	return nil
}

// Rollback discards the transaction. Rolling back a closed transaction is a
// no-op.
func (s *Session) Rollback(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func chunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
