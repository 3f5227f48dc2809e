package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/logger"
)

// DefaultPageSize is how many rows a cursor fetches per query.
const DefaultPageSize = 500

// Session is one write transaction exposed as an augment.Store. Inserts are
// buffered until Flush; cursors read in keyset-paged chunks so no result set
// stays open while the engine writes.
type Session struct {
	tx       *sql.Tx
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
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	s := &Session{
		tx:         tx,
		pageSize:   DefaultPageSize,
		pendingSet: make(map[augment.Triple]struct{}),
		known:      make(map[augment.Triple]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ScanEdges pages through the table by id.
func (s *Session) ScanEdges(ctx context.Context) (augment.EdgeCursor, error) {
	return &edgeCursor{ctx: ctx, tx: s.tx, pageSize: s.pageSize}, nil
}

// EdgeExists consults pending inserts, then the cache, then the table.
func (s *Session) EdgeExists(ctx context.Context, source, target, relName string) (bool, error) {
	t := augment.Triple{Source: source, Target: target, RelName: relName}
	if _, ok := s.pendingSet[t]; ok {
		return true, nil
	}
	if exists, ok := s.known[t]; ok {
		return exists, nil
	}

	var one int
	err := s.tx.QueryRowContext(ctx,
		`SELECT 1 FROM synset_relations WHERE source_id = ? AND target_id = ? AND rel_name = ? LIMIT 1`,
		source, target, relName,
	).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.known[t] = false
		return false, nil
	case err != nil:
		return false, fmt.Errorf("looking up %s: %w", t, err)
	}
	s.known[t] = true
	return true, nil
}

// InsertEdge buffers e until the next Flush.
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

// Compositions pages through the depth-d by depth-1 join.
func (s *Session) Compositions(ctx context.Context, relNames []string, depth int) (augment.TripleCursor, error) {
	if len(relNames) == 0 {
		return &tripleCursor{done: true}, nil
	}
	return &tripleCursor{
		ctx:      ctx,
		tx:       s.tx,
		pageSize: s.pageSize,
		relNames: relNames,
		depth:    depth,
	}, nil
}

// Flush writes every pending insert through one prepared statement.
func (s *Session) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	stmt, err := s.tx.PrepareContext(ctx, `
		INSERT INTO synset_relations (source_id, target_id, rel_name, rel_type, depth, provenance)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.pending {
		_, err := stmt.ExecContext(ctx, e.Source, e.Target, e.RelName, nullRelType(e.RelType), e.Depth, e.Provenance)
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting %s: %w", e.Triple(), augment.ErrDuplicateEdge)
		}
		if err != nil {
			return fmt.Errorf("inserting %s: %w", e.Triple(), err)
		}
	}

	for _, e := range s.pending {
		s.known[e.Triple()] = true
	}
	s.flushed += len(s.pending)
	s.pending = s.pending[:0]
	clear(s.pendingSet)
	return nil
}

// ClearCache drops cached existence answers. Pending inserts are kept.
func (s *Session) ClearCache() {
	clear(s.known)
}

// Commit flushes and commits the transaction.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		s.tx.Rollback()
		return err
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	logger.Debug("Committed relation session", "inserted", s.flushed)
	return nil
}

// Rollback discards the transaction. Rolling back a finished transaction is
// a no-op.
func (s *Session) Rollback(_ context.Context) error {
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
