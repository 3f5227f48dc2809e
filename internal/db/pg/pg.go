// Package pg stores the relation graph in PostgreSQL through pgx.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/catalog"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS synset_relations (
		id         BIGSERIAL PRIMARY KEY,
		source_id  TEXT NOT NULL,
		target_id  TEXT NOT NULL,
		rel_name   TEXT NOT NULL,
		rel_type   TEXT,
		depth      INTEGER NOT NULL DEFAULT 1 CHECK (depth >= 1),
		provenance TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_synset_relations_triple
		ON synset_relations (source_id, target_id, rel_name)`,
	`CREATE INDEX IF NOT EXISTS idx_synset_relations_rel_depth
		ON synset_relations (rel_name, depth)`,
}

const edgeColumns = `id, source_id, target_id, rel_name, COALESCE(rel_type, ''), depth, provenance`

// DB is a pooled PostgreSQL relation store.
type DB struct {
	pool *pgxpool.Pool
}

var _ augment.Reader = (*DB)(nil)

// Open connects to url and creates the relation table if it is missing.
func Open(ctx context.Context, url string) (*DB, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &DB{pool: pool}, nil
}

// Close releases the pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pool for custom queries.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

func scanEdge(row pgx.Row) (augment.Edge, error) {
	var (
		e       augment.Edge
		relType string
	)
	err := row.Scan(&e.ID, &e.Source, &e.Target, &e.RelName, &relType, &e.Depth, &e.Provenance)
	e.RelType = catalog.RelType(relType)
	return e, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// AllEdges returns every relation edge ordered by id.
func (d *DB) AllEdges(ctx context.Context) ([]augment.Edge, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+edgeColumns+` FROM synset_relations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	defer rows.Close()

	var edges []augment.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// RelationTargets returns the distinct targets reachable from source through
// one of relNames within maxDepth hops.
func (d *DB) RelationTargets(ctx context.Context, source string, maxDepth int, relNames ...string) ([]string, error) {
	if err := augment.ValidateQuery(maxDepth, relNames); err != nil {
		return nil, err
	}
	rows, err := d.pool.Query(ctx, `
		SELECT DISTINCT target_id FROM synset_relations
		WHERE source_id = $1 AND depth <= $2 AND rel_name = ANY($3)
		ORDER BY target_id
	`, source, maxDepth, relNames)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets of %s: %w", source, err)
	}
	targets, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read targets of %s: %w", source, err)
	}
	return targets, nil
}

// IsConnected reports whether target is reachable from source through one of
// relNames within maxDepth hops.
func (d *DB) IsConnected(ctx context.Context, source, target string, maxDepth int, relNames ...string) (bool, error) {
	if err := augment.ValidateQuery(maxDepth, relNames); err != nil {
		return false, err
	}
	var connected bool
	err := d.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM synset_relations
			WHERE source_id = $1 AND target_id = $2 AND depth <= $3 AND rel_name = ANY($4)
		)
	`, source, target, maxDepth, relNames).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("failed to check %s -> %s: %w", source, target, err)
	}
	return connected, nil
}

// ImportEdges inserts edges as imported data in one transaction, skipping
// triples that already exist, and returns how many were inserted.
func (d *DB) ImportEdges(ctx context.Context, edges []augment.Edge) (int, error) {
	s, err := d.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.Rollback(ctx)

	inserted := 0
	for _, e := range edges {
		if e.Depth == 0 {
			e.Depth = 1
		}
		exists, err := s.EdgeExists(ctx, e.Source, e.Target, e.RelName)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}
		if err := s.InsertEdge(ctx, e); err != nil {
			return 0, err
		}
		inserted++
	}
	if err := s.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}
