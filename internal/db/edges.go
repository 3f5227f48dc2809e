package db

import (
	"context"
	"fmt"

	"smatch/lexgraph/internal/augment"
)

var _ augment.Reader = (*DB)(nil)

// AllEdges returns all relation edges ordered by id
func (d *DB) AllEdges(ctx context.Context) ([]augment.Edge, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT `+edgeColumns+` FROM synset_relations ORDER BY id`)
	if err != nil {
		return nil, err
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
	args := make([]any, 0, len(relNames)+2)
	args = append(args, source, maxDepth)
	for _, r := range relNames {
		args = append(args, r)
	}

	rows, err := d.conn.QueryContext(ctx, `
		SELECT DISTINCT target_id FROM synset_relations
		WHERE source_id = ? AND depth <= ? AND rel_name IN (`+inClause(len(relNames))+`)
		ORDER BY target_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying targets of %s: %w", source, err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// IsConnected reports whether target is reachable from source through one of
// relNames within maxDepth hops.
func (d *DB) IsConnected(ctx context.Context, source, target string, maxDepth int, relNames ...string) (bool, error) {
	if err := augment.ValidateQuery(maxDepth, relNames); err != nil {
		return false, err
	}
	args := make([]any, 0, len(relNames)+3)
	args = append(args, source, target, maxDepth)
	for _, r := range relNames {
		args = append(args, r)
	}

	var connected bool
	err := d.conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM synset_relations
			WHERE source_id = ? AND target_id = ? AND depth <= ? AND rel_name IN (`+inClause(len(relNames))+`)
		)
	`, args...).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("checking %s -> %s: %w", source, target, err)
	}
	return connected, nil
}

// ImportEdges inserts edges as imported data in one transaction. Edges whose
// triple already exists are skipped; the number inserted is returned.
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
