package db

import (
	"context"
	"database/sql"
	"fmt"

	"smatch/lexgraph/internal/augment"
)

// edgeCursor walks synset_relations in id order one page at a time.
type edgeCursor struct {
	ctx      context.Context
	tx       *sql.Tx
	pageSize int

	page   []augment.Edge
	pos    int
	lastID int64
	done   bool
	err    error
}

func (c *edgeCursor) Next() bool {
	if c.err != nil {
		return false
	}
	c.pos++
	if c.pos < len(c.page) {
		return true
	}
	if c.done {
		return false
	}
	if err := c.fetch(); err != nil {
		c.err = err
		return false
	}
	c.pos = 0
	return len(c.page) > 0
}

func (c *edgeCursor) fetch() error {
	rows, err := c.tx.QueryContext(c.ctx,
		`SELECT `+edgeColumns+` FROM synset_relations WHERE id > ? ORDER BY id LIMIT ?`,
		c.lastID, c.pageSize,
	)
	if err != nil {
		return fmt.Errorf("scanning relations after id %d: %w", c.lastID, err)
	}
	defer rows.Close()

	c.page = c.page[:0]
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return err
		}
		c.page = append(c.page, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(c.page) < c.pageSize {
		c.done = true
	}
	if len(c.page) > 0 {
		c.lastID = c.page[len(c.page)-1].ID
	}
	return nil
}

func (c *edgeCursor) Edge() augment.Edge { return c.page[c.pos] }
func (c *edgeCursor) Err() error         { return c.err }
func (c *edgeCursor) Close() error {
	c.done = true
	c.page = nil
	return nil
}

type composition struct {
	aID, bID int64
	triple   augment.Triple
}

// tripleCursor pages through the join of depth-d edges with depth-1 edges
// keyed on (a.id, b.id). Rows inserted by the round are at depth d+1, so
// they never shift the keyset.
type tripleCursor struct {
	ctx      context.Context
	tx       *sql.Tx
	pageSize int
	relNames []string
	depth    int

	page  []composition
	pos   int
	lastA int64
	lastB int64
	done  bool
	err   error
}

func (c *tripleCursor) Next() bool {
	if c.err != nil {
		return false
	}
	c.pos++
	if c.pos < len(c.page) {
		return true
	}
	if c.done {
		return false
	}
	if err := c.fetch(); err != nil {
		c.err = err
		return false
	}
	c.pos = 0
	return len(c.page) > 0
}

func (c *tripleCursor) fetch() error {
	query := `
		SELECT a.id, b.id, a.source_id, b.target_id, a.rel_name
		FROM synset_relations a
		JOIN synset_relations b
		  ON b.source_id = a.target_id AND b.rel_name = a.rel_name AND b.depth = 1
		WHERE a.depth = ?
		  AND a.rel_name IN (` + inClause(len(c.relNames)) + `)
		  AND (a.id > ? OR (a.id = ? AND b.id > ?))
		  AND NOT EXISTS (
		    SELECT 1 FROM synset_relations x
		    WHERE x.source_id = a.source_id AND x.target_id = b.target_id AND x.rel_name = a.rel_name
		  )
		ORDER BY a.id, b.id
		LIMIT ?`

	args := make([]any, 0, len(c.relNames)+5)
	args = append(args, c.depth)
	for _, r := range c.relNames {
		args = append(args, r)
	}
	args = append(args, c.lastA, c.lastA, c.lastB, c.pageSize)

	rows, err := c.tx.QueryContext(c.ctx, query, args...)
	if err != nil {
		return fmt.Errorf("composing depth %d relations: %w", c.depth, err)
	}
	defer rows.Close()

	c.page = c.page[:0]
	for rows.Next() {
		var r composition
		if err := rows.Scan(&r.aID, &r.bID, &r.triple.Source, &r.triple.Target, &r.triple.RelName); err != nil {
			return err
		}
		c.page = append(c.page, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(c.page) < c.pageSize {
		c.done = true
	}
	if n := len(c.page); n > 0 {
		c.lastA, c.lastB = c.page[n-1].aID, c.page[n-1].bID
	}
	return nil
}

func (c *tripleCursor) Triple() augment.Triple { return c.page[c.pos].triple }
func (c *tripleCursor) Err() error             { return c.err }
func (c *tripleCursor) Close() error {
	c.done = true
	c.page = nil
	return nil
}
