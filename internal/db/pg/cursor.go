package pg

import (
	"context"
	"fmt"

	"smatch/lexgraph/internal/augment"
)

// edgeCursor reads synset_relations by id in pages. A pgx connection can
// only run one statement at a time, so each page is read fully before the
// engine gets to write.
type edgeCursor struct {
	ctx      context.Context
	conn     pgxIConn
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
	rows, err := c.conn.Query(c.ctx,
		`SELECT `+edgeColumns+` FROM synset_relations WHERE id > $1 ORDER BY id LIMIT $2`,
		c.lastID, c.pageSize,
	)
	if err != nil {
		return fmt.Errorf("failed to scan relations after id %d: %w", c.lastID, err)
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
	if n := len(c.page); n > 0 {
		c.lastID = c.page[n-1].ID
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

// tripleCursor pages the depth-d by depth-1 join on (a.id, b.id).
type tripleCursor struct {
	ctx      context.Context
	conn     pgxIConn
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
	rows, err := c.conn.Query(c.ctx, `
		SELECT a.id, b.id, a.source_id, b.target_id, a.rel_name
		FROM synset_relations a
		JOIN synset_relations b
		  ON b.source_id = a.target_id AND b.rel_name = a.rel_name AND b.depth = 1
		WHERE a.depth = $1
		  AND a.rel_name = ANY($2)
		  AND (a.id, b.id) > ($3, $4)
		  AND NOT EXISTS (
		    SELECT 1 FROM synset_relations x
		    WHERE x.source_id = a.source_id AND x.target_id = b.target_id AND x.rel_name = a.rel_name
		  )
		ORDER BY a.id, b.id
		LIMIT $5
	`, c.depth, c.relNames, c.lastA, c.lastB, c.pageSize)
	if err != nil {
		return fmt.Errorf("failed to compose depth %d relations: %w", c.depth, err)
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
