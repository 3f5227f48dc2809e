package db

import (
	"database/sql"
	"strings"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/catalog"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS synset_relations (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
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

// edgeColumns is the standard column order read by scanEdge.
const edgeColumns = `id, source_id, target_id, rel_name, rel_type, depth, provenance`

// scanEdge scans a row into an Edge. The row must have edgeColumns in order.
func scanEdge(scanner interface{ Scan(dest ...any) error }) (augment.Edge, error) {
	var (
		e       augment.Edge
		relType sql.NullString
	)
	err := scanner.Scan(&e.ID, &e.Source, &e.Target, &e.RelName, &relType, &e.Depth, &e.Provenance)
	e.RelType = catalog.RelType(relType.String)
	return e, err
}

func nullRelType(t catalog.RelType) sql.NullString {
	return sql.NullString{String: string(t), Valid: t != ""}
}

// inClause returns "?, ?, ?" for n placeholders.
func inClause(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
