package augment

import "context"

// Store is the relation store both phases run against. An implementation
// is bound to one open write transaction owned by the caller.
type Store interface {
	// ScanEdges returns a forward-only cursor over every persisted edge.
	// Edges inserted during the scan may or may not be visited.
	ScanEdges(ctx context.Context) (EdgeCursor, error)

	// EdgeExists is authoritative: it must see edges inserted earlier in the
	// same run, flushed or not.
	EdgeExists(ctx context.Context, source, target, relName string) (bool, error)

	// InsertEdge adds a new edge. It returns an error wrapping
	// ErrDuplicateEdge if the triple is already present.
	InsertEdge(ctx context.Context, e Edge) error

	// Compositions returns the triples (a, c, r) for every pair of edges
	// (a, b, r) at depth `depth` and (b, c, r) at depth 1 with r in relNames
	// and no (a, c, r) edge present. The same triple may be yielded more
	// than once.
	Compositions(ctx context.Context, relNames []string, depth int) (TripleCursor, error)

	// Flush writes pending inserts to the underlying store.
	Flush(ctx context.Context) error

	// ClearCache drops client-side caches. It never discards pending writes.
	ClearCache()
}

// EdgeCursor iterates edges in the style of database/sql.Rows.
type EdgeCursor interface {
	Next() bool
	Edge() Edge
	Err() error
	Close() error
}

// TripleCursor iterates composition candidates.
type TripleCursor interface {
	Next() bool
	Triple() Triple
	Err() error
	Close() error
}

// Reader answers reachability questions on a closed graph. Because the
// closure materializes every path, each question is one indexed lookup.
type Reader interface {
	// RelationTargets returns the distinct targets of edges from source with
	// depth <= maxDepth and a relation in relNames, sorted.
	RelationTargets(ctx context.Context, source string, maxDepth int, relNames ...string) ([]string, error)

	// IsConnected reports whether an edge source -> target exists with
	// depth <= maxDepth and a relation in relNames.
	IsConnected(ctx context.Context, source, target string, maxDepth int, relNames ...string) (bool, error)

	// AllEdges returns every persisted edge ordered by id.
	AllEdges(ctx context.Context) ([]Edge, error)
}
