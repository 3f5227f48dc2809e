// Package augmenttest provides an in-memory augment.Store for tests.
package augmenttest

import (
	"context"
	"fmt"
	"sort"

	"smatch/lexgraph/internal/augment"
)

// ImportProvenance tags edges seeded as imported data.
const ImportProvenance = "import"

// Op names a store operation for fault injection.
type Op string

const (
	OpScan         Op = "scan"
	OpExists       Op = "exists"
	OpInsert       Op = "insert"
	OpFlush        Op = "flush"
	OpCompositions Op = "compositions"
)

type fault struct {
	after int
	err   error
}

// Store keeps committed edges in insertion order and buffers inserts until
// Flush, like a session-backed store would.
type Store struct {
	committed []augment.Edge
	pending   []augment.Edge
	index     map[augment.Triple]struct{}
	nextID    int64

	calls  map[Op]int
	faults map[Op]fault

	// LieAboutExistence makes EdgeExists always answer false, to exercise
	// the duplicate-insert defect path.
	LieAboutExistence bool

	Flushes     int
	CacheClears int
}

// New returns a store holding the given edges as already persisted data.
func New(edges ...augment.Edge) *Store {
	s := &Store{
		index:  make(map[augment.Triple]struct{}),
		calls:  make(map[Op]int),
		faults: make(map[Op]fault),
	}
	for _, e := range edges {
		if _, dup := s.index[e.Triple()]; dup {
			panic(fmt.Sprintf("augmenttest: duplicate seed edge %s", e))
		}
		s.nextID++
		e.ID = s.nextID
		s.committed = append(s.committed, e)
		s.index[e.Triple()] = struct{}{}
	}
	return s
}

// Synset names a test sense the way the fixtures number them.
func Synset(n int) string {
	return fmt.Sprintf("synset %d", n)
}

// Rel builds an imported depth-1 edge between numbered synsets.
func Rel(source, target int, relName string) augment.Edge {
	return augment.Edge{
		Source:     Synset(source),
		Target:     Synset(target),
		RelName:    relName,
		Depth:      1,
		Provenance: ImportProvenance,
	}
}

// FailAfter makes op return err once it has succeeded n times.
func (s *Store) FailAfter(op Op, n int, err error) {
	s.faults[op] = fault{after: n, err: err}
}

// Calls reports how many times op was invoked.
func (s *Store) Calls(op Op) int {
	return s.calls[op]
}

func (s *Store) check(op Op) error {
	s.calls[op]++
	if f, ok := s.faults[op]; ok && s.calls[op] > f.after {
		return f.err
	}
	return nil
}

func (s *Store) ScanEdges(ctx context.Context) (augment.EdgeCursor, error) {
	if err := s.check(OpScan); err != nil {
		return nil, err
	}
	return &edgeCursor{store: s, pos: -1}, nil
}

func (s *Store) EdgeExists(ctx context.Context, source, target, relName string) (bool, error) {
	if err := s.check(OpExists); err != nil {
		return false, err
	}
	if s.LieAboutExistence {
		return false, nil
	}
	_, ok := s.index[augment.Triple{Source: source, Target: target, RelName: relName}]
	return ok, nil
}

func (s *Store) InsertEdge(ctx context.Context, e augment.Edge) error {
	if err := s.check(OpInsert); err != nil {
		return err
	}
	if _, dup := s.index[e.Triple()]; dup {
		return fmt.Errorf("inserting %s: %w", e.Triple(), augment.ErrDuplicateEdge)
	}
	s.index[e.Triple()] = struct{}{}
	s.pending = append(s.pending, e)
	return nil
}

func (s *Store) Compositions(ctx context.Context, relNames []string, depth int) (augment.TripleCursor, error) {
	if err := s.check(OpCompositions); err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(relNames))
	for _, r := range relNames {
		allowed[r] = true
	}
	base := make(map[string][]augment.Edge)
	for _, e := range s.committed {
		if e.Depth == 1 && allowed[e.RelName] {
			base[e.Source] = append(base[e.Source], e)
		}
	}
	var out []augment.Triple
	for _, a := range s.committed {
		if a.Depth != depth || !allowed[a.RelName] {
			continue
		}
		for _, b := range base[a.Target] {
			if b.RelName != a.RelName {
				continue
			}
			t := augment.Triple{Source: a.Source, Target: b.Target, RelName: a.RelName}
			if _, exists := s.index[t]; exists {
				continue
			}
			out = append(out, t)
		}
	}
	return &tripleCursor{triples: out, pos: -1}, nil
}

func (s *Store) Flush(ctx context.Context) error {
	if err := s.check(OpFlush); err != nil {
		return err
	}
	for _, e := range s.pending {
		s.nextID++
		e.ID = s.nextID
		s.committed = append(s.committed, e)
	}
	s.pending = s.pending[:0]
	s.Flushes++
	return nil
}

func (s *Store) ClearCache() {
	s.CacheClears++
}

// Edges returns the persisted edges sorted by source, target and relation.
func (s *Store) Edges() []augment.Edge {
	out := make([]augment.Edge, len(s.committed))
	copy(out, s.committed)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.RelName < b.RelName
	})
	return out
}

// Pending returns how many inserts wait for the next Flush.
func (s *Store) Pending() int {
	return len(s.pending)
}

// Find returns the persisted edge for a triple.
func (s *Store) Find(source, target, relName string) (augment.Edge, bool) {
	for _, e := range s.committed {
		if e.Source == source && e.Target == target && e.RelName == relName {
			return e, true
		}
	}
	return augment.Edge{}, false
}

// edgeCursor walks the committed slice live, so edges flushed during the
// scan are visited too.
type edgeCursor struct {
	store *Store
	pos   int
	err   error
}

func (c *edgeCursor) Next() bool {
	if c.err != nil {
		return false
	}
	if err := c.store.check(OpScan); err != nil {
		c.err = err
		return false
	}
	c.pos++
	return c.pos < len(c.store.committed)
}

func (c *edgeCursor) Edge() augment.Edge { return c.store.committed[c.pos] }
func (c *edgeCursor) Err() error         { return c.err }
func (c *edgeCursor) Close() error       { return nil }

type tripleCursor struct {
	triples []augment.Triple
	pos     int
}

func (c *tripleCursor) Next() bool {
	c.pos++
	return c.pos < len(c.triples)
}

func (c *tripleCursor) Triple() augment.Triple { return c.triples[c.pos] }
func (c *tripleCursor) Err() error             { return nil }
func (c *tripleCursor) Close() error           { return nil }
