package graph

import (
	"sort"

	"smatch/lexgraph/internal/augment"
)

// GraphSnapshot holds the relation graph with precomputed adjacency lists.
// Nodes are the senses that appear as a source or target of some edge.
type GraphSnapshot struct {
	Nodes  map[string]struct{}
	Edges  []augment.Edge
	Adj    map[string][]string // undirected, distinct neighbours
	OutAdj map[string][]string // directed: source -> targets
	InAdj  map[string][]string // directed: target -> sources
}

// NewSnapshot builds a GraphSnapshot from raw edges. Parallel edges with
// different relation names count once in the adjacency lists.
func NewSnapshot(edges []augment.Edge) *GraphSnapshot {
	nodes := make(map[string]struct{})
	adj := make(map[string][]string)
	outAdj := make(map[string][]string)
	inAdj := make(map[string][]string)

	type pair struct{ a, b string }
	seenDirected := make(map[pair]bool)
	seenUndirected := make(map[pair]bool)

	for _, e := range edges {
		nodes[e.Source] = struct{}{}
		nodes[e.Target] = struct{}{}

		if !seenDirected[pair{e.Source, e.Target}] {
			seenDirected[pair{e.Source, e.Target}] = true
			outAdj[e.Source] = append(outAdj[e.Source], e.Target)
			inAdj[e.Target] = append(inAdj[e.Target], e.Source)
		}

		if e.Source == e.Target {
			continue
		}
		a, b := e.Source, e.Target
		if b < a {
			a, b = b, a
		}
		if !seenUndirected[pair{a, b}] {
			seenUndirected[pair{a, b}] = true
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}

	return &GraphSnapshot{
		Nodes:  nodes,
		Edges:  edges,
		Adj:    adj,
		OutAdj: outAdj,
		InAdj:  inAdj,
	}
}

// Filter returns a new snapshot holding only the edges keep accepts.
func (s *GraphSnapshot) Filter(keep func(augment.Edge) bool) *GraphSnapshot {
	var edges []augment.Edge
	for _, e := range s.Edges {
		if keep(e) {
			edges = append(edges, e)
		}
	}
	return NewSnapshot(edges)
}

// NodeIDs returns all node IDs, sorted
func (s *GraphSnapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
