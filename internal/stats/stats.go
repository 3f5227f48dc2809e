package stats

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// InsertionStats counts edge insertions per relation name. It is not safe
// for concurrent use; each phase run owns its own accumulator.
type InsertionStats struct {
	counts map[string]int64
}

// New returns an empty accumulator.
func New() *InsertionStats {
	return &InsertionStats{counts: make(map[string]int64)}
}

// Increment adds one insertion for relName.
func (s *InsertionStats) Increment(relName string) {
	if relName == "" {
		panic("programmer error: InsertionStats.Increment called with an empty relation name")
	}
	s.counts[relName]++
}

// Count returns the insertions recorded for relName, 0 if none.
func (s *InsertionStats) Count(relName string) int64 {
	return s.counts[relName]
}

// TotalEdges returns the sum of all counters.
func (s *InsertionStats) TotalEdges() int64 {
	var total int64
	for _, n := range s.counts {
		total += n
	}
	return total
}

// RelNames returns the counted relation names, sorted.
func (s *InsertionStats) RelNames() []string {
	names := make([]string, 0, len(s.counts))
	for name := range s.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge adds every counter of other into s.
func (s *InsertionStats) Merge(other *InsertionStats) {
	if other == nil {
		return
	}
	for name, n := range other.counts {
		s.counts[name] += n
	}
}

// Counts returns a copy of the per-relation counters.
func (s *InsertionStats) Counts() map[string]int64 {
	out := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Summary renders a human-readable per-relation breakdown.
func (s *InsertionStats) Summary() string {
	var sb strings.Builder
	total := s.TotalEdges()
	if total == 0 {
		sb.WriteString("   No edges were inserted. \n")
	} else {
		sb.WriteString("   Inserted " + humanize.Comma(total) + " edges:\n")
		for _, name := range s.RelNames() {
			sb.WriteString("        " + name + ":   " + humanize.Comma(s.counts[name]) + "\n")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// String implements fmt.Stringer.
func (s *InsertionStats) String() string {
	return s.Summary()
}
