package augment

import (
	"time"

	"smatch/lexgraph/internal/stats"
)

// Phase names a step of the augmentation.
type Phase string

const (
	PhaseNormalize Phase = "normalize"
	PhaseClosure   Phase = "closure"
)

// Result reports a completed phase.
type Result struct {
	Phase    Phase                 `json:"phase"`
	Stats    *stats.InsertionStats `json:"-"`
	Inserted map[string]int64      `json:"inserted"`
	Total    int64                 `json:"total"`
	Scanned  int                   `json:"scanned,omitempty"` // normalize: edges visited
	Rounds   int                   `json:"rounds,omitempty"`  // closure: rounds executed, including the final empty one
	Elapsed  time.Duration         `json:"elapsed"`
}

func newResult(phase Phase, st *stats.InsertionStats, started time.Time) *Result {
	return &Result{
		Phase:    phase,
		Stats:    st,
		Inserted: st.Counts(),
		Total:    st.TotalEdges(),
		Elapsed:  time.Since(started),
	}
}
