package augment

import (
	"fmt"

	"smatch/lexgraph/internal/catalog"
)

// DefaultProvenance tags every edge inferred by this package.
const DefaultProvenance = "smatch/lexgraph/augment"

// Edge is a typed semantic relation between two senses. Depth 1 marks an
// imported edge or a normalization inverse; depth k > 1 marks an edge composed
// from a depth-1 edge and a depth-(k-1) edge of the same relation.
type Edge struct {
	ID         int64           `json:"id"`
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	RelName    string          `json:"rel_name"`
	RelType    catalog.RelType `json:"rel_type,omitempty"`
	Depth      int             `json:"depth"`
	Provenance string          `json:"provenance"`
}

// Triple returns the identity of the edge; at most one edge exists per triple.
func (e Edge) Triple() Triple {
	return Triple{Source: e.Source, Target: e.Target, RelName: e.RelName}
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s@%d]-> %s", e.Source, e.RelName, e.Depth, e.Target)
}

// Triple identifies an edge by its endpoints and relation name.
type Triple struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	RelName string `json:"rel_name"`
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.Source, t.Target, t.RelName)
}
