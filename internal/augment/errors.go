package augment

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage marks a persistence fault during a scan, an existence check,
	// an insert or a flush. The failed phase can be re-run as a whole.
	ErrStorage = errors.New("augment: storage error")

	// ErrInvariantViolation marks a defect, such as a duplicate insert that
	// slipped past the existence check. It is fatal to the run.
	ErrInvariantViolation = errors.New("augment: invariant violation")

	// ErrDuplicateEdge is returned by stores asked to insert a triple that
	// already exists.
	ErrDuplicateEdge = errors.New("augment: duplicate edge")
)

func storageError(op string, err error) error {
	if errors.Is(err, ErrDuplicateEdge) {
		return fmt.Errorf("%w: %s: %w", ErrInvariantViolation, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// ErrInvalidQuery is returned by readers for a depth bound below 1 or an
// empty relation list.
var ErrInvalidQuery = errors.New("augment: invalid query")

// ValidateQuery checks the arguments of a Reader lookup.
func ValidateQuery(maxDepth int, relNames []string) error {
	if maxDepth < 1 {
		return fmt.Errorf("%w: max depth %d, must be at least 1", ErrInvalidQuery, maxDepth)
	}
	if len(relNames) == 0 {
		return fmt.Errorf("%w: no relation names", ErrInvalidQuery)
	}
	for _, r := range relNames {
		if r == "" {
			return fmt.Errorf("%w: empty relation name", ErrInvalidQuery)
		}
	}
	return nil
}
