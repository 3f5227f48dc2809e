package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a relation has no registered type or inverse.
var ErrNotFound = errors.New("catalog: relation not found")

// RelType is the coarse structural classification of a canonical relation.
type RelType string

const (
	Taxonomic RelType = "taxonomic"
	PartWhole RelType = "partWhole"
	Other     RelType = "other"
)

// Valid reports whether t is one of the known structural types.
func (t RelType) Valid() bool {
	switch t {
	case Taxonomic, PartWhole, Other:
		return true
	default:
		return false
	}
}

// Relation names used by the default catalog.
const (
	Antonym          = "antonym"
	Hypernym         = "hypernym"
	Hyponym          = "hyponym"
	HypernymInstance = "hypernymInstance"
	HyponymInstance  = "hyponymInstance"
	Holonym          = "holonym"
	Meronym          = "meronym"
	HolonymComponent = "holonymComponent"
	MeronymComponent = "meronymComponent"
	HolonymMember    = "holonymMember"
	MeronymMember    = "meronymMember"
	HolonymPart      = "holonymPart"
	MeronymPart      = "meronymPart"
	HolonymPortion   = "holonymPortion"
	MeronymPortion   = "meronymPortion"
	HolonymSubstance = "holonymSubstance"
	MeronymSubstance = "meronymSubstance"
	Synonym          = "synonym"
	SynonymNear      = "synonymNear"
)

// Catalog holds which relations are canonical, their structural types and
// the inverse pairing table. A Catalog is immutable once built and safe to
// share between goroutines.
type Catalog struct {
	canonical []string
	types     map[string]RelType
	inverses  map[string]string
}

// Option configures a Catalog under construction.
type Option func(*builder)

type builder struct {
	canonical []string
	types     map[string]RelType
	inverses  map[string]string
	errs      []error
}

// WithCanonical declares name as canonical with structural type t.
func WithCanonical(name string, t RelType) Option {
	return func(b *builder) {
		if name == "" {
			b.errs = append(b.errs, errors.New("canonical relation with empty name"))
			return
		}
		if !t.Valid() {
			b.errs = append(b.errs, fmt.Errorf("canonical relation %q: unknown type %q", name, t))
			return
		}
		if _, dup := b.types[name]; dup {
			b.errs = append(b.errs, fmt.Errorf("canonical relation %q declared twice", name))
			return
		}
		b.canonical = append(b.canonical, name)
		b.types[name] = t
	}
}

// WithInverse registers a and b as inverses of each other. a == b declares a
// self-inverse relation.
func WithInverse(a, b string) Option {
	return func(bl *builder) {
		if a == "" || b == "" {
			bl.errs = append(bl.errs, fmt.Errorf("inverse pair (%q, %q) has an empty name", a, b))
			return
		}
		if prev, ok := bl.inverses[a]; ok && prev != b {
			bl.errs = append(bl.errs, fmt.Errorf("relation %q already has inverse %q, cannot pair with %q", a, prev, b))
			return
		}
		if prev, ok := bl.inverses[b]; ok && prev != a {
			bl.errs = append(bl.errs, fmt.Errorf("relation %q already has inverse %q, cannot pair with %q", b, prev, a))
			return
		}
		bl.inverses[a] = b
		bl.inverses[b] = a
	}
}

// New builds a catalog from the given options.
func New(opts ...Option) (*Catalog, error) {
	b := &builder{
		types:    make(map[string]RelType),
		inverses: make(map[string]string),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	return &Catalog{
		canonical: b.canonical,
		types:     b.types,
		inverses:  b.inverses,
	}, nil
}

// DefaultOptions returns the options that make up the default catalog, so
// callers can extend it.
func DefaultOptions() []Option {
	return []Option{
		WithCanonical(Hypernym, Taxonomic),
		WithCanonical(HypernymInstance, Taxonomic),
		WithCanonical(Holonym, PartWhole),
		WithCanonical(HolonymComponent, PartWhole),
		WithCanonical(HolonymMember, PartWhole),
		WithCanonical(HolonymPart, PartWhole),
		WithCanonical(HolonymPortion, PartWhole),
		WithCanonical(HolonymSubstance, PartWhole),

		WithInverse(Antonym, Antonym),
		WithInverse(Hypernym, Hyponym),
		WithInverse(HypernymInstance, HyponymInstance),
		WithInverse(Holonym, Meronym),
		WithInverse(HolonymComponent, MeronymComponent),
		WithInverse(HolonymMember, MeronymMember),
		WithInverse(HolonymPart, MeronymPart),
		WithInverse(HolonymPortion, MeronymPortion),
		WithInverse(HolonymSubstance, MeronymSubstance),
	}
}

// Default returns the built-in catalog: hypernymy and holonymy are canonical,
// their hyponym/meronym counterparts are reachable only through inverses.
func Default() *Catalog {
	c, err := New(DefaultOptions()...)
	if err != nil {
		panic("programmer error: default catalog is invalid: " + err.Error())
	}
	return c
}

// IsCanonical reports whether relName belongs to the canonical set.
func (c *Catalog) IsCanonical(relName string) bool {
	_, ok := c.types[relName]
	return ok
}

// RelationType returns the structural type of a canonical relation.
func (c *Catalog) RelationType(relName string) (RelType, error) {
	t, ok := c.types[relName]
	if !ok {
		return "", fmt.Errorf("%w: no relation type for %q", ErrNotFound, relName)
	}
	return t, nil
}

// InverseOf returns the registered inverse of relName.
func (c *Catalog) InverseOf(relName string) (string, error) {
	inv, ok := c.inverses[relName]
	if !ok {
		return "", fmt.Errorf("%w: no inverse for %q", ErrNotFound, relName)
	}
	return inv, nil
}

// HasInverse reports whether relName has a registered inverse.
func (c *Catalog) HasInverse(relName string) bool {
	_, ok := c.inverses[relName]
	return ok
}

// IsInverse reports whether b is the registered inverse of a. A false result
// means the pairing is unknown, not that the relations are unrelated.
func (c *Catalog) IsInverse(a, b string) bool {
	inv, ok := c.inverses[a]
	return ok && inv == b
}

// CanonicalRelations returns the canonical names in declaration order.
func (c *Catalog) CanonicalRelations() []string {
	out := make([]string, len(c.canonical))
	copy(out, c.canonical)
	return out
}

// InversePairs returns each registered pairing once, keyed by the
// lexicographically smaller name.
func (c *Catalog) InversePairs() [][2]string {
	var pairs [][2]string
	for a, b := range c.inverses {
		if a <= b {
			pairs = append(pairs, [2]string{a, b})
		}
	}
	sortPairs(pairs)
	return pairs
}
