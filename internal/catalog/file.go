package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of an alternate catalog:
//
//	canonical:
//	  - name: hypernym
//	    type: taxonomic
//	inverses:
//	  - [hypernym, hyponym]
//	  - [antonym, antonym]
type File struct {
	Canonical []CanonicalEntry `yaml:"canonical" json:"canonical"`
	Inverses  [][]string       `yaml:"inverses" json:"inverses"`
}

// CanonicalEntry is one canonical relation in a catalog file.
type CanonicalEntry struct {
	Name string  `yaml:"name" json:"name"`
	Type RelType `yaml:"type" json:"type"`
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog yaml: %w", err)
	}
	opts := make([]Option, 0, len(f.Canonical)+len(f.Inverses))
	for _, e := range f.Canonical {
		opts = append(opts, WithCanonical(e.Name, e.Type))
	}
	for i, pair := range f.Inverses {
		if len(pair) != 2 {
			return nil, fmt.Errorf("catalog inverses[%d]: expected 2 names, got %d", i, len(pair))
		}
		opts = append(opts, WithInverse(pair[0], pair[1]))
	}
	return New(opts...)
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ToFile converts the catalog back into its file layout.
func (c *Catalog) ToFile() File {
	f := File{Canonical: make([]CanonicalEntry, 0, len(c.canonical))}
	for _, name := range c.canonical {
		f.Canonical = append(f.Canonical, CanonicalEntry{Name: name, Type: c.types[name]})
	}
	for _, p := range c.InversePairs() {
		f.Inverses = append(f.Inverses, []string{p[0], p[1]})
	}
	return f
}

func sortPairs(pairs [][2]string) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
