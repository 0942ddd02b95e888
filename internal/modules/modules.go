package modules

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/goccy/go-yaml"
)

// Descriptor declares one source module: the files it contributes, the
// modules it depends on, and the category tags distributions select by.
// Descriptors are immutable once loaded.
type Descriptor struct {
	Name         string    `json:"name"`
	Files        []string  `json:"files"`
	Dependencies StringSet `json:"dependencies,omitempty"`
	Tags         StringSet `json:"tags,omitempty"`
}

func (d *Descriptor) Equal(other *Descriptor) bool {
	return fastEqual(d, other, func(d, other *Descriptor) bool {
		return d.Name == other.Name &&
			slices.Equal(d.Files, other.Files) &&
			d.Dependencies.Equal(other.Dependencies) &&
			d.Tags.Equal(other.Tags)
	})
}

func (d *Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("module descriptor is missing a name")
	}
	if len(d.Files) == 0 {
		return fmt.Errorf("module %q declares no files", d.Name)
	}
	return nil
}

// Descriptors is an ordered set of module descriptors. Declaration order is
// significant: it breaks ties when the resolver orders the dependency graph.
type Descriptors []*Descriptor

func (ds Descriptors) Lookup(name string) (*Descriptor, bool) {
	for _, d := range ds {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

func (ds Descriptors) Names() []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}

// Validate checks each descriptor and reports dependency references that do
// not name a declared module.
func (ds Descriptors) Validate() error {
	seen := make(map[string]struct{}, len(ds))
	for _, d := range ds {
		if err := d.validate(); err != nil {
			return err
		}
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("duplicate module %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	for _, d := range ds {
		for _, dep := range d.Dependencies {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("module %q depends on undeclared module %q", d.Name, dep)
			}
		}
	}
	return nil
}

type rawDocument struct {
	Modules Descriptors `json:"modules"`
}

// Parse decodes a module descriptor document. Both a bare list of descriptors
// and a document with a top-level "modules" list are accepted; JSON input
// works too since goccy/go-yaml handles it.
func Parse(bs []byte) (Descriptors, error) {
	var ds Descriptors
	if err := yaml.Unmarshal(bs, &ds); err != nil {
		var doc rawDocument
		if err2 := yaml.Unmarshal(bs, &doc); err2 != nil {
			return nil, fmt.Errorf("failed to unmarshal module descriptors: %w", err)
		}
		ds = doc.Modules
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func ParseFile(filename string) (Descriptors, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read module descriptors %s: %w", filename, err)
	}
	return Parse(bs)
}

type StringSet []string

func (a StringSet) Equal(b StringSet) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	sort.Strings(x)
	sort.Strings(y)
	return slices.Equal(x, y)
}

func (a StringSet) Contains(value string) bool {
	return slices.Contains(a, value)
}

// ContainsAny returns true if any element of b is in a.
func (a StringSet) ContainsAny(b StringSet) bool {
	return slices.ContainsFunc(b, a.Contains)
}

func (a StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(a))
}

func fastEqual[V any](a, b *V, slowEqual func(a, b *V) bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return slowEqual(a, b)
}
