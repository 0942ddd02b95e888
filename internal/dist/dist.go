package dist

import (
	"fmt"
	"path"
	"strings"

	"github.com/distbuild/distctl/internal/modules"
)

// Spec declares one distribution: a named include/exclude tag filter plus the
// output mode. Entries are static configuration and never mutated at runtime.
type Spec struct {
	Name     string            `json:"name"`
	Include  modules.StringSet `json:"include,omitempty"`
	Exclude  modules.StringSet `json:"exclude,omitempty"`
	Expanded bool              `json:"expanded,omitempty"`
}

// BundleFile returns the bundle filename for the given package name,
// `<package>-<distribution>.js`, with the minified segment inserted when the
// spec is not expanded.
func (s Spec) BundleFile(pkg string) string {
	name := fmt.Sprintf("%s-%s.js", pkg, s.baseName())
	if !s.Expanded {
		name = AddMinifiedSegment(name)
	}
	return name
}

// MapFile returns the source map filename accompanying a minified bundle, or
// "" for expanded distributions, which carry no map.
func (s Spec) MapFile(pkg string) string {
	if s.Expanded {
		return ""
	}
	return s.BundleFile(pkg) + ".map"
}

// ArchiveFile returns the name of the distributable archive for this spec.
func (s Spec) ArchiveFile(pkg, version string) string {
	return fmt.Sprintf("%s-%s-%s.zip", pkg, s.baseName(), version)
}

// baseName strips the conventional ".min" suffix so that "all.min" and "all"
// share the same bundle base name.
func (s Spec) baseName() string {
	return strings.TrimSuffix(s.Name, ".min")
}

// Matrix is the enumerable table of distributions a build run can produce.
type Matrix []Spec

func (m Matrix) Lookup(name string) (Spec, bool) {
	for _, s := range m {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

func (m Matrix) Names() []string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name
	}
	return names
}

// Validate enforces name uniqueness across the matrix.
func (m Matrix) Validate() error {
	seen := make(map[string]struct{}, len(m))
	for _, s := range m {
		if s.Name == "" {
			return fmt.Errorf("distribution spec without a name")
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("duplicate distribution %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// ExpectedArtifacts lists every file the matrix promises to produce under
// outDir: one bundle per spec plus a source map per minified spec. The list
// follows matrix order and is the generator input for output verification.
func (m Matrix) ExpectedArtifacts(pkg, outDir string) []string {
	var expected []string
	for _, s := range m {
		expected = append(expected, path.Join(outDir, s.BundleFile(pkg)))
		if mf := s.MapFile(pkg); mf != "" {
			expected = append(expected, path.Join(outDir, mf))
		}
	}
	return expected
}

// Default returns the built-in distribution matrix. Every filter is available
// in an expanded and a minified variant, with and without the jQuery modules.
func Default() Matrix {
	framework := modules.StringSet{"framework"}
	uio := modules.StringSet{"uiOptions"}
	jquery := modules.StringSet{"jQuery"}

	return Matrix{
		{Name: "all", Expanded: true},
		{Name: "all.min"},
		{Name: "all-no-jquery", Exclude: jquery, Expanded: true},
		{Name: "all-no-jquery.min", Exclude: jquery},
		{Name: "framework", Include: framework, Expanded: true},
		{Name: "framework.min", Include: framework},
		{Name: "framework-no-jquery", Include: framework, Exclude: jquery, Expanded: true},
		{Name: "framework-no-jquery.min", Include: framework, Exclude: jquery},
		{Name: "uio", Include: uio, Expanded: true},
		{Name: "uio.min", Include: uio},
		{Name: "uio-no-jquery", Include: uio, Exclude: jquery, Expanded: true},
		{Name: "uio-no-jquery.min", Include: uio, Exclude: jquery},
	}
}
