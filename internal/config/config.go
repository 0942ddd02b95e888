package config

import (
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"

	"github.com/distbuild/distctl/internal/dist"
	"github.com/distbuild/distctl/internal/minify"
)

// Internal configuration data structures for distctl.

// Root is the top-level project configuration.
type Root struct {
	Package        Package       `json:"package"`
	Paths          Paths         `json:"paths,omitzero"`
	ModulesFile    string        `json:"modules_file,omitempty"`
	NecessityFiles []string      `json:"necessity_files,omitempty"`
	ExcludedFiles  []string      `json:"excluded_files,omitempty"`
	Minifier       minify.Config `json:"minifier,omitzero"`
	Assets         Command       `json:"assets,omitzero"`
	Distributions  []dist.Spec   `json:"distributions,omitempty"`
}

// Command describes an external tool invocation, e.g. the stylesheet
// preprocessor run during asset compilation.
type Command struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Package identifies the product the build emits artifacts for. Name prefixes
// every bundle and archive filename.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Paths locates the run's directories, all relative to the working directory
// unless absolute.
type Paths struct {
	Source   string `json:"source,omitempty"`
	Staging  string `json:"staging,omitempty"`
	Products string `json:"products,omitempty"`
}

func (r *Root) UnmarshalYAML(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawRoot

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	*r = Root(raw)
	return r.validate()
}

func (r *Root) validate() error {
	if r.Package.Name == "" {
		return fmt.Errorf("package name is required")
	}

	for _, pattern := range r.ExcludedFiles {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("failed to compile excluded file pattern %q: %w", pattern, err)
		}
	}

	return dist.Matrix(r.Distributions).Validate()
}

// Matrix returns the distributions this project builds: the configured
// overrides when present, the built-in matrix otherwise.
func (r *Root) Matrix() dist.Matrix {
	if len(r.Distributions) > 0 {
		return dist.Matrix(r.Distributions)
	}
	return dist.Default()
}

func ParseFile(filename string) (*Root, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return Parse(bs)
}

func Parse(bs []byte) (*Root, error) {
	if err := Validate(bs); err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &root, nil
}
