package distbuild

import (
	"context"
	"errors"
	"io"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/internal/minify"
	"github.com/distbuild/distctl/internal/pipeline"
	"github.com/distbuild/distctl/internal/verify"
)

// Artifacts describes one built distribution: the bundle file and, for
// minified distributions, its source map.
type Artifacts struct {
	Distribution string
	Bundle       string
	Map          string
}

// Builder accumulates the inputs of one build run.
type Builder struct {
	configFiles []string
	configData  []byte
	target      string
	name        string
	include     []string
	exclude     []string
	source      bool
	minifier    minify.Minifier
	output      io.Writer
}

func New() *Builder {
	return &Builder{}
}

// WithConfigFiles names the project configuration files, merged in order.
// Mutually exclusive with WithConfig.
func (b *Builder) WithConfigFiles(files ...string) *Builder {
	b.configFiles = files
	return b
}

// WithConfig supplies the project configuration directly.
func (b *Builder) WithConfig(bs []byte) *Builder {
	b.configData = bs
	return b
}

// WithTarget selects the build target: "all", a configured distribution
// name, or "custom".
func (b *Builder) WithTarget(target string) *Builder {
	b.target = target
	return b
}

// WithCustom describes the distribution a "custom" target builds. Source
// requests expanded output instead of minified.
func (b *Builder) WithCustom(name string, include, exclude []string, source bool) *Builder {
	b.name = name
	b.include = include
	b.exclude = exclude
	b.source = source
	return b
}

// WithMinifier overrides the configured external minifier.
func (b *Builder) WithMinifier(m minify.Minifier) *Builder {
	b.minifier = m
	return b
}

// WithOutput directs the verification report. Defaults to stdout.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// Run is a prepared build: configuration resolved, target bound, ready to
// execute.
type Run struct {
	settings config.Settings
	pipeline *pipeline.Pipeline
}

// Prepare loads and resolves the configuration and binds the target. The
// returned Run executes at most once.
func (b *Builder) Prepare(log *logging.Logger) (*Run, error) {
	if log == nil {
		log = logging.Discard()
	}

	root, err := b.loadRoot()
	if err != nil {
		return nil, err
	}

	settings, err := config.NewSettings(root, config.Options{
		Target:  b.target,
		Name:    b.name,
		Include: b.include,
		Exclude: b.exclude,
		Source:  b.source,
	}, log)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(settings, log)
	if b.minifier != nil {
		p = p.WithMinifier(b.minifier)
	}
	if b.output != nil {
		p = p.WithOutput(b.output)
	}
	return &Run{settings: settings, pipeline: p}, nil
}

func (b *Builder) loadRoot() (*config.Root, error) {
	switch {
	case b.configData != nil && len(b.configFiles) > 0:
		return nil, errors.New("configuration given both inline and as files")
	case b.configData != nil:
		return config.Parse(b.configData)
	case len(b.configFiles) > 0:
		bs, err := config.Merge(b.configFiles, false)
		if err != nil {
			return nil, err
		}
		return config.Parse(bs)
	default:
		return nil, errors.New("no configuration given")
	}
}

// Settings returns the resolved per-run configuration.
func (r *Run) Settings() config.Settings {
	return r.settings
}

// Execute runs the build pipeline for the bound target.
func (r *Run) Execute(ctx context.Context) error {
	return r.pipeline.Run(ctx)
}

// Artifacts returns the bundles a completed run produced.
func (r *Run) Artifacts() []Artifacts {
	built := r.pipeline.Artifacts()
	out := make([]Artifacts, len(built))
	for i, a := range built {
		out[i] = Artifacts{Distribution: a.Distribution, Bundle: a.Bundle, Map: a.Map}
	}
	return out
}

// Report returns the verification report of a completed run, or nil if the
// run skipped verification.
func (r *Run) Report() *verify.Report {
	return r.pipeline.Report()
}
