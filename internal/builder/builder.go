package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/dist"
	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/internal/metrics"
	"github.com/distbuild/distctl/internal/minify"
	"github.com/distbuild/distctl/internal/modules"
	"github.com/distbuild/distctl/internal/progress"
)

// Builder turns staged source files into distribution bundles. One Builder is
// bound to one run's settings; distributions are built strictly one after the
// other, each writing only its own output files.
type Builder struct {
	settings    config.Settings
	descriptors modules.Descriptors
	minifier    minify.Minifier
	log         *logging.Logger
	bar         *progress.Bar
}

// Artifacts names the files one distribution build produced.
type Artifacts struct {
	Distribution string
	Bundle       string
	Map          string
}

func New(settings config.Settings) *Builder {
	return &Builder{settings: settings, log: logging.Discard()}
}

func (b *Builder) WithDescriptors(ds modules.Descriptors) *Builder {
	b.descriptors = ds
	return b
}

func (b *Builder) WithMinifier(m minify.Minifier) *Builder {
	b.minifier = m
	return b
}

func (b *Builder) WithLogger(log *logging.Logger) *Builder {
	b.log = log
	return b
}

func (b *Builder) WithProgress(bar *progress.Bar) *Builder {
	b.bar = bar
	return b
}

// Build builds every distribution in the bound matrix and returns the
// artifacts in matrix order.
func (b *Builder) Build(ctx context.Context) ([]Artifacts, error) {
	artifacts := make([]Artifacts, 0, len(b.settings.Matrix))
	for _, spec := range b.settings.Matrix {
		start := time.Now()
		a, err := b.buildOne(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("distribution %s: %w", spec.Name, err)
		}
		metrics.DistBuildDuration.WithLabelValues(spec.Name).Observe(time.Since(start).Seconds())
		b.bar.Add(1)
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

func (b *Builder) buildOne(ctx context.Context, spec dist.Spec) (Artifacts, error) {
	files, err := modules.Resolve(b.descriptors, spec.Include, spec.Exclude)
	if err != nil {
		return Artifacts{}, err
	}

	b.log.Debugf("distribution %s resolves to %d files", spec.Name, len(files))

	concatenated, err := b.concatenate(files)
	if err != nil {
		return Artifacts{}, err
	}

	pkg := b.settings.Package.Name
	bundlePath := filepath.Join(b.settings.ProductsDir, spec.BundleFile(pkg))
	preamble := b.preamble(spec)

	if spec.Expanded {
		if err := os.WriteFile(bundlePath, []byte(preamble+concatenated), 0o644); err != nil {
			return Artifacts{}, err
		}
		b.log.Infof("built %s", bundlePath)
		return Artifacts{Distribution: spec.Name, Bundle: bundlePath}, nil
	}

	mapPath := filepath.Join(b.settings.ProductsDir, spec.MapFile(pkg))
	if err := b.minifyBundle(ctx, spec, concatenated, bundlePath, mapPath, preamble); err != nil {
		return Artifacts{}, err
	}
	b.log.Infof("built %s (+%s)", bundlePath, filepath.Base(mapPath))
	return Artifacts{Distribution: spec.Name, Bundle: bundlePath, Map: mapPath}, nil
}

// concatenate joins the staged copies of the resolved files in order.
func (b *Builder) concatenate(files modules.FileSet) (string, error) {
	var sb strings.Builder
	for _, f := range files {
		bs, err := os.ReadFile(filepath.Join(b.settings.StagingDir, f))
		if err != nil {
			return "", fmt.Errorf("failed to read staged file %s: %w", f, err)
		}
		sb.Write(bs)
		if len(bs) > 0 && bs[len(bs)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// minifyBundle hands the concatenated source to the external minifier and
// prepends the preamble to its output. The intermediate file lives in the
// staging area under a name unique to the distribution, so concurrent specs
// within one run never share intermediate state.
func (b *Builder) minifyBundle(ctx context.Context, spec dist.Spec, concatenated, bundlePath, mapPath, preamble string) error {
	intermediate := filepath.Join(b.settings.StagingDir, "."+spec.Name+".concat.js")
	if err := os.WriteFile(intermediate, []byte(concatenated), 0o644); err != nil {
		return err
	}
	defer os.Remove(intermediate)

	if b.minifier == nil {
		return fmt.Errorf("%w: no minifier bound", minify.ErrUnavailable)
	}
	if err := b.minifier.Minify(ctx, intermediate, bundlePath, mapPath); err != nil {
		return err
	}

	minified, err := os.ReadFile(bundlePath)
	if err != nil {
		return fmt.Errorf("minifier produced no output: %w", err)
	}
	return os.WriteFile(bundlePath, append([]byte(preamble), minified...), 0o644)
}

// preamble renders the metadata comment block injected at the top of every
// generated bundle.
func (b *Builder) preamble(spec dist.Spec) string {
	s := b.settings
	return fmt.Sprintf(`/*!
 * %s - %s
 * Version: %s
 * Built: %s
 * Branch: %s
 * Revision: %s
 */
`, s.Package.Name, spec.Name, s.Package.Version,
		s.Timestamp.Format(time.RFC3339), s.Branch, s.Revision)
}
