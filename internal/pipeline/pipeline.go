package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/distbuild/distctl/internal/archive"
	"github.com/distbuild/distctl/internal/builder"
	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/dist"
	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/internal/metrics"
	"github.com/distbuild/distctl/internal/minify"
	"github.com/distbuild/distctl/internal/modules"
	"github.com/distbuild/distctl/internal/progress"
	"github.com/distbuild/distctl/internal/staging"
	"github.com/distbuild/distctl/internal/verify"
)

// Stage enumerates the pipeline's states. The set is closed: stages are
// dispatched through the table in Run, never constructed dynamically.
type Stage int

const (
	StageClean Stage = iota
	StageDependencies
	StageAssets
	StageResolve
	StageFiles
	StageBundle
	StagePackage
	StageVerify
)

func (s Stage) String() string {
	switch s {
	case StageClean:
		return "clean"
	case StageDependencies:
		return "stage-dependencies"
	case StageAssets:
		return "compile-assets"
	case StageResolve:
		return "resolve-modules"
	case StageFiles:
		return "stage-files"
	case StageBundle:
		return "bundle"
	case StagePackage:
		return "package"
	case StageVerify:
		return "verify"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError wraps a stage-local fault. The pipeline transitions to failed on
// the first StageError; no stage is retried and nothing is rolled back. The
// prescribed recovery is a re-run from clean.
type StageError struct {
	Stage Stage
	Err   error
}

func (err *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", err.Stage, err.Err)
}

func (err *StageError) Unwrap() error {
	return err.Err
}

// Pipeline threads one immutable Settings value through the build stages.
// Runs are strictly sequential and synchronous: every stage completes before
// the next begins, and a run proceeds until done or failed.
type Pipeline struct {
	settings config.Settings
	log      *logging.Logger
	bar      *progress.Bar
	minifier minify.Minifier
	output   io.Writer

	// intermediate state produced by stages, in order
	descriptors modules.Descriptors
	resolved    modules.FileSet
	artifacts   []builder.Artifacts
	report      *verify.Report
}

func New(settings config.Settings, log *logging.Logger) *Pipeline {
	return &Pipeline{
		settings: settings,
		log:      log,
		output:   os.Stdout,
		minifier: minify.NewExec(settings.Minifier, log),
	}
}

func (p *Pipeline) WithMinifier(m minify.Minifier) *Pipeline {
	p.minifier = m
	return p
}

func (p *Pipeline) WithProgress(bar *progress.Bar) *Pipeline {
	p.bar = bar
	return p
}

func (p *Pipeline) WithOutput(w io.Writer) *Pipeline {
	p.output = w
	return p
}

// Artifacts returns the bundle artifacts produced by a completed run.
func (p *Pipeline) Artifacts() []builder.Artifacts {
	return p.artifacts
}

// Report returns the verification report of a completed run, or nil if the
// run's target skips verification.
func (p *Pipeline) Report() *verify.Report {
	return p.report
}

// Run executes the stage sequence for the bound target. Optional stages are
// skipped according to the settings, not removed from the table.
func (p *Pipeline) Run(ctx context.Context) error {
	metrics.RunsStarted.Inc()

	stages := []struct {
		stage   Stage
		run     func(context.Context) error
		enabled bool
	}{
		{StageClean, p.clean, true},
		{StageDependencies, p.stageDependencies, true},
		{StageAssets, p.compileAssets, true},
		{StageResolve, p.resolveModules, true},
		{StageFiles, p.stageFiles, true},
		{StageBundle, p.bundle, true},
		{StagePackage, p.packageStaging, p.settings.DoPackage},
		{StageVerify, p.verifyOutputs, p.settings.DoVerify},
	}

	for _, s := range stages {
		if !s.enabled {
			p.log.Debugf("skipping stage %s for target %s", s.stage, p.settings.Target)
			continue
		}
		p.log.Infof("stage %s", s.stage)
		if err := s.run(ctx); err != nil {
			metrics.RunsFailed.WithLabelValues(s.stage.String()).Inc()
			return &StageError{Stage: s.stage, Err: err}
		}
	}

	p.log.Infof("target %s done", p.settings.Target)
	return nil
}

func (p *Pipeline) clean(context.Context) error {
	return staging.Clean(p.settings, p.log)
}

func (p *Pipeline) stageDependencies(context.Context) error {
	path := p.settings.ModulesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.settings.SourceDir, path)
	}

	ds, err := modules.ParseFile(path)
	if err != nil {
		return err
	}
	p.descriptors = ds
	p.log.Debugf("loaded %d module descriptors", len(ds))
	return nil
}

// compileAssets runs the configured stylesheet preprocessor, if any. The
// invocation is synchronous and its failure is fatal to the run; only a
// missing configuration is skipped.
func (p *Pipeline) compileAssets(ctx context.Context) error {
	cmd := p.settings.Assets
	if cmd.Command == "" {
		p.log.Debugf("no asset compilation configured")
		return nil
	}

	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	c.Dir = p.settings.SourceDir
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("asset compiler unavailable: %s", cmd.Command)
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("asset compiler %s: %v: %s", cmd.Command, err, stderr.String())
		}
		return fmt.Errorf("asset compiler %s: %w", cmd.Command, err)
	}
	return nil
}

func (p *Pipeline) resolveModules(context.Context) error {
	include, exclude := p.runFilter()
	files, err := modules.Resolve(p.descriptors, include, exclude)
	if err != nil {
		return err
	}
	p.resolved = files
	p.log.Debugf("resolved %d files for target %s", len(files), p.settings.Target)
	return nil
}

// runFilter returns the file-selection filter for the whole run. A
// single-distribution run stages only that distribution's closure; the full
// matrix stages everything.
func (p *Pipeline) runFilter() (modules.StringSet, modules.StringSet) {
	if len(p.settings.Matrix) == 1 {
		return p.settings.Matrix[0].Include, p.settings.Matrix[0].Exclude
	}
	return nil, nil
}

func (p *Pipeline) stageFiles(context.Context) error {
	return staging.Stage(p.settings, p.resolved, p.log)
}

func (p *Pipeline) bundle(ctx context.Context) error {
	artifacts, err := builder.New(p.settings).
		WithDescriptors(p.descriptors).
		WithMinifier(p.minifier).
		WithLogger(p.log).
		WithProgress(p.bar).
		Build(ctx)
	if err != nil {
		return err
	}
	p.artifacts = artifacts
	return nil
}

func (p *Pipeline) packageStaging(context.Context) error {
	s := p.settings
	name := dist.Spec{Name: s.Target}.ArchiveFile(s.Package.Name, s.Package.Version)
	dst := filepath.Join(s.ProductsDir, name)
	if err := archive.Zip(s.StagingDir, dst); err != nil {
		return err
	}
	p.log.Infof("packaged %s", dst)
	return nil
}

func (p *Pipeline) verifyOutputs(context.Context) error {
	s := p.settings
	expected := verify.Expected(func() []string {
		return s.Matrix.ExpectedArtifacts(s.Package.Name, s.ProductsDir)
	})

	report := verify.Run(expected)
	p.report = report

	metrics.LastVerifyExpected.Set(float64(report.Expected))
	metrics.LastVerifyMissing.Set(float64(report.Missing))

	if err := report.Write(p.output); err != nil {
		return err
	}
	if !report.Pass() {
		return fmt.Errorf("missing files: %s: %w",
			strings.Join(report.MissingFiles(), ", "), report.Err())
	}
	return nil
}
