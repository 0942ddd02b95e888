package config

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/distbuild/distctl/internal/dist"
	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/internal/minify"
	"github.com/distbuild/distctl/internal/modules"
	"github.com/distbuild/distctl/internal/vcs"
)

// TargetAll is the predefined full build: the entire distribution matrix,
// packaged and verified.
const TargetAll = "all"

// TargetCustom is the user-parameterized build: one distribution assembled
// from --name/--include/--exclude, not packaged.
const TargetCustom = "custom"

// Options carries the command-line knobs bound to one run.
type Options struct {
	Target  string
	Name    string
	Include []string
	Exclude []string
	// Source requests human-readable output for the custom target instead of
	// the default minified output.
	Source bool
}

// Settings is the fully resolved, immutable per-run configuration. It is
// constructed exactly once at run entry, environment expansion and the VCS
// metadata lookup included, and threaded by value into every stage. No stage
// re-resolves configuration and nothing writes to it after construction.
type Settings struct {
	Target         string
	Package        Package
	SourceDir      string
	StagingDir     string
	ProductsDir    string
	ModulesFile    string
	NecessityFiles []string
	ExcludedFiles  []string
	Minifier       minify.Config
	Assets         Command

	// Matrix holds the distributions this run builds; FullMatrix is the whole
	// configured table, which scopes standalone verification.
	Matrix     dist.Matrix
	FullMatrix dist.Matrix

	Branch    string
	Revision  string
	Timestamp time.Time

	// Packaging is skipped for the custom target; verification runs for all
	// targets over the run's own matrix.
	DoPackage bool
	DoVerify  bool
}

// NewSettings performs the single deferred-resolution pass over the project
// configuration: defaults, environment expansion, target binding, and the
// VCS metadata lookup with its "unknown" fallback.
func NewSettings(root *Root, opts Options, log *logging.Logger) (Settings, error) {
	s := Settings{
		Package: Package{
			Name:    os.ExpandEnv(root.Package.Name),
			Version: cmp.Or(os.ExpandEnv(root.Package.Version), "0.0.0"),
		},
		SourceDir:      cmp.Or(os.ExpandEnv(root.Paths.Source), "."),
		StagingDir:     cmp.Or(os.ExpandEnv(root.Paths.Staging), "build"),
		ProductsDir:    cmp.Or(os.ExpandEnv(root.Paths.Products), "products"),
		ModulesFile:    cmp.Or(os.ExpandEnv(root.ModulesFile), "modules.yaml"),
		NecessityFiles: root.NecessityFiles,
		ExcludedFiles:  root.ExcludedFiles,
		Minifier:       root.Minifier,
		Assets:         root.Assets,
		FullMatrix:     root.Matrix(),
		Timestamp:      time.Now().UTC(),
		DoVerify:       true,
	}

	target := cmp.Or(opts.Target, TargetAll)
	s.Target = target

	switch target {
	case TargetAll:
		s.Matrix = s.FullMatrix
		s.DoPackage = true
	case TargetCustom:
		spec := dist.Spec{
			Name:     cmp.Or(opts.Name, TargetCustom),
			Include:  modules.StringSet(opts.Include),
			Exclude:  modules.StringSet(opts.Exclude),
			Expanded: opts.Source,
		}
		if !spec.Expanded {
			spec.Name += ".min"
		}
		s.Matrix = dist.Matrix{spec}
	default:
		spec, ok := s.FullMatrix.Lookup(target)
		if !ok {
			return Settings{}, fmt.Errorf("unknown build target %q (known: %v)", target, s.FullMatrix.Names())
		}
		s.Matrix = dist.Matrix{spec}
		s.DoPackage = true
	}

	md := vcs.Describe(s.SourceDir)
	s.Branch = md.Branch.ValueOr(vcs.Unknown)
	s.Revision = md.Revision.ValueOr(vcs.Unknown)
	logLookup(log, "branch", md.Branch)
	logLookup(log, "revision", md.Revision)

	return s, nil
}

func logLookup(log *logging.Logger, what string, r vcs.Result) {
	switch r.State {
	case vcs.StateResolved:
		log.Debugf("resolved %s: %s", what, r.Value)
	case vcs.StateUnavailable:
		log.Debugf("%s unavailable, substituting %q: %v", what, vcs.Unknown, r.Err)
	case vcs.StateFailed:
		log.Warnf("%s lookup failed, substituting %q: %v", what, vcs.Unknown, r.Err)
	}
}
