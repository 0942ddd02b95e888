package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/dist"
	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/internal/modules"
	"github.com/distbuild/distctl/internal/pipeline"
)

const modulesYAML = `
- name: core
  files: [framework/core.js]
  tags: [framework]
- name: ui
  files: [components/ui.js]
  dependencies: [core]
  tags: [uiOptions]
- name: jquery
  files: [lib/jq.js]
  tags: [jQuery]
`

// fakeMinifier copies the concatenation and emits an empty map, standing in
// for the external tool.
type fakeMinifier struct {
	skipMap bool
}

func (m *fakeMinifier) Minify(_ context.Context, src, dst, sourceMap string) error {
	bs, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, bs, 0o644); err != nil {
		return err
	}
	if m.skipMap {
		return nil
	}
	return os.WriteFile(sourceMap, []byte("{}"), 0o644)
}

func testProject(t *testing.T) config.Settings {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")

	for _, p := range []string{"framework/core.js", "components/ui.js", "lib/jq.js", "README.md"} {
		full := filepath.Join(src, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("// "+p+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(src, "modules.yaml"), []byte(modulesYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	return config.Settings{
		Target:         config.TargetAll,
		Package:        config.Package{Name: "infusion", Version: "4.0.0"},
		SourceDir:      src,
		StagingDir:     filepath.Join(root, "build"),
		ProductsDir:    filepath.Join(root, "products"),
		ModulesFile:    "modules.yaml",
		NecessityFiles: []string{"README.md"},
		Matrix: dist.Matrix{
			{Name: "all", Expanded: true},
			{Name: "all.min"},
			{Name: "uio", Include: modules.StringSet{"uiOptions"}, Expanded: true},
		},
		Branch:    "main",
		Revision:  "abc1234",
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		DoPackage: true,
		DoVerify:  true,
	}
}

func TestRunFullTarget(t *testing.T) {
	s := testProject(t)

	var out bytes.Buffer
	p := pipeline.New(s, logging.Discard()).
		WithMinifier(&fakeMinifier{}).
		WithOutput(&out)

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"infusion-all.js",
		"infusion-all.min.js",
		"infusion-all.min.js.map",
		"infusion-uio.js",
		"infusion-all-4.0.0.zip",
	} {
		if _, err := os.Stat(filepath.Join(s.ProductsDir, want)); err != nil {
			t.Errorf("expected product %s: %v", want, err)
		}
	}

	// Necessity file staged alongside the resolved sources.
	if _, err := os.Stat(filepath.Join(s.StagingDir, "README.md")); err != nil {
		t.Errorf("expected staged README.md: %v", err)
	}

	if report := p.Report(); report == nil || !report.Pass() {
		t.Errorf("expected passing verification report, got %+v", report)
	}
	if !strings.Contains(out.String(), "expected files present") {
		t.Errorf("expected verification summary in output:\n%s", out.String())
	}

	if len(p.Artifacts()) != 3 {
		t.Errorf("expected 3 artifacts, got %d", len(p.Artifacts()))
	}
}

func TestRunCustomTargetSkipsPackaging(t *testing.T) {
	s := testProject(t)
	s.Target = config.TargetCustom
	s.Matrix = dist.Matrix{{
		Name:     "mywidgets.min",
		Include:  modules.StringSet{"uiOptions"},
		Exclude:  modules.StringSet{"jQuery"},
		Expanded: false,
	}}
	s.DoPackage = false

	p := pipeline.New(s, logging.Discard()).
		WithMinifier(&fakeMinifier{}).
		WithOutput(&bytes.Buffer{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(s.ProductsDir, "infusion-mywidgets.min.js")); err != nil {
		t.Errorf("expected custom bundle: %v", err)
	}

	entries, err := os.ReadDir(s.ProductsDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".zip") {
			t.Errorf("custom target must not package, found %s", e.Name())
		}
	}

	// Only the custom closure is staged: jQuery stays out.
	if _, err := os.Stat(filepath.Join(s.StagingDir, "lib/jq.js")); err == nil {
		t.Error("excluded module staged for custom target")
	}
}

func TestRunVerifyFailureIsFatal(t *testing.T) {
	s := testProject(t)

	var out bytes.Buffer
	p := pipeline.New(s, logging.Discard()).
		WithMinifier(&fakeMinifier{skipMap: true}).
		WithOutput(&out)

	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected verification failure")
	}

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageVerify {
		t.Fatalf("expected StageVerify failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "infusion-all.min.js.map") {
		t.Errorf("error does not name the missing file: %v", err)
	}
	if !strings.Contains(out.String(), "MISSING") {
		t.Errorf("expected MISSING in report output:\n%s", out.String())
	}
}

func TestRunMissingModulesFile(t *testing.T) {
	s := testProject(t)
	s.ModulesFile = "nope.yaml"

	p := pipeline.New(s, logging.Discard()).WithOutput(&bytes.Buffer{})

	err := p.Run(context.Background())
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageDependencies {
		t.Fatalf("expected stage-dependencies failure, got %v", err)
	}
}

func TestRunCycleFailsResolve(t *testing.T) {
	s := testProject(t)
	cyclic := `
- name: a
  files: [framework/core.js]
  dependencies: [b]
- name: b
  files: [components/ui.js]
  dependencies: [a]
`
	if err := os.WriteFile(filepath.Join(s.SourceDir, "modules.yaml"), []byte(cyclic), 0o644); err != nil {
		t.Fatal(err)
	}

	p := pipeline.New(s, logging.Discard()).WithOutput(&bytes.Buffer{})

	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected cycle failure")
	}

	var cycleErr *modules.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError through the pipeline, got %v", err)
	}
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != pipeline.StageResolve {
		t.Fatalf("expected resolve-modules failure, got %v", err)
	}
}

func TestStageString(t *testing.T) {
	for stage, want := range map[pipeline.Stage]string{
		pipeline.StageClean:        "clean",
		pipeline.StageDependencies: "stage-dependencies",
		pipeline.StageVerify:       "verify",
	} {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d).String() = %q, want %q", stage, got, want)
		}
	}
}
