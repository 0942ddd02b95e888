package distbuild_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/pkg/distbuild"
)

func testConfig(t *testing.T) []byte {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")

	files := map[string]string{
		"framework/core.js": "// core\n",
		"components/ui.js":  "// ui\n",
		"modules.yaml": `
- name: core
  files: [framework/core.js]
  tags: [framework]
- name: ui
  files: [components/ui.js]
  dependencies: [core]
  tags: [uiOptions]
`,
	}
	for p, content := range files {
		full := filepath.Join(src, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return fmt.Appendf(nil, `
package:
  name: infusion
  version: 0.0.1
paths:
  source: %s
  staging: %s
  products: %s
distributions:
  - name: all
    expanded: true
`, src, filepath.Join(root, "build"), filepath.Join(root, "products"))
}

func TestPrepareAndExecute(t *testing.T) {
	run, err := distbuild.New().
		WithConfig(testConfig(t)).
		WithTarget("all").
		WithOutput(&bytes.Buffer{}).
		Prepare(logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if err := run.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	artifacts := run.Artifacts()
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if got := filepath.Base(artifacts[0].Bundle); got != "infusion-all.js" {
		t.Errorf("unexpected bundle name %q", got)
	}
	if _, err := os.Stat(artifacts[0].Bundle); err != nil {
		t.Errorf("bundle not written: %v", err)
	}
	if report := run.Report(); report == nil || !report.Pass() {
		t.Errorf("expected passing report, got %+v", report)
	}
}

func TestPrepareCustomTarget(t *testing.T) {
	run, err := distbuild.New().
		WithConfig(testConfig(t)).
		WithTarget("custom").
		WithCustom("widgets", []string{"uiOptions"}, nil, true).
		WithOutput(&bytes.Buffer{}).
		Prepare(logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	s := run.Settings()
	if s.DoPackage {
		t.Error("custom target must not package")
	}
	if len(s.Matrix) != 1 || s.Matrix[0].Name != "widgets" {
		t.Errorf("unexpected matrix %+v", s.Matrix)
	}

	if err := run.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(run.Artifacts()[0].Bundle); got != "infusion-widgets.js" {
		t.Errorf("unexpected bundle name %q", got)
	}
}

func TestPrepareConfigErrors(t *testing.T) {
	if _, err := distbuild.New().Prepare(nil); err == nil {
		t.Error("expected error without configuration")
	}
	b := distbuild.New().
		WithConfig([]byte("package: {name: x}")).
		WithConfigFiles("also.yaml")
	if _, err := b.Prepare(nil); err == nil {
		t.Error("expected error for conflicting configuration inputs")
	}
}
