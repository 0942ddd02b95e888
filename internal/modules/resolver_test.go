package modules_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/distbuild/distctl/internal/modules"
)

func TestResolve(t *testing.T) {

	descriptors := modules.Descriptors{
		{Name: "core", Files: []string{"core.js"}, Tags: []string{"framework"}},
		{Name: "ui", Files: []string{"ui.js"}, Dependencies: []string{"core"}, Tags: []string{"uiOptions"}},
		{Name: "jquery", Files: []string{"jq.js"}, Tags: []string{"jQuery"}},
	}

	cases := []struct {
		note        string
		descriptors modules.Descriptors
		include     modules.StringSet
		exclude     modules.StringSet
		exp         modules.FileSet
	}{
		{
			note:        "no filters selects everything in declaration order",
			descriptors: descriptors,
			exp:         modules.FileSet{"core.js", "ui.js", "jq.js"},
		},
		{
			note:        "include pulls dependencies in via closure",
			descriptors: descriptors,
			include:     modules.StringSet{"uiOptions"},
			exp:         modules.FileSet{"core.js", "ui.js"},
		},
		{
			note:        "include filters unmatched tags",
			descriptors: descriptors,
			include:     modules.StringSet{"framework"},
			exp:         modules.FileSet{"core.js"},
		},
		{
			note: "exclude wins over include",
			descriptors: modules.Descriptors{
				{Name: "both", Files: []string{"both.js"}, Tags: []string{"framework", "jQuery"}},
				{Name: "core", Files: []string{"core.js"}, Tags: []string{"framework"}},
			},
			include: modules.StringSet{"framework"},
			exclude: modules.StringSet{"jQuery"},
			exp:     modules.FileSet{"core.js"},
		},
		{
			note: "excluded dependency is dropped from the closure",
			descriptors: modules.Descriptors{
				{Name: "jquery", Files: []string{"jq.js"}, Tags: []string{"jQuery"}},
				{Name: "widget", Files: []string{"widget.js"}, Dependencies: []string{"jquery"}, Tags: []string{"uiOptions"}},
			},
			include: modules.StringSet{"uiOptions"},
			exclude: modules.StringSet{"jQuery"},
			exp:     modules.FileSet{"widget.js"},
		},
		{
			note: "shared files deduplicated by first occurrence",
			descriptors: modules.Descriptors{
				{Name: "a", Files: []string{"shared.js", "a.js"}},
				{Name: "b", Files: []string{"b.js", "shared.js"}},
			},
			exp: modules.FileSet{"shared.js", "a.js", "b.js"},
		},
		{
			note: "dependency files precede dependents across chains",
			descriptors: modules.Descriptors{
				{Name: "top", Files: []string{"top.js"}, Dependencies: []string{"mid"}},
				{Name: "mid", Files: []string{"mid1.js", "mid2.js"}, Dependencies: []string{"base"}},
				{Name: "base", Files: []string{"base.js"}},
			},
			exp: modules.FileSet{"base.js", "mid1.js", "mid2.js", "top.js"},
		},
		{
			note:        "empty include set behaves like no include filter",
			descriptors: descriptors,
			include:     modules.StringSet{},
			exp:         modules.FileSet{"core.js", "ui.js", "jq.js"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			got, err := modules.Resolve(tc.descriptors, tc.include, tc.exclude)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("unexpected file set (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveCycle(t *testing.T) {
	descriptors := modules.Descriptors{
		{Name: "a", Files: []string{"a.js"}, Dependencies: []string{"b"}},
		{Name: "b", Files: []string{"b.js"}, Dependencies: []string{"c"}},
		{Name: "c", Files: []string{"c.js"}, Dependencies: []string{"a"}},
	}

	files, err := modules.Resolve(descriptors, nil, nil)
	if files != nil {
		t.Fatalf("expected no partial result, got %v", files)
	}

	var cycleErr *modules.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		found := false
		for _, m := range cycleErr.Modules {
			if m == name {
				found = true
			}
		}
		if !found {
			t.Errorf("cycle error does not name module %q: %v", name, cycleErr.Modules)
		}
	}
}

func TestResolveMissingDependency(t *testing.T) {
	descriptors := modules.Descriptors{
		{Name: "a", Files: []string{"a.js"}, Dependencies: []string{"ghost"}},
	}
	if _, err := modules.Resolve(descriptors, nil, nil); err == nil {
		t.Fatal("expected error for undeclared dependency")
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	descriptors := modules.Descriptors{
		{Name: "core", Files: []string{"core.js"}, Tags: []string{"framework"}},
		{Name: "ui", Files: []string{"ui.js"}, Dependencies: []string{"core"}, Tags: []string{"uiOptions"}},
	}
	clone := modules.Descriptors{
		{Name: "core", Files: []string{"core.js"}, Tags: []string{"framework"}},
		{Name: "ui", Files: []string{"ui.js"}, Dependencies: []string{"core"}, Tags: []string{"uiOptions"}},
	}

	if _, err := modules.Resolve(descriptors, modules.StringSet{"uiOptions"}, nil); err != nil {
		t.Fatal(err)
	}

	for i := range descriptors {
		if !descriptors[i].Equal(clone[i]) {
			t.Errorf("descriptor %q mutated by Resolve", descriptors[i].Name)
		}
	}
}
