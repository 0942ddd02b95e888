package dist_test

import (
	"testing"

	"github.com/distbuild/distctl/internal/dist"
)

func TestAddMinifiedSegment(t *testing.T) {
	cases := []struct {
		note string
		in   string
		exp  string
	}{
		{"plain bundle", "infusion-all.js", "infusion-all.min.js"},
		{"source map keeps trailing extensions", "infusion-all.js.map", "infusion-all.min.js.map"},
		{"already minified is unchanged", "infusion-all.min.js", "infusion-all.min.js"},
		{"already minified map is unchanged", "infusion-all.min.js.map", "infusion-all.min.js.map"},
		{"single segment", "README", "README.min"},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			if got := dist.AddMinifiedSegment(tc.in); got != tc.exp {
				t.Errorf("AddMinifiedSegment(%q) = %q, want %q", tc.in, got, tc.exp)
			}
			// Re-applying yields the same string.
			if got := dist.AddMinifiedSegment(dist.AddMinifiedSegment(tc.in)); got != tc.exp {
				t.Errorf("AddMinifiedSegment is not idempotent for %q: got %q", tc.in, got)
			}
		})
	}
}
