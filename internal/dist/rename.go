package dist

import (
	"slices"
	"strings"
)

// AddMinifiedSegment derives the minified-variant filename from a base
// filename by inserting "min" as the second dot-separated segment, so
// "infusion-all.js" becomes "infusion-all.min.js" and multi-extension names
// like "infusion-all.js.map" become "infusion-all.min.js.map". Names that
// already contain a "min" segment are returned unchanged, which makes the
// transform idempotent.
func AddMinifiedSegment(name string) string {
	segments := strings.Split(name, ".")
	if slices.Contains(segments, "min") {
		return name
	}
	segments = slices.Insert(segments, 1, "min")
	return strings.Join(segments, ".")
}
