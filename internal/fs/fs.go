package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/gobwas/glob"
)

// Filter matches file paths against include/exclude glob patterns. An empty
// include list matches everything; excludes are applied afterwards. Patterns
// are tried against the full slash-separated path and against the base name.
type Filter struct {
	included []glob.Glob
	excluded []glob.Glob
}

func NewFilter(included, excluded []string) (*Filter, error) {
	in, err := compile(included)
	if err != nil {
		return nil, err
	}
	ex, err := compile(excluded)
	if err != nil {
		return nil, err
	}
	return &Filter{included: in, excluded: ex}, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile file pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (f *Filter) Match(p string) bool {
	if len(f.included) > 0 && !matchAny(f.included, p) {
		return false
	}
	return !matchAny(f.excluded, p)
}

func matchAny(globs []glob.Glob, p string) bool {
	for _, g := range globs {
		if g.Match(p) || g.Match(path.Base(p)) {
			return true
		}
	}
	return false
}

// NewFilterFS wraps fsys so that only files accepted by the given patterns
// are visible. Directories stay visible so that walks can descend.
func NewFilterFS(fsys fs.FS, included, excluded []string) (fs.FS, error) {
	filter, err := NewFilter(included, excluded)
	if err != nil {
		return nil, err
	}
	return &filterFS{fsys: fsys, filter: filter}, nil
}

type filterFS struct {
	fsys   fs.FS
	filter *Filter
}

func (f *filterFS) Open(name string) (fs.File, error) {
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if !info.IsDir() && !f.filter.Match(name) {
		_ = file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return file, nil
}

func (f *filterFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return nil, err
	}
	kept := entries[:0:0]
	for _, e := range entries {
		if e.IsDir() || f.filter.Match(path.Join(name, e.Name())) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// ContainsFiles returns true if the given fs.FS contains any files.
func ContainsFiles(fsys fs.FS) (bool, error) {
	errFound := os.ErrExist // sentinel to stop the walk early

	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return errFound
		}
		return nil
	})
	if err == errFound {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}
