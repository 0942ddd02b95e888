package modules

import (
	"fmt"
	"strings"
)

// FileSet is an ordered, deduplicated sequence of source file paths. Files of
// a module's dependencies always precede the module's own files.
type FileSet []string

// CycleError reports a dependency cycle among module descriptors. Resolution
// returns no partial result when the graph is cyclic.
type CycleError struct {
	Modules []string
}

func (err *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among modules: %s", strings.Join(err.Modules, " -> "))
}

// Resolve computes the file list for one include/exclude tag filter.
//
// A module is selected when it matches the include set (or include is empty)
// and does not match the exclude set. Selected modules pull in the transitive
// closure of their dependencies regardless of tags, except that a dependency
// matching the exclude set is dropped: the exclude filter wins over the
// dependency closure.
//
// The result orders every dependency's files before its dependents', with
// ties broken by descriptor declaration order. Inputs are not mutated.
func Resolve(descriptors Descriptors, include, exclude StringSet) (FileSet, error) {
	r := resolver{
		descriptors: descriptors,
		exclude:     exclude,
		inprogress:  make(map[string]struct{}),
		done:        make(map[string]struct{}),
	}

	for _, d := range descriptors {
		if !selected(d, include, exclude) {
			continue
		}
		if err := r.visit(d); err != nil {
			return nil, err
		}
	}

	return r.flatten(), nil
}

func selected(d *Descriptor, include, exclude StringSet) bool {
	if len(include) > 0 && !d.Tags.ContainsAny(include) {
		return false
	}
	return !excluded(d, exclude)
}

func excluded(d *Descriptor, exclude StringSet) bool {
	return len(exclude) > 0 && d.Tags.ContainsAny(exclude)
}

type resolver struct {
	descriptors Descriptors
	exclude     StringSet
	inprogress  map[string]struct{}
	done        map[string]struct{}
	stack       []string
	sorted      Descriptors
}

func (r *resolver) visit(d *Descriptor) error {
	if _, ok := r.inprogress[d.Name]; ok {
		return &CycleError{Modules: cycleFrom(r.stack, d.Name)}
	}
	if _, ok := r.done[d.Name]; ok {
		return nil
	}

	r.inprogress[d.Name] = struct{}{}
	r.stack = append(r.stack, d.Name)

	for _, name := range d.Dependencies {
		dep, ok := r.descriptors.Lookup(name)
		if !ok {
			return fmt.Errorf("module %q depends on undeclared module %q", d.Name, name)
		}
		if excluded(dep, r.exclude) {
			continue
		}
		if err := r.visit(dep); err != nil {
			return err
		}
	}

	r.done[d.Name] = struct{}{}
	delete(r.inprogress, d.Name)
	r.stack = r.stack[:len(r.stack)-1]
	r.sorted = append(r.sorted, d)
	return nil
}

func (r *resolver) flatten() FileSet {
	var files FileSet
	seen := make(map[string]struct{})
	for _, d := range r.sorted {
		for _, f := range d.Files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	return files
}

// cycleFrom trims the visit stack down to the cycle members, starting at the
// first occurrence of the revisited module and closing the loop.
func cycleFrom(stack []string, name string) []string {
	for i, m := range stack {
		if m == name {
			cycle := make([]string, 0, len(stack)-i+1)
			cycle = append(cycle, stack[i:]...)
			return append(cycle, name)
		}
	}
	return append([]string{}, name)
}
