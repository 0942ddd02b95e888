package vcs

import (
	"errors"

	git "github.com/go-git/go-git/v5"
)

// Unknown is the placeholder substituted when repository metadata cannot be
// resolved. Missing VCS metadata is never fatal to a build.
const Unknown = "unknown"

// State distinguishes how a metadata lookup concluded. Lookups are never
// collapsed into one default path: callers log each state distinctly.
type State int

const (
	// StateResolved means the lookup succeeded with a value.
	StateResolved State = iota
	// StateUnavailable means the source tree is not a repository (or has no
	// commits yet); the default is substituted.
	StateUnavailable
	// StateFailed means the lookup failed unexpectedly; the default is
	// substituted but the error is worth surfacing in diagnostics.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateUnavailable:
		return "unavailable"
	default:
		return "failed"
	}
}

type Result struct {
	Value string
	State State
	Err   error
}

// ValueOr returns the resolved value, or def when the lookup did not resolve.
func (r Result) ValueOr(def string) string {
	if r.State == StateResolved {
		return r.Value
	}
	return def
}

// Metadata holds the branch and revision of the source tree a build runs in.
type Metadata struct {
	Branch   Result
	Revision Result
}

// Describe looks up the current branch and revision of the repository
// containing dir. The call is synchronous and blocking; there is no timeout.
func Describe(dir string) Metadata {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		state := StateFailed
		if errors.Is(err, git.ErrRepositoryNotExists) {
			state = StateUnavailable
		}
		return Metadata{
			Branch:   Result{State: state, Err: err},
			Revision: Result{State: state, Err: err},
		}
	}

	head, err := repo.Head()
	if err != nil {
		// A freshly initialized repository has no HEAD to resolve.
		return Metadata{
			Branch:   Result{State: StateUnavailable, Err: err},
			Revision: Result{State: StateUnavailable, Err: err},
		}
	}

	branch := Result{State: StateUnavailable}
	if head.Name().IsBranch() {
		branch = Result{Value: head.Name().Short(), State: StateResolved}
	}

	return Metadata{
		Branch:   branch,
		Revision: Result{Value: head.Hash().String(), State: StateResolved},
	}
}
