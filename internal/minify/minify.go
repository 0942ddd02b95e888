package minify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/distbuild/distctl/internal/logging"
)

// ErrUnavailable marks a minifier command that could not be started at all,
// as opposed to one that ran and rejected its input.
var ErrUnavailable = errors.New("minifier command unavailable")

// Minifier produces the compressed variant of a bundle plus its source map.
// The compression itself is delegated to an external tool; only the
// input/output contract is defined here.
type Minifier interface {
	Minify(ctx context.Context, src, dst, sourceMap string) error
}

// Config describes the external minifier invocation. Args may reference the
// ${SOURCE}, ${TARGET} and ${MAP} placeholders, which are substituted per
// call.
type Config struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

type Exec struct {
	cfg Config
	log *logging.Logger
}

func NewExec(cfg Config, log *logging.Logger) *Exec {
	return &Exec{cfg: cfg, log: log}
}

// Minify runs the configured command synchronously. The command must write
// the minified bundle to dst and the source map to sourceMap; a non-zero exit
// is returned as an error carrying the command's stderr.
func (e *Exec) Minify(ctx context.Context, src, dst, sourceMap string) error {
	if e.cfg.Command == "" {
		return fmt.Errorf("%w: no command configured", ErrUnavailable)
	}

	vars := map[string]string{
		"SOURCE": src,
		"TARGET": dst,
		"MAP":    sourceMap,
	}
	args := make([]string, len(e.cfg.Args))
	for i, a := range e.cfg.Args {
		args[i] = os.Expand(a, func(key string) string { return vars[key] })
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.cfg.Command, args...)
	cmd.Stderr = &stderr

	e.log.Debugf("minify %s -> %s via %s", src, dst, e.cfg.Command)

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnavailable, e.cfg.Command)
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("minifier %s failed: %v: %s", e.cfg.Command, err, stderr.String())
		}
		return fmt.Errorf("minifier %s failed: %w", e.cfg.Command, err)
	}
	return nil
}
