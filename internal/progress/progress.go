package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar tracks progress across the distributions of one build run. A nil-safe
// silent bar is available for non-interactive callers.
type Bar struct {
	bar *progressbar.ProgressBar
}

func New(max int, description string) *Bar {
	return &Bar{bar: progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)}
}

// Silent returns a bar that renders nothing.
func Silent(max int) *Bar {
	return &Bar{bar: progressbar.NewOptions(max, progressbar.OptionSetWriter(io.Discard))}
}

func (b *Bar) Add(n int) {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Add(n)
}

func (b *Bar) Finish() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}
