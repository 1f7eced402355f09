package cmd

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// spinner is an indeterminate progress line on stderr.
type spinner struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

func startSpinner(w io.Writer, description string) *spinner {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	s := &spinner{bar: bar, stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(s.done)
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-t.C:
				_ = bar.Add(1)
			}
		}
	}()
	return s
}

// Describe swaps the message shown next to the spinner.
func (s *spinner) Describe(description string) { s.bar.Describe(description) }

// Stop halts the animation and clears the line. It is safe to call twice.
func (s *spinner) Stop() {
	select {
	case <-s.stop:
		return
	default:
		close(s.stop)
	}
	<-s.done
	_ = s.bar.Finish()
}
