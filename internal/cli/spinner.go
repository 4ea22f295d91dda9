package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a one-line status on a terminal until stopped or until its
// context ends. Only the animation goroutine writes to w while it runs.
type Spinner struct {
	ctx     context.Context
	w       io.Writer
	message atomic.Pointer[string]

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	exited    chan struct{}
	started   atomic.Bool
	cancelled atomic.Bool
	width     int
}

// newSpinner returns a spinner drawing on stderr.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	s := &Spinner{
		ctx:    ctx,
		w:      w,
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	s.message.Store(&message)
	return s
}

// Start launches the animation. Calls after the first are ignored.
func (s *Spinner) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
	})
}

func (s *Spinner) run() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			return
		case <-s.ctx.Done():
			s.cancelled.Store(true)
			s.erase()
			return
		case <-tick.C:
			msg := *s.message.Load()
			icon := spinnerFrames[frame%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(icon), StyleDim.Render(msg))
			s.width = max(s.width, len(msg)+2)
		}
	}
}

// Update swaps the message shown beside the animation.
func (s *Spinner) Update(message string) {
	s.message.Store(&message)
}

// Stop halts the animation and erases the line. Safe to call repeatedly.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if !s.started.Load() {
			return
		}
		<-s.exited
		s.erase()
	})
}

// Cancelled reports whether the context ended the animation before Stop did.
func (s *Spinner) Cancelled() bool {
	return s.cancelled.Load()
}

func (s *Spinner) erase() {
	if s.width > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}
