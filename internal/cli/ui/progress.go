package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Spinner animates a braille throbber next to a message while a slow
// operation (scaffolding, a server starting) runs, then replaces the line
// with a final success or error mark. Safe to stop more than once.
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	message string
	running bool
	stop    chan struct{}
	stopped chan struct{}
}

// SpinnerOptions configures a Spinner.
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // default 100ms
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	interval := opts.Interval
	if interval == 0 {
		interval = 100 * time.Millisecond
	}
	return &Spinner{
		writer:   w,
		interval: interval,
		noColor:  opts.NoColor,
		message:  opts.Message,
	}
}

// Start begins the animation. Starting an already-running spinner is a
// no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.animate(s.stop, s.stopped)
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and prints a check-marked message.
func (s *Spinner) Success(message string) {
	s.Stop()
	c := color.New(color.FgGreen, color.Bold)
	if s.noColor {
		c.DisableColor()
	}
	c.Fprintf(s.writer, "✓ %s\n", message)
}

// Error stops the spinner and prints a cross-marked message.
func (s *Spinner) Error(message string) {
	s.Stop()
	c := color.New(color.FgRed, color.Bold)
	if s.noColor {
		c.DisableColor()
	}
	c.Fprintf(s.writer, "✗ %s\n", message)
}

func (s *Spinner) animate(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	frameColor := color.New(color.FgCyan)
	if s.noColor {
		frameColor.DisableColor()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	for {
		s.mu.Lock()
		message := s.message
		s.mu.Unlock()
		fmt.Fprintf(s.writer, "\r%s %s", frameColor.Sprint(spinnerFrames[frame]), message)
		frame = (frame + 1) % len(spinnerFrames)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
