package ui

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is a goroutine-safe writer for spinner tests: the animation
// goroutine and the test both touch it.
type lockedBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func newSpinnerForTest(buf *lockedBuffer) *Spinner {
	return NewSpinner(buf, SpinnerOptions{
		Message:  "working",
		NoColor:  true,
		Interval: time.Millisecond,
	})
}

func TestSpinnerStartStop(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "working") {
		t.Errorf("expected the message in output, got %q", out)
	}
	if !strings.Contains(out, "\r\033[K") {
		t.Errorf("expected the line to be cleared on stop, got %q", out)
	}
}

func TestSpinnerSuccess(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Start()
	s.Success("all done")

	out := buf.String()
	if !strings.Contains(out, "✓ all done\n") {
		t.Errorf("expected success line, got %q", out)
	}
}

func TestSpinnerError(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Start()
	s.Error("it broke")

	if out := buf.String(); !strings.Contains(out, "✗ it broke\n") {
		t.Errorf("expected error line, got %q", out)
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Stop() // must not panic or block
	if out := buf.String(); out != "" {
		t.Errorf("stop before start must write nothing, got %q", out)
	}
}

func TestSpinnerDoubleStop(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Start()
	s.Stop()
	s.Stop() // second stop is a no-op
}

func TestSpinnerRestart(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Start()
	s.Stop()
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Success("second run")

	if out := buf.String(); !strings.Contains(out, "✓ second run\n") {
		t.Errorf("spinner not restartable, got %q", out)
	}
}

func TestSpinnerSuccessWithoutStart(t *testing.T) {
	buf := &lockedBuffer{}
	s := newSpinnerForTest(buf)
	s.Success("immediate")
	if out := buf.String(); out != "✓ immediate\n" {
		t.Errorf("expected just the success line, got %q", out)
	}
}

func TestSpinnerDefaultInterval(t *testing.T) {
	s := NewSpinner(&lockedBuffer{}, SpinnerOptions{Message: "x"})
	if s.interval != 100*time.Millisecond {
		t.Errorf("expected 100ms default, got %v", s.interval)
	}
}
