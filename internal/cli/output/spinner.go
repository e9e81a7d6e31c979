package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner shows progress on the error writer while a long step runs.
// It only animates in text mode; otherwise Start is a no-op and the final
// message is printed plainly.
type Spinner struct {
	w       io.Writer
	r       *Renderer
	msg     string
	frames  spinner.Spinner
	animate bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner with the given message.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{
		w:       r.errOut,
		r:       r,
		msg:     msg,
		frames:  spinner.Dot,
		animate: r.EffectiveMode() == ModeText && r.isTTY,
	}
}

// Start begins animating.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.animate || s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.frames.FPS)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := s.frames.Frames[i%len(s.frames.Frames)]
			_, _ = fmt.Fprintf(s.w, "\r%s %s", s.r.styles.Info.Render(frame), s.msg)
			select {
			case <-stop:
				_, _ = fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}(s.stop, s.done)
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

// Success stops the spinner and prints a success line.
func (s *Spinner) Success(msg string) {
	s.Stop()
	if s.animate {
		_, _ = fmt.Fprintf(s.w, "%s %s\n", s.r.styles.StatusSuccess.Render(IconSuccess), msg)
	}
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(msg string) {
	s.Stop()
	if s.animate {
		_, _ = fmt.Fprintf(s.w, "%s %s\n", s.r.styles.StatusFailed.Render(IconFailure), msg)
	}
}
