package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 80 * time.Millisecond

	// spinnerElapsedAfter is when the status line starts showing elapsed time.
	spinnerElapsedAfter = time.Second
)

// Spinner animates a single status line on w until Stop is called or its
// context ends. The message can change while it runs.
type Spinner struct {
	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	start   time.Time

	mu      sync.Mutex
	message string
	width   int // visible width of the last frame, for clearing
}

// newSpinner creates a spinner that stops with ctx.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if d := time.Since(s.start); d >= spinnerElapsedAfter {
		text = fmt.Sprintf("%s (%.1fs)", text, d.Seconds())
	}
	// Pad over a longer previous frame.
	pad := max(s.width-len(text)-2, 0)
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(text), strings.Repeat(" ", pad))
	s.width = len(text) + 2
}

// SetMessage replaces the status text from the next frame on.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2))
	s.width = 0
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner has stopped, by Stop or by its
// parent context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
