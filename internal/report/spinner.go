package report

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// spinner animates the in-flight job line on interactive terminals. The
// message callback is evaluated per frame so the elapsed time stays live.
type spinner struct {
	writer  io.Writer
	message func() string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newSpinner(w io.Writer, message func() string) *spinner {
	return &spinner{writer: w, message: message}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

// Stop halts the animation and clears the line. It blocks until the
// animation goroutine has exited, so the caller can print the result line
// without interleaving.
func (s *spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh
	fmt.Fprint(s.writer, "\r\033[K")
}

func (s *spinner) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	frame := 0
	s.render(frame)
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			frame = (frame + 1) % len(spinnerFrames)
			s.render(frame)
		}
	}
}

func (s *spinner) render(frame int) {
	fmt.Fprintf(s.writer, "\r\033[K%s %s", spinnerFrames[frame], s.message())
}
