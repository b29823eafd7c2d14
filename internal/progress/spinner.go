package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// spinnerFrames defines the animation characters for the spinner.
var spinnerFrames = []string{"|", "/", "-", "\\"}

// spinnerInterval is the time between spinner frame updates.
const spinnerInterval = 100 * time.Millisecond

// Spinner shows an animated status line while the manifest is fetched or
// an add-on is installed. Off a terminal it prints each message once.
type Spinner struct {
	output io.Writer
	isTTY  bool

	mu      sync.Mutex
	message string
	running bool
	done    chan struct{}
	exited  chan struct{}
}

// NewSpinner creates a spinner writing to output, or os.Stderr if nil.
func NewSpinner(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}
	return &Spinner{
		output: output,
		isTTY:  IsTerminal(output),
	}
}

// Start shows message and, on a terminal, begins animating. Starting a
// running spinner only replaces the message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if !s.isTTY {
		fmt.Fprintln(s.output, message)
		return
	}
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.exited = make(chan struct{})
	go s.animate(s.done, s.exited)
}

// SetMessage updates the spinner message while it's running.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.stop("")
}

// StopWithMessage halts the animation and prints a final line.
func (s *Spinner) StopWithMessage(message string) {
	s.stop(message)
}

func (s *Spinner) stop(final string) {
	s.mu.Lock()
	running := s.running
	s.running = false
	done, exited := s.done, s.exited
	s.mu.Unlock()

	if running {
		close(done)
		<-exited
		clearLine(s.output)
	}
	if final != "" {
		fmt.Fprintln(s.output, final)
	}
}

func (s *Spinner) animate(done <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Fprint(s.output, pad(fmt.Sprintf("\r%s %s", spinnerFrames[frame%len(spinnerFrames)], msg)))
		}
	}
}
