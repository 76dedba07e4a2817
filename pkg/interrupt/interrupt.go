// Package interrupt records whether the user pressed Ctrl-C so callers can
// tell a cancelled prompt or child process apart from a real failure. It never
// kills anything itself.
package interrupt

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// ErrInterrupted is returned by operations that noticed a raised flag.
var ErrInterrupted = errors.New("interrupted")

// Flag is a cooperative interrupt flag fed by a signal handler.
type Flag struct {
	raised atomic.Bool

	mu      sync.Mutex
	running bool
	sigCh   chan os.Signal
	stopCh  chan struct{}
}

// NewFlag returns a lowered flag that is not yet listening.
func NewFlag() *Flag {
	return &Flag{}
}

// Start begins listening for SIGINT and SIGTERM.
func (f *Flag) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.running = true
	f.sigCh = make(chan os.Signal, 1)
	f.stopCh = make(chan struct{})
	signal.Notify(f.sigCh, os.Interrupt, syscall.SIGTERM)
	go f.listen(f.sigCh, f.stopCh)
}

func (f *Flag) listen(sigCh <-chan os.Signal, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-sigCh:
			f.raised.Store(true)
		}
	}
}

// Stop stops listening. The flag keeps its value.
func (f *Flag) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	signal.Stop(f.sigCh)
	close(f.stopCh)
	f.running = false
}

// Raise sets the flag.
func (f *Flag) Raise() {
	f.raised.Store(true)
}

// Raised reports whether an interrupt was received.
func (f *Flag) Raised() bool {
	return f.raised.Load()
}

// Reset lowers the flag.
func (f *Flag) Reset() {
	f.raised.Store(false)
}
