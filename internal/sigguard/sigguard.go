// Package sigguard holds off process interrupts while file metadata is read.
//
// Hold registers a handler for SIGINT and SIGTERM so that the default
// termination does not fire mid-read. Holds nest across goroutines; once the
// last one is released the handler is removed and any signal caught in the
// meantime is delivered again.
package sigguard

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/juho05/log"
)

var signals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var (
	mu      sync.Mutex
	holders int
	pending chan os.Signal
)

// raise re-delivers sig to the current process.
var raise = func(sig os.Signal) {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		log.Errorf("sigguard: find own process: %s", err)
		return
	}
	if err := p.Signal(sig); err != nil {
		log.Errorf("sigguard: re-raise %s: %s", sig, err)
	}
}

// Hold suspends interrupt delivery until the returned function is called.
// The release function is safe to call more than once.
//
// Releasing the last hold calls signal.Stop, which restores the runtime's
// default action for SIGINT and SIGTERM. A disposition installed with
// signal.Ignore before the first Hold is not restored; callers that ignore
// these signals should keep their own signal.Notify registration instead.
//
//	defer sigguard.Hold()()
func Hold() (release func()) {
	mu.Lock()
	if holders == 0 {
		pending = make(chan os.Signal, len(signals))
		signal.Notify(pending, signals...)
	}
	holders++
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(unhold)
	}
}

func unhold() {
	mu.Lock()
	holders--
	if holders > 0 {
		mu.Unlock()
		return
	}
	ch := pending
	pending = nil
	signal.Stop(ch)
	mu.Unlock()

	for {
		select {
		case sig := <-ch:
			log.Tracef("sigguard: delivering deferred %s", sig)
			raise(sig)
		default:
			return
		}
	}
}

// Held reports how many holds are outstanding.
func Held() int {
	mu.Lock()
	defer mu.Unlock()
	return holders
}
