package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var SafeExitInst *SafeExit

func InitSafeExit() {
	SafeExitInst = new(SafeExit)
	go SafeExitInst.ListenSignal()
}

// SafeExit runs registered shutdown hooks on the first signal and exits
// hard on the second.
type SafeExit struct {
	funcs   []func()
	mu      sync.Mutex
	exiting bool
}

// Register adds f to the hooks. Hooks run in reverse registration order.
func (s *SafeExit) Register(f func()) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funcs = append(s.funcs, f)
}

// exit reports whether this is a repeated request.
func (s *SafeExit) exit() bool {
	s.mu.Lock()
	funcs := s.funcs
	repeated := s.exiting
	s.exiting = true
	s.funcs = nil
	s.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
	return repeated
}

func (s *SafeExit) ListenSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	for sig := range sigs {
		fmt.Fprintf(os.Stderr, "received signal %s, stopping, please wait\n", sig)
		if s.exit() {
			os.Exit(1)
		}
	}
}
