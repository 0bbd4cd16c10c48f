package mocks

import (
	"context"
	"sync"
)

// MockGate implements the cancellation gate interfaces for testing. It
// reports CancelErr from the call numbered CancelAfter onwards (1-based);
// zero never cancels.
type MockGate struct {
	CancelAfter int
	CancelErr   error

	mu    sync.Mutex
	calls int
}

// Check implements generation.Gate and audio.Checker
func (g *MockGate) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.CancelAfter > 0 && g.calls >= g.CancelAfter {
		return g.CancelErr
	}
	return nil
}

// Calls returns how many times Check was called
func (g *MockGate) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
