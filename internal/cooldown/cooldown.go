// Package cooldown rate-limits users: one accepted request per window.
package cooldown

import (
	"sync"
	"time"
)

const DefaultWindow = 5 * time.Second

type Gate struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func NewGate(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Check reports whether the user is outside the cooldown window, and if not
// how long remains. A user exactly at the window boundary is allowed.
func (g *Gate) Check(userID string) (allowed bool, remaining time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[userID]
	if !ok {
		return true, 0
	}
	elapsed := g.now().Sub(last)
	if elapsed < g.window {
		return false, g.window - elapsed
	}
	return true, 0
}

// Record stamps the user's last accepted request. Callers invoke it only
// after admission; rejected requests do not refresh the window.
func (g *Gate) Record(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last[userID] = g.now()
}
