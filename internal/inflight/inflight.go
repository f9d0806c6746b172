// Package inflight suppresses duplicate handling of one inbound event.
// Release is deferred by a grace window so redeliveries from the platform's
// at-least-once transport are still rejected shortly after completion.
package inflight

import (
	"sync"
	"time"
)

const DefaultGrace = 8 * time.Second

type Guard struct {
	mu    sync.Mutex
	grace time.Duration
	ids   map[string]struct{}
}

func NewGuard(grace time.Duration) *Guard {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Guard{
		grace: grace,
		ids:   make(map[string]struct{}),
	}
}

// TryAdmit inserts the event id and returns true, or returns false without
// any state change if the id is already being processed.
func (g *Guard) TryAdmit(eventID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.ids[eventID]; ok {
		return false
	}
	g.ids[eventID] = struct{}{}
	return true
}

// Release schedules removal of the event id after the grace window rather
// than dropping it immediately.
func (g *Guard) Release(eventID string) {
	time.AfterFunc(g.grace, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.ids, eventID)
	})
}
