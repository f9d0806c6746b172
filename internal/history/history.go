// Package history keeps the rolling per-channel conversation log. It is
// memory-resident on purpose: restarts start conversations fresh.
package history

import (
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role      Role
	Text      string
	CreatedAt time.Time
}

const DefaultMaxTurns = 15

// Store holds at most maxTurns turns per conversation; appending past the
// bound evicts the oldest turn.
type Store struct {
	mu       sync.Mutex
	maxTurns int
	turns    map[string][]Turn
}

func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		maxTurns: maxTurns,
		turns:    make(map[string][]Turn),
	}
}

func (s *Store) Append(conversationID string, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := append(s.turns[conversationID], turn)
	if len(cur) > s.maxTurns {
		cur = cur[len(cur)-s.maxTurns:]
	}
	s.turns[conversationID] = cur
}

// Get returns the ordered turns for a conversation. Unknown ids yield an
// empty slice. The returned slice is a copy; callers may not mutate store
// state through it.
func (s *Store) Get(conversationID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Turn(nil), s.turns[conversationID]...)
}
