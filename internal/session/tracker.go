// Package session tracks conversation turn numbers.
//
// The counter deliberately lives outside any web session mechanism: two
// concurrent requests for the same conversation must never observe the same
// turn number, so the tracker owns the counters behind a single mutex.
package session

import "sync"

type conversationKey struct {
	sessionID      string
	conversationID string
}

// Tracker issues monotonically increasing turn numbers scoped to a
// (sessionID, conversationID) pair. The zero value is not usable; call New.
type Tracker struct {
	mu    sync.Mutex
	turns map[conversationKey]int
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{turns: make(map[conversationKey]int)}
}

// NextTurn advances and returns the turn counter for a conversation.
// The first call for a conversation returns 1.
func (t *Tracker) NextTurn(sessionID, conversationID string) int {
	key := conversationKey{sessionID, conversationID}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns[key]++
	return t.turns[key]
}

// CurrentTurn returns the last issued turn number without advancing the
// counter. An AI reply reuses the turn of the user message it answers, so a
// conversation with no turns yet reports 1.
func (t *Tracker) CurrentTurn(sessionID, conversationID string) int {
	key := conversationKey{sessionID, conversationID}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n := t.turns[key]; n > 0 {
		return n
	}
	return 1
}

// Forget discards all counters for a session. Called when the session ends.
func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key := range t.turns {
		if key.sessionID == sessionID {
			delete(t.turns, key)
		}
	}
}
