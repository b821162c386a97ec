package arcade

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/invaders/server/config"
)

// Arcade owns all live sessions, keyed by session ID. Session isolation is a
// storage-addressing concern only: the per-tick rules are identical for every
// session, each just owns its own game.
type Arcade struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates an empty arcade.
func New() *Arcade {
	return &Arcade{
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a fresh game. Returns nil when the
// session cap is reached.
func (a *Arcade) Create() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.sessions) >= config.MaxSessions {
		return nil
	}

	s := newSession(uuid.NewString())
	a.sessions[s.ID] = s
	return s
}

// Get returns the session with the given ID, or nil.
func (a *Arcade) Get(id string) *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.sessions[id]
}

// Remove drops a session. Safe to call with unknown IDs.
func (a *Arcade) Remove(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.sessions, id)
}

// CleanupIdle removes sessions with no call for longer than maxIdle and
// returns how many were dropped.
func (a *Arcade) CleanupIdle(maxIdle time.Duration) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, s := range a.sessions {
		if s.idleSince().Before(cutoff) {
			delete(a.sessions, id)
			removed++
		}
	}
	return removed
}

// Stats summarizes the arcade for the stats endpoint.
type Stats struct {
	Sessions    int `json:"sessions"`
	Subscribers int `json:"subscribers"`
}

// GetStats returns current counts.
func (a *Arcade) GetStats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{Sessions: len(a.sessions)}
	for _, s := range a.sessions {
		stats.Subscribers += s.SubscriberCount()
	}
	return stats
}
