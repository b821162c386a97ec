// Package arcade manages game sessions: each session owns one authoritative
// game instance and serializes every entry point into a single atomic state
// transition, the way the execution model requires.
package arcade

import (
	"sync"
	"time"

	"github.com/invaders/server/internal/game"
)

// Session binds one game to a session key.
//
// Thread safety: all entry points take the session mutex, so exactly one
// transition runs at a time and no caller ever observes a partial effect.
// Whichever caller invokes Tick advances the state every subscriber of this
// session is playing against.
type Session struct {
	mu sync.Mutex

	ID   string
	game *game.Game

	subscribers map[chan game.Snapshot]struct{}
	lastActive  time.Time
}

func newSession(id string) *Session {
	return &Session{
		ID:          id,
		game:        game.New(),
		subscribers: make(map[chan game.Snapshot]struct{}),
		lastActive:  time.Now(),
	}
}

// Init resets the session's game to the canonical initial state. The
// leaderboard ledger is independent of sessions and is never touched.
func (s *Session) Init() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.game.Init()
	return s.committed()
}

// MoveShip applies one movement input and returns the ship's new X.
func (s *Session) MoveShip(direction int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	x := s.game.MoveShip(direction)
	s.committed()
	return x
}

// Shoot fires a player bullet, reporting whether one was spawned.
func (s *Session) Shoot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fired := s.game.Shoot()
	s.committed()
	return fired
}

// Tick advances the simulation one tick, reporting whether the game is
// still active.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.game.Update()
	s.committed()
	return active
}

// State returns a snapshot of the current game state.
func (s *Session) State() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	return s.game.Snapshot()
}

// Score returns the session's current score.
func (s *Session) Score() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Score()
}

// Lives returns the remaining lives.
func (s *Session) Lives() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Lives()
}

// ShipX returns the ship's position.
func (s *Session) ShipX() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ShipX()
}

// ActiveInvaders returns the number of invaders still alive.
func (s *Session) ActiveInvaders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ActiveInvaders()
}

// Over reports whether the session's game is in a terminal state.
func (s *Session) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Over()
}

// Won reports whether the terminal state was a win.
func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Won()
}

// Subscribe registers a snapshot feed for this session. The returned channel
// receives the state after every committed transition; the cancel function
// must be called when the consumer goes away.
func (s *Session) Subscribe() (<-chan game.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan game.Snapshot, 8)
	s.subscribers[ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of attached feeds.
func (s *Session) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// committed records activity and fans the post-transition snapshot out to
// subscribers. Sends never block: a slow consumer just misses intermediate
// frames and catches up on the next one. Caller must hold the lock.
func (s *Session) committed() game.Snapshot {
	s.lastActive = time.Now()
	snap := s.game.Snapshot()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

// idleSince reports the time of the session's last call.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
