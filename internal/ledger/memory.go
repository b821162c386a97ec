package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It backs tests and ledger-less
// deployments, and is safe for concurrent use: appends never read-modify-write
// an existing entry, so interleaved SubmitScore calls cannot conflict.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[Address]PlayerRecord
	entries []Entry

	// Now supplies entry timestamps; overridable in tests.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[Address]PlayerRecord),
		Now:     time.Now,
	}
}

// Register upserts the player record. Always succeeds; a repeat call
// overwrites the username and nothing else.
func (m *MemoryStore) Register(_ context.Context, addr Address, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.players[addr] = PlayerRecord{Address: addr, Username: username}
	return nil
}

// IsRegistered is a pure lookup.
func (m *MemoryStore) IsRegistered(_ context.Context, addr Address) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.players[addr]
	return ok, nil
}

// SubmitScore appends one immutable entry, or fails with ErrNotRegistered
// leaving the log unchanged.
func (m *MemoryStore) SubmitScore(_ context.Context, addr Address, score uint64) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.players[addr]
	if !ok {
		return Entry{}, ErrNotRegistered
	}

	entry := Entry{
		Player:    addr,
		Username:  rec.Username,
		Score:     score,
		Timestamp: m.Now(),
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

// Entries returns a copy of the log in append order.
func (m *MemoryStore) Entries(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
