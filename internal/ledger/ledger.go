// Package ledger implements the append-only leaderboard ledger: a player
// registry plus an ordered log of score entries that is never rewritten,
// deduplicated or compacted.
//
// Ranking is deliberately cumulative: a player's standing is the SUM of all
// their entries, rewarding total play volume rather than a single best run.
// Stores only append and read; aggregation belongs to callers (SumByUsername
// is provided for them).
package ledger

import (
	"context"
	"errors"
	"sort"
	"time"
)

// Address identifies a player. It is opaque to the ledger: supplied by the
// hosting environment, compared for equality, used only as a registry key.
type Address string

// PlayerRecord is one row of the player registry. Re-registration overwrites
// the username; it never touches prior ledger entries.
type PlayerRecord struct {
	Address  Address `json:"address"`
	Username string  `json:"username"`
}

// Entry is one immutable score submission. Entries are only ever appended.
type Entry struct {
	Player    Address   `json:"player"`
	Username  string    `json:"username"`
	Score     uint64    `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrNotRegistered is returned by SubmitScore for an unknown address. The
// ledger is left untouched.
var ErrNotRegistered = errors.New("ledger: address not registered")

// Store is the ledger persistence interface. Register is an idempotent
// upsert; SubmitScore appends exactly one entry or fails without effect;
// Entries returns the full log in append order.
type Store interface {
	Register(ctx context.Context, addr Address, username string) error
	IsRegistered(ctx context.Context, addr Address) (bool, error)
	SubmitScore(ctx context.Context, addr Address, score uint64) (Entry, error)
	Entries(ctx context.Context) ([]Entry, error)
	Close() error
}

// Total is one aggregated leaderboard row.
type Total struct {
	Username string `json:"username"`
	Score    uint64 `json:"score"`
	Entries  int    `json:"entries"`
}

// SumByUsername aggregates entries into per-username totals, highest first.
// Ties break alphabetically so the ordering is stable.
func SumByUsername(entries []Entry) []Total {
	byName := make(map[string]*Total)
	order := make([]string, 0)
	for _, e := range entries {
		t, ok := byName[e.Username]
		if !ok {
			t = &Total{Username: e.Username}
			byName[e.Username] = t
			order = append(order, e.Username)
		}
		t.Score += e.Score
		t.Entries++
	}

	totals := make([]Total, 0, len(order))
	for _, name := range order {
		totals = append(totals, *byName[name])
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Score != totals[j].Score {
			return totals[i].Score > totals[j].Score
		}
		return totals[i].Username < totals[j].Username
	})
	return totals
}
