package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the ledger in SQLite. The players table is an upsert
// registry; the entries table is strictly append-only - there is no UPDATE
// or DELETE path for it anywhere in the code.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	address   TEXT PRIMARY KEY,
	username  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	address   TEXT NOT NULL,
	username  TEXT NOT NULL,
	score     INTEGER NOT NULL,
	timestamp INTEGER NOT NULL
);
`

// OpenSQLite opens (creating if needed) a SQLite-backed ledger at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Register upserts the player record.
func (s *SQLiteStore) Register(ctx context.Context, addr Address, username string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (address, username) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET username = excluded.username`,
		string(addr), username)
	if err != nil {
		return fmt.Errorf("register player: %w", err)
	}
	return nil
}

// IsRegistered is a pure lookup.
func (s *SQLiteStore) IsRegistered(ctx context.Context, addr Address) (bool, error) {
	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM players WHERE address = ?`, string(addr)).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup player: %w", err)
	}
	return true, nil
}

// SubmitScore appends one entry, stamped with the current time. Unregistered
// addresses are rejected before anything is written.
func (s *SQLiteStore) SubmitScore(ctx context.Context, addr Address, score uint64) (Entry, error) {
	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM players WHERE address = ?`, string(addr)).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotRegistered
	}
	if err != nil {
		return Entry{}, fmt.Errorf("lookup player: %w", err)
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (address, username, score, timestamp)
		VALUES (?, ?, ?, ?)`,
		string(addr), username, int64(score), now.Unix())
	if err != nil {
		return Entry{}, fmt.Errorf("append entry: %w", err)
	}

	return Entry{Player: addr, Username: username, Score: score, Timestamp: now}, nil
}

// Entries returns the full log in append (insertion id) order.
func (s *SQLiteStore) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, username, score, timestamp FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			addr     string
			username string
			score    int64
			ts       int64
		)
		if err := rows.Scan(&addr, &username, &score, &ts); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, Entry{
			Player:    Address(addr),
			Username:  username,
			Score:     uint64(score),
			Timestamp: time.Unix(ts, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
