package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

// storeUnderTest lets the same suite run against every Store implementation.
func storeUnderTest(t *testing.T, name string) Store {
	t.Helper()
	switch name {
	case "memory":
		m := NewMemoryStore()
		base := time.Unix(1700000000, 0)
		n := 0
		m.Now = func() time.Time {
			n++
			return base.Add(time.Duration(n) * time.Second)
		}
		return m
	case "sqlite":
		s, err := OpenSQLite(":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return s
	default:
		t.Fatalf("unknown store %q", name)
		return nil
	}
}

func TestStores(t *testing.T) {
	for _, impl := range []string{"memory", "sqlite"} {
		t.Run(impl, func(t *testing.T) {
			t.Run("AppendOnlyCumulative", func(t *testing.T) {
				testAppendOnlyCumulative(t, storeUnderTest(t, impl))
			})
			t.Run("RejectUnregistered", func(t *testing.T) {
				testRejectUnregistered(t, storeUnderTest(t, impl))
			})
			t.Run("ReRegisterOverwritesUsernameOnly", func(t *testing.T) {
				testReRegister(t, storeUnderTest(t, impl))
			})
		})
	}
}

func testAppendOnlyCumulative(t *testing.T, s Store) {
	defer s.Close()
	ctx := context.Background()

	if err := s.Register(ctx, "addr-a", "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := s.SubmitScore(ctx, "addr-a", 100); err != nil {
		t.Fatalf("submit 100: %v", err)
	}
	if _, err := s.SubmitScore(ctx, "addr-a", 50); err != nil {
		t.Fatalf("submit 50: %v", err)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger length = %d, want 2 (no deduplication)", len(entries))
	}
	if entries[0].Score != 100 || entries[1].Score != 50 {
		t.Fatalf("entries out of append order: %d, %d", entries[0].Score, entries[1].Score)
	}

	totals := SumByUsername(entries)
	if len(totals) != 1 {
		t.Fatalf("aggregated rows = %d, want 1", len(totals))
	}
	if totals[0].Score != 150 {
		t.Fatalf("aggregate for alice = %d, want 150", totals[0].Score)
	}
}

func testRejectUnregistered(t *testing.T, s Store) {
	defer s.Close()
	ctx := context.Background()

	ok, err := s.IsRegistered(ctx, "ghost")
	if err != nil {
		t.Fatalf("is_registered: %v", err)
	}
	if ok {
		t.Fatal("unknown address reported registered")
	}

	if _, err := s.SubmitScore(ctx, "ghost", 999); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("submit for unregistered = %v, want ErrNotRegistered", err)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected submit mutated the ledger, length %d", len(entries))
	}
}

func testReRegister(t *testing.T, s Store) {
	defer s.Close()
	ctx := context.Background()

	if err := s.Register(ctx, "addr-a", "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.SubmitScore(ctx, "addr-a", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Re-registration changes the username for future entries but never
	// rewrites past ones.
	if err := s.Register(ctx, "addr-a", "alicia"); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if _, err := s.SubmitScore(ctx, "addr-a", 20); err != nil {
		t.Fatalf("submit after rename: %v", err)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ledger length = %d, want 2", len(entries))
	}
	if entries[0].Username != "alice" {
		t.Fatalf("past entry username rewritten to %q", entries[0].Username)
	}
	if entries[1].Username != "alicia" {
		t.Fatalf("new entry username = %q, want alicia", entries[1].Username)
	}
}

func TestSumByUsernameOrdering(t *testing.T) {
	entries := []Entry{
		{Username: "bob", Score: 40},
		{Username: "alice", Score: 30},
		{Username: "bob", Score: 10},
		{Username: "carol", Score: 50},
	}

	totals := SumByUsername(entries)

	want := []Total{
		{Username: "bob", Score: 50, Entries: 2},
		{Username: "carol", Score: 50, Entries: 1},
		{Username: "alice", Score: 30, Entries: 1},
	}
	if len(totals) != len(want) {
		t.Fatalf("rows = %d, want %d", len(totals), len(want))
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, totals[i], want[i])
		}
	}
}
