package game

import (
	"testing"

	"github.com/invaders/server/config"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g := New()
	for i := 0; i < 60; i++ {
		g.MoveShip(1)
		if i%3 == 0 {
			g.Shoot()
		}
		g.Update()
	}

	snap := g.Snapshot()

	restored := New()
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.Snapshot().Digest() != snap.Digest() {
		t.Fatal("restored state does not match the snapshot")
	}

	// Both games must now evolve identically.
	for i := 0; i < 50; i++ {
		g.Update()
		restored.Update()
	}
	if g.Snapshot().Digest() != restored.Snapshot().Digest() {
		t.Fatal("original and restored games diverged")
	}
}

func TestRestoreRejectsMalformedSnapshots(t *testing.T) {
	g := New()
	good := g.Snapshot()

	short := good
	short.Invaders = good.Invaders[:10]
	if err := g.Restore(short); err == nil {
		t.Fatal("restore accepted a truncated invader grid")
	}

	badDir := good
	badDir.Direction = 0
	if err := g.Restore(badDir); err == nil {
		t.Fatal("restore accepted direction 0")
	}

	overfull := good
	overfull.Bullets = make([]BulletSnapshot, config.MaxBullets+1)
	for i := range overfull.Bullets {
		overfull.Bullets[i] = BulletSnapshot{Owner: "player"}
	}
	if err := g.Restore(overfull); err == nil {
		t.Fatal("restore accepted a bullet list over the cap")
	}
}

func TestDigestChangesWithState(t *testing.T) {
	g := New()
	before := g.Snapshot().Digest()

	g.MoveShip(1)
	after := g.Snapshot().Digest()

	if before == after {
		t.Fatal("digest unchanged after a state transition")
	}
}
