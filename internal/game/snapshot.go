package game

import (
	"encoding/binary"
	"errors"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/invaders/server/config"
)

// Snapshot is a flat, primitive-typed copy of the complete game state. It is
// what the feed pushes to mirror clients and what replay verification hashes;
// primitives only, so the encoding stays stable.
type Snapshot struct {
	Tick      uint64            `json:"tick"`
	ShipX     int               `json:"shipX"`
	ShipY     int               `json:"shipY"`
	Score     uint64            `json:"score"`
	Lives     uint32            `json:"lives"`
	Direction int               `json:"direction"`
	Over      bool              `json:"over"`
	Won       bool              `json:"won"`
	Invaders  []InvaderSnapshot `json:"invaders"`
	Bullets   []BulletSnapshot  `json:"bullets"`
}

// InvaderSnapshot is one grid cell, in fixed grid order.
type InvaderSnapshot struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
}

// BulletSnapshot is one in-flight bullet, in list order.
type BulletSnapshot struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Owner  string `json:"owner"`
	Active bool   `json:"active"`
}

var errBadSnapshot = errors.New("game: malformed snapshot")

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	s := &g.s

	invaders := make([]InvaderSnapshot, config.InvaderCount)
	for i := range s.Invaders {
		inv := &s.Invaders[i]
		invaders[i] = InvaderSnapshot{X: inv.X, Y: inv.Y, Kind: inv.Kind.String(), Active: inv.Active}
	}

	bullets := make([]BulletSnapshot, len(s.Bullets))
	for i := range s.Bullets {
		b := &s.Bullets[i]
		owner := "player"
		if b.Owner == OwnerEnemy {
			owner = "enemy"
		}
		bullets[i] = BulletSnapshot{X: b.X, Y: b.Y, Owner: owner, Active: b.Active}
	}

	return Snapshot{
		Tick:      s.Tick,
		ShipX:     s.Ship.X,
		ShipY:     s.Ship.Y,
		Score:     s.Score,
		Lives:     s.Lives,
		Direction: s.Direction,
		Over:      s.Over,
		Won:       s.Won,
		Invaders:  invaders,
		Bullets:   bullets,
	}
}

// Restore replaces the game state with the snapshot's. Used by replay
// verification to re-run a recorded sequence from a known starting point.
func (g *Game) Restore(snap Snapshot) error {
	if len(snap.Invaders) != config.InvaderCount {
		return fmt.Errorf("%w: %d invaders, want %d", errBadSnapshot, len(snap.Invaders), config.InvaderCount)
	}
	if len(snap.Bullets) > config.MaxBullets {
		return fmt.Errorf("%w: %d bullets exceeds cap %d", errBadSnapshot, len(snap.Bullets), config.MaxBullets)
	}
	if snap.Direction != 1 && snap.Direction != -1 {
		return fmt.Errorf("%w: direction %d", errBadSnapshot, snap.Direction)
	}

	s := &g.s
	s.Tick = snap.Tick
	s.Ship = Ship{X: snap.ShipX, Y: snap.ShipY}
	s.Score = snap.Score
	s.Lives = snap.Lives
	s.Direction = snap.Direction
	s.Over = snap.Over
	s.Won = snap.Won

	for i, inv := range snap.Invaders {
		kind, err := kindFromString(inv.Kind)
		if err != nil {
			return err
		}
		s.Invaders[i] = Invader{X: inv.X, Y: inv.Y, Kind: kind, Active: inv.Active}
	}

	s.Bullets = s.Bullets[:0]
	for _, b := range snap.Bullets {
		owner := OwnerPlayer
		if b.Owner == "enemy" {
			owner = OwnerEnemy
		}
		s.Bullets = append(s.Bullets, Bullet{X: b.X, Y: b.Y, Owner: owner, Active: b.Active})
	}

	return nil
}

func kindFromString(name string) (Kind, error) {
	switch name {
	case "squid":
		return KindSquid, nil
	case "crab":
		return KindCrab, nil
	case "octopus":
		return KindOctopus, nil
	default:
		return 0, fmt.Errorf("%w: invader kind %q", errBadSnapshot, name)
	}
}

// Digest returns a BLAKE3 hash of the snapshot over a fixed little-endian
// encoding. Two runs of the same call sequence from the same state must
// produce equal digests; the determinism tests lean on this.
func (snap Snapshot) Digest() [32]byte {
	buf := make([]byte, 0, 64+len(snap.Invaders)*10+len(snap.Bullets)*10)

	buf = binary.LittleEndian.AppendUint64(buf, snap.Tick)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(snap.ShipX)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(snap.ShipY)))
	buf = binary.LittleEndian.AppendUint64(buf, snap.Score)
	buf = binary.LittleEndian.AppendUint32(buf, snap.Lives)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(snap.Direction)))
	buf = append(buf, boolByte(snap.Over), boolByte(snap.Won))

	for i := range snap.Invaders {
		inv := &snap.Invaders[i]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(inv.X)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(inv.Y)))
		buf = append(buf, inv.Kind...)
		buf = append(buf, boolByte(inv.Active))
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(snap.Bullets)))
	for i := range snap.Bullets {
		b := &snap.Bullets[i]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(b.X)))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(b.Y)))
		buf = append(buf, b.Owner...)
		buf = append(buf, boolByte(b.Active))
	}

	return blake3.Sum256(buf)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
