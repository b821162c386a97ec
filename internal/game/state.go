// Package game implements the authoritative space-invaders simulation.
//
// The package is a pure state machine: no I/O, no clocks, no goroutines and
// no floating point. Every entry point is a single atomic transition over
// State, and identical call sequences yield bit-identical state on every
// host. Iteration bounds (the 55-cell invader grid, the bounded bullet list)
// are fixed constants, so every call has known, bounded cost.
package game

import "github.com/invaders/server/config"

// Kind identifies an invader's type and scoring tier.
type Kind uint8

const (
	KindSquid Kind = iota
	KindCrab
	KindOctopus
)

// Points returns the score awarded for destroying an invader of this kind.
func (k Kind) Points() uint64 {
	switch k {
	case KindSquid:
		return config.ScoreSquid
	case KindCrab:
		return config.ScoreCrab
	default:
		return config.ScoreOctopus
	}
}

// String returns the kind name for logs and feeds.
func (k Kind) String() string {
	switch k {
	case KindSquid:
		return "squid"
	case KindCrab:
		return "crab"
	case KindOctopus:
		return "octopus"
	default:
		return "unknown"
	}
}

// Owner identifies which side fired a bullet and therefore its travel
// direction: player bullets move up, enemy bullets move down.
type Owner uint8

const (
	OwnerPlayer Owner = iota
	OwnerEnemy
)

// Ship is the player's cannon. Y is fixed at config.ShipY for the lifetime
// of a game; only X moves.
type Ship struct {
	X int
	Y int
}

// Invader is one cell of the grid. Cells are deactivated on hit, never
// removed, so the grid stays exactly InvaderRows x InvaderCols and iterating
// it costs the same on every tick.
type Invader struct {
	X      int
	Y      int
	Kind   Kind
	Active bool
}

// Bullet is a projectile in flight. Inactive bullets are compacted out of
// the list at the end of each tick.
type Bullet struct {
	X      int
	Y      int
	Owner  Owner
	Active bool
}

// State is the complete persisted game state. It owns the ship, the invader
// grid and the bullet list exclusively; nothing outside the package mutates
// it directly.
type State struct {
	Ship      Ship
	Invaders  [config.InvaderCount]Invader
	Bullets   []Bullet
	Score     uint64
	Lives     uint32
	Tick      uint64
	Direction int // -1 or +1, shared by the whole grid
	Over      bool
	Won       bool
}

// kindForRow maps a grid row to its invader kind: the top row is squids,
// the next two are crabs, the bottom two octopuses.
func kindForRow(row int) Kind {
	switch {
	case row == 0:
		return KindSquid
	case row <= 2:
		return KindCrab
	default:
		return KindOctopus
	}
}

// reset restores the canonical initial state: full grid, centered ship,
// empty bullet list, score 0, lives 3, tick 0, grid sweeping right.
func (s *State) reset() {
	s.Ship = Ship{
		X: (config.FieldWidth - config.ShipWidth) / 2,
		Y: config.ShipY,
	}

	for row := 0; row < config.InvaderRows; row++ {
		for col := 0; col < config.InvaderCols; col++ {
			s.Invaders[row*config.InvaderCols+col] = Invader{
				X:      config.InvaderOriginX + col*config.InvaderSpacingX,
				Y:      config.InvaderOriginY + row*config.InvaderSpacingY,
				Kind:   kindForRow(row),
				Active: true,
			}
		}
	}

	if s.Bullets == nil {
		s.Bullets = make([]Bullet, 0, config.MaxBullets)
	} else {
		s.Bullets = s.Bullets[:0]
	}

	s.Score = 0
	s.Lives = config.StartingLives
	s.Tick = 0
	s.Direction = 1
	s.Over = false
	s.Won = false
}

// activeInvaders counts the invaders still alive.
func (s *State) activeInvaders() int {
	n := 0
	for i := range s.Invaders {
		if s.Invaders[i].Active {
			n++
		}
	}
	return n
}

// activeBullets counts in-flight bullets for the given owner.
func (s *State) activeBullets(owner Owner) int {
	n := 0
	for i := range s.Bullets {
		if s.Bullets[i].Active && s.Bullets[i].Owner == owner {
			n++
		}
	}
	return n
}

// compactBullets removes inactive bullets in place, keeping order. Runs at
// the end of every tick so the list never accumulates dead entries.
func (s *State) compactBullets() {
	live := s.Bullets[:0]
	for i := range s.Bullets {
		if s.Bullets[i].Active {
			live = append(live, s.Bullets[i])
		}
	}
	s.Bullets = live
}
