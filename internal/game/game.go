package game

import "github.com/invaders/server/config"

// Game wraps State behind the authoritative entry points. It is NOT safe for
// concurrent use; the session layer serializes calls so each entry point
// commits as a single atomic transition.
type Game struct {
	s State
}

// New returns a game in the canonical initial state.
func New() *Game {
	g := &Game{}
	g.Init()
	return g
}

// Init fully resets the game: 55 active invaders, centered ship, empty
// bullet list, score 0, lives 3, tick 0. This is the only transition out of
// the Over state. The leaderboard ledger is a separate store and is never
// touched by a reset.
func (g *Game) Init() {
	g.s.reset()
}

// MoveShip applies one movement input and returns the ship's new X. Input
// outside the field saturates at the boundary; the call is a no-op once the
// game is over.
func (g *Game) MoveShip(direction int) int {
	return moveShip(&g.s, direction)
}

// Shoot fires a player bullet if under the cap. Reports whether a bullet
// was spawned.
func (g *Game) Shoot() bool {
	return shoot(&g.s)
}

// Update advances the simulation one tick and reports whether the game is
// still active. Once over, Update is a no-op returning false.
//
// Per-tick order: bullets advance, collisions resolve, then on their fixed
// cadence the invader grid sweeps and an invader fires, then the win
// condition is evaluated, dead bullets are compacted and the tick counter
// increments.
func (g *Game) Update() bool {
	s := &g.s
	if s.Over {
		return false
	}

	advanceBullets(s)
	resolveCollisions(s)

	if !s.Over {
		if s.Tick%config.InvaderSweepInterval == config.InvaderSweepInterval-1 {
			sweepInvaders(s)
		}
	}
	if !s.Over {
		if s.Tick%config.EnemyFireInterval == config.EnemyFireInterval-1 {
			enemyFire(s)
		}
	}

	if !s.Over && s.activeInvaders() == 0 {
		s.Over = true
		s.Won = true
	}

	s.compactBullets()
	s.Tick++

	return !s.Over
}

// Score returns the current score.
func (g *Game) Score() uint64 { return g.s.Score }

// Lives returns the remaining lives.
func (g *Game) Lives() uint32 { return g.s.Lives }

// ShipX returns the ship's current X position.
func (g *Game) ShipX() int { return g.s.Ship.X }

// ActiveInvaders returns the number of invaders still alive.
func (g *Game) ActiveInvaders() int { return g.s.activeInvaders() }

// Over reports whether the game has reached a terminal state.
func (g *Game) Over() bool { return g.s.Over }

// Won reports whether the terminal state was a win. Meaningful only when
// Over is true.
func (g *Game) Won() bool { return g.s.Won }

// Tick returns the tick counter.
func (g *Game) Tick() uint64 { return g.s.Tick }
