package game

import "github.com/invaders/server/config"

// clamp saturates v into [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// moveShip applies one player movement input. Direction is a signed unit
// (-1, 0, +1); anything larger still saturates at the field boundary, so
// out-of-range input is clamped rather than rejected.
func moveShip(s *State, direction int) int {
	if s.Over {
		return s.Ship.X
	}
	s.Ship.X = clamp(s.Ship.X+direction*config.ShipStep, 0, config.FieldWidth-config.ShipWidth)
	return s.Ship.X
}

// sweepInvaders advances the whole grid one step in the shared direction.
//
// The wall check runs over ALL active invaders before any position is
// committed: if any tentative X would leave the field, no invader moves
// horizontally this sweep - instead the entire grid drops InvaderDropY and
// the shared direction flips exactly once. The flip is atomic for the grid;
// there is no per-invader direction.
func sweepInvaders(s *State) {
	hitWall := false
	for i := range s.Invaders {
		inv := &s.Invaders[i]
		if !inv.Active {
			continue
		}
		nx := inv.X + s.Direction*config.InvaderStepX
		if nx < 0 || nx > config.FieldWidth-config.InvaderWidth {
			hitWall = true
			break
		}
	}

	if hitWall {
		for i := range s.Invaders {
			if s.Invaders[i].Active {
				s.Invaders[i].Y += config.InvaderDropY
			}
		}
		s.Direction = -s.Direction
	} else {
		for i := range s.Invaders {
			if s.Invaders[i].Active {
				s.Invaders[i].X += s.Direction * config.InvaderStepX
			}
		}
	}

	// Invasion loss: any active invader reaching the ship's row ends the
	// game immediately, regardless of remaining lives.
	for i := range s.Invaders {
		inv := &s.Invaders[i]
		if inv.Active && inv.Y+config.InvaderHeight >= s.Ship.Y {
			s.Over = true
			s.Won = false
			return
		}
	}
}
