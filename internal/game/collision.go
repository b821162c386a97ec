package game

import "github.com/invaders/server/config"

// overlaps reports axis-aligned bounding-box overlap between two integer
// rectangles. Touching edges do not count as overlap.
func overlaps(ax, ay, aw, ah, bx, by, bw, bh int) bool {
	return ax < bx+bw && bx < ax+aw && ay < by+bh && by < ay+ah
}

// advanceBullets moves every active bullet one tick along its owner's fixed
// direction and deactivates bullets that leave the field vertically. Leaving
// the field has no other side effect.
func advanceBullets(s *State) {
	for i := range s.Bullets {
		b := &s.Bullets[i]
		if !b.Active {
			continue
		}
		switch b.Owner {
		case OwnerPlayer:
			b.Y -= config.PlayerBulletSpeed
			if b.Y+config.BulletHeight <= 0 {
				b.Active = false
			}
		case OwnerEnemy:
			b.Y += config.EnemyBulletSpeed
			if b.Y >= config.FieldHeight {
				b.Active = false
			}
		}
	}
}

// resolveCollisions applies all hit effects for the current tick.
//
// Player bullets are tested against the invader grid in fixed list and grid
// order; the first overlap deactivates both bullet and invader and credits
// the invader's scoring tier. A bullet is deactivated on its first hit, so
// it can never score twice even if it overlaps several invaders this tick.
//
// Enemy bullets are tested against the ship: a hit deactivates the bullet
// and costs one life; at zero lives the game ends as a loss.
func resolveCollisions(s *State) {
	for i := range s.Bullets {
		b := &s.Bullets[i]
		if !b.Active || b.Owner != OwnerPlayer {
			continue
		}
		for j := range s.Invaders {
			inv := &s.Invaders[j]
			if !inv.Active {
				continue
			}
			if overlaps(b.X, b.Y, config.BulletWidth, config.BulletHeight,
				inv.X, inv.Y, config.InvaderWidth, config.InvaderHeight) {
				b.Active = false
				inv.Active = false
				s.Score += inv.Kind.Points()
				break
			}
		}
	}

	for i := range s.Bullets {
		b := &s.Bullets[i]
		if !b.Active || b.Owner != OwnerEnemy {
			continue
		}
		if overlaps(b.X, b.Y, config.BulletWidth, config.BulletHeight,
			s.Ship.X, s.Ship.Y, config.ShipWidth, config.ShipHeight) {
			b.Active = false
			if s.Lives > 0 {
				s.Lives--
			}
			if s.Lives == 0 {
				s.Over = true
				s.Won = false
			}
		}
	}
}
