package game

import "github.com/invaders/server/config"

// shoot spawns a player bullet at the ship's muzzle. At the bullet cap the
// call is a silent no-op: being out of shots is ordinary gameplay, not an
// error. Reports whether a bullet was actually spawned.
func shoot(s *State) bool {
	if s.Over {
		return false
	}
	if s.activeBullets(OwnerPlayer) >= config.PlayerBulletCap {
		return false
	}
	s.Bullets = append(s.Bullets, Bullet{
		X:      s.Ship.X + config.ShipWidth/2 - config.BulletWidth/2,
		Y:      s.Ship.Y - config.BulletHeight,
		Owner:  OwnerPlayer,
		Active: true,
	})
	return true
}

// enemyFire spawns one enemy bullet from a deterministically chosen invader.
//
// The shooter is the (Tick mod activeCount)-th active invader in grid order:
// a pure function of already-committed state, so any replay of the same
// state picks the same shooter. There is no randomness anywhere in the core
// and none can be supplied by a caller.
func enemyFire(s *State) {
	if s.activeBullets(OwnerEnemy) >= config.EnemyBulletCap {
		return
	}
	count := s.activeInvaders()
	if count == 0 {
		return
	}
	target := int(s.Tick % uint64(count))

	seen := 0
	for i := range s.Invaders {
		inv := &s.Invaders[i]
		if !inv.Active {
			continue
		}
		if seen == target {
			s.Bullets = append(s.Bullets, Bullet{
				X:      inv.X + config.InvaderWidth/2 - config.BulletWidth/2,
				Y:      inv.Y + config.InvaderHeight,
				Owner:  OwnerEnemy,
				Active: true,
			})
			return
		}
		seen++
	}
}
