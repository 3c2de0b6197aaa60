package combat

import (
	"layer-survivors/server/internal/world"
)

// NearestEnemy returns the living enemy closest to origin. On exact ties the
// earlier enemy in the slice wins.
func NearestEnemy(origin world.Vec2, enemies []*world.Enemy) *world.Enemy {
	var best *world.Enemy
	bestDist := 0.0
	for _, enemy := range enemies {
		if !enemy.Alive() {
			continue
		}
		dist := origin.DistanceTo(enemy.Position)
		if best == nil || dist < bestDist {
			best = enemy
			bestDist = dist
		}
	}
	return best
}

// EnemiesWithin returns living enemies within radius of origin in slice order,
// skipping exclude.
func EnemiesWithin(origin world.Vec2, radius float64, enemies []*world.Enemy, exclude *world.Enemy) []*world.Enemy {
	var out []*world.Enemy
	for _, enemy := range enemies {
		if enemy == exclude || !enemy.Alive() {
			continue
		}
		if origin.DistanceTo(enemy.Position) <= radius {
			out = append(out, enemy)
		}
	}
	return out
}

// RemoveDead compacts enemies in place, dropping every enemy at zero health.
func RemoveDead(enemies []*world.Enemy) []*world.Enemy {
	kept := enemies[:0]
	for _, enemy := range enemies {
		if enemy.Alive() {
			kept = append(kept, enemy)
		}
	}
	for i := len(kept); i < len(enemies); i++ {
		enemies[i] = nil
	}
	return kept
}
