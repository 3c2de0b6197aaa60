package combat

import (
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
)

const (
	// ChainRadius bounds how far a chain lightning arc can jump.
	ChainRadius = 150.0
	// ChainDamageShare is the fraction of the triggering hit each arc deals.
	ChainDamageShare = 0.5
)

// Source tags used in hit callbacks.
const (
	SourceProjectile = "projectile"
	SourceChain      = "chain_lightning"
	SourceExecute    = "execute"
	SourceStatus     = "status"
	SourceThorns     = "thorns"
)

// HitRecord describes damage dealt to a single enemy.
type HitRecord struct {
	Projectile *world.Projectile
	Enemy      *world.Enemy
	Source     string
	Damage     float64
	Fatal      bool
}

// CollisionConfig bundles what projectile resolution needs for a tick.
type CollisionConfig struct {
	Player      *world.Player
	Enemies     []*world.Enemy
	Projectiles []*world.Projectile
	Source      rng.Source

	// OnHit observes every damage application, including chain arcs.
	OnHit func(hit HitRecord)
	// OnStatus observes status effects landing on an enemy.
	OnStatus func(enemy *world.Enemy, effect world.StatusEffect)
}

// CollisionResult reports the survivors and aggregate healing.
type CollisionResult struct {
	Projectiles []*world.Projectile
	Hits        int
	Healed      float64
}

// ResolveProjectiles tests every projectile against every living enemy in
// slice order. A projectile is removed once its pierce counter exceeds
// MaxPierce. Killed enemies stay in the slice at zero health for the caller
// to award and remove.
func ResolveProjectiles(cfg CollisionConfig) CollisionResult {
	result := CollisionResult{}
	survivors := make([]*world.Projectile, 0, len(cfg.Projectiles))

	for _, projectile := range cfg.Projectiles {
		if projectile == nil {
			continue
		}
		spent := false
		for _, enemy := range cfg.Enemies {
			if !enemy.Alive() {
				continue
			}
			if projectile.Position.DistanceTo(enemy.Position) >= projectile.Size+enemy.Size {
				continue
			}
			if !projectile.MarkHit(enemy.ID) {
				continue
			}
			result.Hits++
			dealt := applyProjectileHit(cfg, projectile, enemy)
			result.Healed += Lifesteal(cfg.Player, dealt)

			projectile.Pierce++
			if projectile.Spent() {
				spent = true
				break
			}
		}
		if !spent {
			survivors = append(survivors, projectile)
		}
	}

	result.Projectiles = survivors
	return result
}

func applyProjectileHit(cfg CollisionConfig, projectile *world.Projectile, enemy *world.Enemy) float64 {
	damage := EnemyDamage(projectile.Damage, cfg.Player, enemy)
	dealt := dealDamage(cfg, projectile, enemy, damage, SourceProjectile)

	if enemy.Alive() {
		for _, effect := range projectile.OnHit {
			enemy.Status = world.AddStatus(enemy.Status, effect)
			if cfg.OnStatus != nil {
				cfg.OnStatus(enemy, effect)
			}
		}
		if projectile.StunChance > 0 && rng.Chance(cfg.Source, projectile.StunChance) {
			stun := world.StatusEffect{Kind: world.StatusStun, RemainingMs: stunRoundsDurationMs}
			enemy.Status = world.AddStatus(enemy.Status, stun)
			if cfg.OnStatus != nil {
				cfg.OnStatus(enemy, stun)
			}
		}
		if ShouldExecute(cfg.Player, enemy) {
			dealt += dealDamage(cfg, projectile, enemy, enemy.Health, SourceExecute)
		}
	}

	if cfg.Player != nil {
		if arcs := cfg.Player.Effects.Count(world.EffectChainLightning); arcs > 0 {
			dealt += chainFrom(cfg, projectile, enemy, damage*ChainDamageShare, arcs)
		}
	}
	return dealt
}

// chainFrom arcs to the nearest living enemies around origin, one per charge.
func chainFrom(cfg CollisionConfig, projectile *world.Projectile, origin *world.Enemy, damage float64, arcs int) float64 {
	dealt := 0.0
	visited := map[uint64]bool{origin.ID: true}
	from := origin.Position
	for i := 0; i < arcs; i++ {
		var next *world.Enemy
		bestDist := 0.0
		for _, candidate := range EnemiesWithin(from, ChainRadius, cfg.Enemies, nil) {
			if visited[candidate.ID] {
				continue
			}
			d := from.DistanceTo(candidate.Position)
			if next == nil || d < bestDist {
				next, bestDist = candidate, d
			}
		}
		if next == nil {
			break
		}
		visited[next.ID] = true
		dealt += dealDamage(cfg, projectile, next, damage, SourceChain)
		from = next.Position
	}
	return dealt
}

func dealDamage(cfg CollisionConfig, projectile *world.Projectile, enemy *world.Enemy, amount float64, source string) float64 {
	before := enemy.Health
	fatal := enemy.TakeDamage(amount)
	dealt := before - enemy.Health
	if cfg.OnHit != nil {
		cfg.OnHit(HitRecord{Projectile: projectile, Enemy: enemy, Source: source, Damage: dealt, Fatal: fatal})
	}
	return dealt
}
