package combat

import (
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
)

const (
	// SpreadRadians is the angle between neighbouring projectiles in a volley.
	SpreadRadians = 0.15

	poisonRoundsDurationMs  = 3000.0
	burningRoundsDurationMs = 2000.0
	frostRoundsDurationMs   = 1500.0
	stunRoundsDurationMs    = 500.0
)

// VolleyConfig describes a single player attack.
type VolleyConfig struct {
	Player *world.Player
	Target world.Vec2
	NowMs  float64
	Source rng.Source
	NextID func() uint64

	Speed      float64
	Size       float64
	LifetimeMs float64
}

// FireVolley spawns ProjectileCount projectiles aimed at Target, fanned
// evenly around the aim direction. Crit is rolled once per projectile.
func FireVolley(cfg VolleyConfig) []*world.Projectile {
	player := cfg.Player
	if player == nil {
		return nil
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = world.DefaultProjectileSpeed
	}
	size := cfg.Size
	if size <= 0 {
		size = world.DefaultProjectileSize
	}
	lifetime := cfg.LifetimeMs
	if lifetime <= 0 {
		lifetime = world.DefaultProjectileLifetime
	}
	aim := world.Direction(player.Position, cfg.Target)
	if aim == (world.Vec2{}) {
		aim = world.Vec2{X: 1}
	}

	count := player.ProjectileCount
	if count < 1 {
		count = 1
	}
	onHit, stunChance := OnHitPayload(player)
	base := player.Damage * comboFactor(player)

	out := make([]*world.Projectile, 0, count)
	for i := 0; i < count; i++ {
		offset := (float64(i) - float64(count-1)/2) * SpreadRadians
		damage := base
		crit := cfg.Source != nil && rng.Chance(cfg.Source, player.CritChance)
		if crit {
			damage *= player.CritDamage
		}
		var id uint64
		if cfg.NextID != nil {
			id = cfg.NextID()
		}
		out = append(out, &world.Projectile{
			ID:          id,
			Position:    player.Position,
			Velocity:    aim.Rotated(offset).Scale(speed),
			Damage:      damage,
			MaxPierce:   player.Pierce,
			Size:        size,
			CreatedAtMs: cfg.NowMs,
			LifetimeMs:  lifetime,
			Crit:        crit,
			OnHit:       append([]world.StatusEffect(nil), onHit...),
			StunChance:  stunChance,
		})
	}
	return out
}

// OnHitPayload derives the status effects and stun chance that the player's
// rounds carry.
func OnHitPayload(player *world.Player) ([]world.StatusEffect, float64) {
	bag := player.Effects
	var out []world.StatusEffect
	if amount := bag.Amount(world.EffectPoisonRounds); amount > 0 {
		out = append(out, world.StatusEffect{Kind: world.StatusPoison, Magnitude: player.Damage * amount, RemainingMs: poisonRoundsDurationMs})
	}
	if amount := bag.Amount(world.EffectBurningRounds); amount > 0 {
		out = append(out, world.StatusEffect{Kind: world.StatusBurn, Magnitude: player.Damage * amount, RemainingMs: burningRoundsDurationMs})
	}
	if amount := bag.Amount(world.EffectFrostRounds); amount > 0 {
		out = append(out, world.StatusEffect{Kind: world.StatusSlow, Magnitude: world.Clamp(amount, 0, 0.9), RemainingMs: frostRoundsDurationMs})
	}
	return out, world.Clamp(bag.Amount(world.EffectStunRounds), 0, 1)
}

func comboFactor(player *world.Player) float64 {
	if player.ComboMultiplier < 1 {
		return 1
	}
	return player.ComboMultiplier
}
