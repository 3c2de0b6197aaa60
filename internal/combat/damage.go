package combat

import (
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
)

const (
	// BlockReduction is the share of a blocked hit that still lands.
	BlockReduction = 0.5
	// SecondWindRestore is the fraction of max health restored on revive.
	SecondWindRestore = 0.5
	// PhasingCap bounds the contact damage reduction from phasing.
	PhasingCap = 0.9
	// ExecuteCap bounds the execute threshold.
	ExecuteCap = 0.5
)

// ArmorFactor converts armor into a damage multiplier: 100/(100+armor).
func ArmorFactor(armor float64) float64 {
	if armor <= 0 {
		return 1
	}
	return 100 / (100 + armor)
}

// EnemyDamage scales a projectile's damage against target using the player's
// conditional bonuses.
func EnemyDamage(base float64, player *world.Player, target *world.Enemy) float64 {
	damage := base
	if player == nil {
		return damage
	}
	if amount := player.Effects.Amount(world.EffectBerserker); amount > 0 {
		missing := 1 - world.Clamp(player.HealthRatio(), 0, 1)
		damage *= 1 + amount*missing
	}
	if amount := player.Effects.Amount(world.EffectBossSlayer); amount > 0 && target != nil {
		if target.Archetype == world.ArchetypeBoss || target.Archetype == world.ArchetypeElite {
			damage *= 1 + amount
		}
	}
	return damage
}

// ShouldExecute reports whether a surviving target falls under the player's
// execute threshold.
func ShouldExecute(player *world.Player, target *world.Enemy) bool {
	if player == nil || !target.Alive() || target.Archetype == world.ArchetypeBoss {
		return false
	}
	threshold := world.Clamp(player.Effects.Amount(world.EffectExecute), 0, ExecuteCap)
	return threshold > 0 && target.HealthRatio() < threshold
}

// PlayerHit is the outcome of resolving a discrete hit against the player.
type PlayerHit struct {
	Raw      float64
	Damage   float64
	Absorbed float64
	Dodged   bool
	Blocked  bool
	Revived  bool
	Fatal    bool
}

// ResolvePlayerHit rolls dodge then block, applies armor (physical) or magic
// resistance (magic), drains the energy shield and finally subtracts health.
func ResolvePlayerHit(player *world.Player, src rng.Source, amount float64, magic bool) PlayerHit {
	hit := PlayerHit{Raw: amount}
	if player == nil || amount <= 0 || player.Health <= 0 {
		return hit
	}
	if rng.Chance(src, player.DodgeChance) {
		hit.Dodged = true
		return hit
	}
	if rng.Chance(src, player.BlockChance) {
		hit.Blocked = true
		amount *= BlockReduction
	}
	if magic {
		amount *= 1 - world.Clamp(player.MagicResistance, 0, 0.9)
	} else {
		amount *= ArmorFactor(player.Armor)
	}
	hit.Absorbed, amount = absorbWithShield(player, amount)
	hit.Damage = amount
	hit.Revived, hit.Fatal = applyPlayerDamage(player, amount)
	return hit
}

// ContactDamage applies continuous touch damage from enemy for deltaMs and
// returns the hit. Thorns damage is reflected onto the enemy.
func ContactDamage(player *world.Player, enemy *world.Enemy, deltaMs float64) PlayerHit {
	hit := PlayerHit{}
	if player == nil || !enemy.Alive() || deltaMs <= 0 || player.Health <= 0 {
		return hit
	}
	amount := enemy.Damage * deltaMs / 1000
	hit.Raw = amount
	amount *= ArmorFactor(player.Armor)
	if phasing := player.Effects.Amount(world.EffectPhasing); phasing > 0 {
		amount *= 1 - world.Clamp(phasing, 0, PhasingCap)
	}
	hit.Absorbed, amount = absorbWithShield(player, amount)
	hit.Damage = amount
	if thorns := player.Effects.Amount(world.EffectThorns); thorns > 0 {
		enemy.TakeDamage(hit.Raw * thorns)
	}
	hit.Revived, hit.Fatal = applyPlayerDamage(player, amount)
	return hit
}

// absorbWithShield spends energy to soak a share of amount. The share is the
// energy_shield multiplier, capped at one.
func absorbWithShield(player *world.Player, amount float64) (absorbed, remaining float64) {
	share := world.Clamp(player.Effects.Amount(world.EffectEnergyShield), 0, 1)
	if share <= 0 || player.Energy <= 0 {
		return 0, amount
	}
	absorbed = amount * share
	if absorbed > player.Energy {
		absorbed = player.Energy
	}
	player.Energy -= absorbed
	return absorbed, amount - absorbed
}

// applyPlayerDamage subtracts amount and consumes a second wind charge when
// the hit would be fatal.
func applyPlayerDamage(player *world.Player, amount float64) (revived, fatal bool) {
	player.Health -= amount
	if player.Health > 0 {
		return false, false
	}
	if player.Effects.Count(world.EffectSecondWind) > 0 {
		player.Effects.Stack(world.EffectSecondWind, -1)
		player.Health = player.MaxHealth * SecondWindRestore
		return true, false
	}
	player.Health = 0
	return false, true
}

// Lifesteal heals the player for a share of damage dealt and returns the
// amount actually restored.
func Lifesteal(player *world.Player, dealt float64) float64 {
	if player == nil || player.Lifesteal <= 0 || dealt <= 0 {
		return 0
	}
	return player.Heal(dealt * player.Lifesteal)
}
