package sim

import (
	"context"

	"layer-survivors/server/internal/ai"
	"layer-survivors/server/internal/combat"
	"layer-survivors/server/internal/world"
	loggingcombat "layer-survivors/server/logging/combat"
)

const (
	dashDurationMs     = 400.0
	dashSpeedFactor    = 3.0
	slamStunMs         = 400.0
	enrageThreshold    = 0.5
	enrageDamageFactor = 1.5
	enrageSpeedFactor  = 1.3
	summonPackSize     = 3
)

// useAbilities fires every ready ability whose trigger condition holds and
// restarts its cooldown.
func (e *Engine) useAbilities(enemy *world.Enemy, intent ai.Intent, result *StepResult) {
	for i := range enemy.Abilities {
		ability := &enemy.Abilities[i]
		if !ability.Ready() {
			continue
		}
		if e.triggerAbility(enemy, *ability, intent, result) {
			ability.RemainingMs = ability.CooldownMs
		}
		if e.state.GameOver {
			return
		}
	}
}

func (e *Engine) triggerAbility(enemy *world.Enemy, ability world.Ability, intent ai.Intent, result *StepResult) bool {
	player := e.state.Player
	dist := enemy.Position.DistanceTo(player.Position)

	switch ability.ID {
	case world.AbilityRangedShot:
		if dist > ability.Range {
			return false
		}
		e.hitPlayer(enemy, ability, ability.Damage*world.DamageScale(e.state.Layer), result)
		enemy.Mode = world.ModeAttacking
		return true

	case world.AbilityDash:
		if dist > ability.Range || enemy.Dashing() {
			return false
		}
		enemy.StartDash(dashDurationMs)
		enemy.Mode = world.ModeSpecial
		return true

	case world.AbilityHealAlly:
		patient := intent.Target
		if !patient.Alive() || enemy.Position.DistanceTo(patient.Position) > ability.Range {
			return false
		}
		amount := ability.Damage * world.HealthScale(e.state.Layer)
		patient.Health = world.Clamp(patient.Health+amount, 0, patient.MaxHealth)
		enemy.Mode = world.ModeSpecial
		return true

	case world.AbilitySlam:
		if dist > ability.Range {
			return false
		}
		hit := e.hitPlayer(enemy, ability, ability.Damage*world.DamageScale(e.state.Layer), result)
		if !hit.Dodged && player.Health > 0 && !player.Effects.Flag(world.EffectCCImmunity) {
			player.Status = world.AddStatus(player.Status, world.StatusEffect{Kind: world.StatusStun, RemainingMs: slamStunMs})
		}
		enemy.Mode = world.ModeSpecial
		return true

	case world.AbilitySummon:
		if dist > ability.Range {
			return false
		}
		pack := e.spawner.SpawnPack(e.state, enemy.Position, summonPackSize)
		result.Spawned += len(pack)
		enemy.Mode = world.ModeSpecial
		return len(pack) > 0

	case world.AbilityEnrage:
		if enemy.Enraged || enemy.HealthRatio() >= enrageThreshold {
			return false
		}
		enemy.Enraged = true
		enemy.Damage *= enrageDamageFactor
		enemy.MoveSpeed *= enrageSpeedFactor
		enemy.Mode = world.ModeSpecial
		return true
	}
	return false
}

// hitPlayer resolves a discrete ability hit against the player.
func (e *Engine) hitPlayer(enemy *world.Enemy, ability world.Ability, amount float64, result *StepResult) combat.PlayerHit {
	player := e.state.Player
	hit := combat.ResolvePlayerHit(player, e.src, amount, ability.Magic)
	result.PlayerHit += hit.Damage
	loggingcombat.PlayerHit(
		context.Background(),
		e.deps.Publisher,
		e.state.Tick,
		combat.EnemyRef(enemy),
		loggingcombat.PlayerHitPayload{
			Ability:  string(ability.ID),
			Amount:   hit.Damage,
			Health:   player.Health,
			Dodged:   hit.Dodged,
			Blocked:  hit.Blocked,
			Absorbed: hit.Absorbed,
		},
		nil,
	)
	e.afterPlayerHit(hit, result)
	return hit
}
