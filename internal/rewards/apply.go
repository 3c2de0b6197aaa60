package rewards

import (
	"fmt"
	"math"

	"layer-survivors/server/internal/world"
)

// Apply folds value for key into player. Percentage keys scale the stat by
// (1+value), additive keys add it, integer keys add the rounded value and
// the remaining keys stack into the effect bag. Player invariants are
// restored afterwards.
func Apply(player *world.Player, key world.EffectKey, value float64) error {
	if player == nil {
		return nil
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, key, value)
	}
	if player.Effects == nil {
		player.Effects = world.EffectBag{}
	}
	switch key {
	case world.EffectDamagePct:
		player.Damage *= 1 + value
	case world.EffectAttackSpeedPct:
		player.AttackSpeed *= 1 + value
	case world.EffectMoveSpeedPct:
		player.MoveSpeed *= 1 + value
	case world.EffectCritChance:
		player.CritChance += value
	case world.EffectCritDamage:
		player.CritDamage += value
	case world.EffectProjectileCount:
		player.ProjectileCount += int(math.Round(value))
	case world.EffectPierce:
		player.Pierce += int(math.Round(value))
	case world.EffectLifesteal:
		player.Lifesteal += value
	case world.EffectRegeneration:
		player.Regeneration += value
	case world.EffectMaxHealth:
		player.MaxHealth += value
		if value > 0 {
			player.Health += value
		}
	case world.EffectArmor:
		player.Armor += value
	case world.EffectMagicResist:
		player.MagicResistance += value
	case world.EffectDodge:
		player.DodgeChance += value
	case world.EffectBlock:
		player.BlockChance += value
	case world.EffectMaxEnergy:
		player.MaxEnergy += value
		if value > 0 {
			player.Energy += value
		}
	case world.EffectCCImmunity:
		player.Effects.Stack(key, value)
	case world.EffectChainLightning, world.EffectSecondWind:
		player.Effects.Stack(key, math.Round(value))
	case world.EffectPhasing, world.EffectExecute, world.EffectThorns, world.EffectBerserker,
		world.EffectBossSlayer, world.EffectTimeWarp, world.EffectEnergyShield, world.EffectComboMaster,
		world.EffectPoisonRounds, world.EffectBurningRounds, world.EffectFrostRounds, world.EffectStunRounds:
		player.Effects.Stack(key, value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEffect, key)
	}
	player.ClampInvariants()
	return nil
}

// ApplyDebuff applies debuff with reversed sign. A nil debuff is a no-op.
func ApplyDebuff(player *world.Player, debuff *Debuff) error {
	if debuff == nil {
		return nil
	}
	if debuff.Effect.Kind() != world.KindStat {
		return fmt.Errorf("%w: %q", ErrUnknownDebuff, debuff.Effect)
	}
	return Apply(player, debuff.Effect, -debuff.Value)
}

// ApplyOffer applies an offer and its bundled debuff, then records the id in
// the player's build.
func ApplyOffer(player *world.Player, offer Offer) error {
	if player == nil {
		return nil
	}
	if err := Apply(player, offer.Effect, offer.Value); err != nil {
		return fmt.Errorf("apply %s: %w", offer.ID, err)
	}
	if err := ApplyDebuff(player, offer.Debuff); err != nil {
		return fmt.Errorf("apply %s debuff: %w", offer.ID, err)
	}
	player.Acquired = append(player.Acquired, offer.ID)
	return nil
}

// ApplyPassive applies a passive table entry and records it in the build.
func ApplyPassive(player *world.Player, passive Passive) error {
	if player == nil {
		return nil
	}
	if err := Apply(player, passive.Effect, passive.Value); err != nil {
		return fmt.Errorf("apply passive %s: %w", passive.ID, err)
	}
	player.Acquired = append(player.Acquired, passive.ID)
	return nil
}
