package world

// EffectKey is the closed vocabulary of reward effects. Stat keys mutate
// Player fields directly; the remaining keys live in the player's EffectBag
// and are consulted by the combat loop.
type EffectKey string

const (
	EffectDamagePct       EffectKey = "damage_pct"
	EffectAttackSpeedPct  EffectKey = "attack_speed_pct"
	EffectCritChance      EffectKey = "crit_chance"
	EffectCritDamage      EffectKey = "crit_damage"
	EffectProjectileCount EffectKey = "projectile_count"
	EffectPierce          EffectKey = "pierce"
	EffectMoveSpeedPct    EffectKey = "move_speed_pct"
	EffectLifesteal       EffectKey = "lifesteal"
	EffectRegeneration    EffectKey = "regeneration"
	EffectMaxHealth       EffectKey = "max_health"
	EffectArmor           EffectKey = "armor"
	EffectMagicResist     EffectKey = "magic_resist"
	EffectDodge           EffectKey = "dodge"
	EffectBlock           EffectKey = "block"
	EffectMaxEnergy       EffectKey = "max_energy"

	EffectPhasing        EffectKey = "phasing"
	EffectCCImmunity     EffectKey = "cc_immunity"
	EffectChainLightning EffectKey = "chain_lightning"
	EffectExecute        EffectKey = "execute"
	EffectThorns         EffectKey = "thorns"
	EffectBerserker      EffectKey = "berserker"
	EffectBossSlayer     EffectKey = "boss_slayer"
	EffectTimeWarp       EffectKey = "time_warp"
	EffectSecondWind     EffectKey = "second_wind"
	EffectEnergyShield   EffectKey = "energy_shield"
	EffectComboMaster    EffectKey = "combo_master"
	EffectPoisonRounds   EffectKey = "poison_rounds"
	EffectBurningRounds  EffectKey = "burning_rounds"
	EffectFrostRounds    EffectKey = "frost_rounds"
	EffectStunRounds     EffectKey = "stun_rounds"
)

var allEffectKeys = []EffectKey{
	EffectDamagePct, EffectAttackSpeedPct, EffectCritChance, EffectCritDamage,
	EffectProjectileCount, EffectPierce, EffectMoveSpeedPct, EffectLifesteal,
	EffectRegeneration, EffectMaxHealth, EffectArmor, EffectMagicResist,
	EffectDodge, EffectBlock, EffectMaxEnergy,
	EffectPhasing, EffectCCImmunity, EffectChainLightning, EffectExecute,
	EffectThorns, EffectBerserker, EffectBossSlayer, EffectTimeWarp,
	EffectSecondWind, EffectEnergyShield, EffectComboMaster, EffectPoisonRounds,
	EffectBurningRounds, EffectFrostRounds, EffectStunRounds,
}

// AllEffectKeys returns every known effect key in declaration order.
func AllEffectKeys() []EffectKey {
	return append([]EffectKey(nil), allEffectKeys...)
}

// Valid reports whether k is part of the closed vocabulary.
func (k EffectKey) Valid() bool {
	for _, known := range allEffectKeys {
		if k == known {
			return true
		}
	}
	return false
}

// EffectKind classifies how an EffectBag entry stacks.
type EffectKind uint8

const (
	// KindStat effects are folded into Player fields and never stored in the bag.
	KindStat EffectKind = iota
	KindFlag
	KindCounter
	KindMultiplier
)

// Kind returns the stacking kind for k.
func (k EffectKey) Kind() EffectKind {
	switch k {
	case EffectCCImmunity:
		return KindFlag
	case EffectChainLightning, EffectSecondWind:
		return KindCounter
	case EffectPhasing, EffectExecute, EffectThorns, EffectBerserker, EffectBossSlayer,
		EffectTimeWarp, EffectEnergyShield, EffectComboMaster, EffectPoisonRounds,
		EffectBurningRounds, EffectFrostRounds, EffectStunRounds:
		return KindMultiplier
	default:
		return KindStat
	}
}

// EffectValue is the payload stored for a non-stat effect key. Only the field
// matching Kind is meaningful.
type EffectValue struct {
	Kind   EffectKind `json:"kind"`
	On     bool       `json:"on,omitempty"`
	Count  int        `json:"count,omitempty"`
	Amount float64    `json:"amount,omitempty"`
}

// EffectBag holds behaviour flags granted by rewards.
type EffectBag map[EffectKey]EffectValue

// Flag reports whether a flag effect is active.
func (b EffectBag) Flag(k EffectKey) bool {
	return b[k].On
}

// Count returns the stacked counter for k.
func (b EffectBag) Count(k EffectKey) int {
	return b[k].Count
}

// Amount returns the stacked multiplier for k, zero when absent.
func (b EffectBag) Amount(k EffectKey) float64 {
	return b[k].Amount
}

// Stack adds value to the entry for k according to its kind. Negative values
// reduce counters and multipliers; a non-positive value clears a flag.
func (b EffectBag) Stack(k EffectKey, value float64) {
	kind := k.Kind()
	if kind == KindStat {
		return
	}
	entry := b[k]
	entry.Kind = kind
	switch kind {
	case KindFlag:
		entry.On = value > 0
	case KindCounter:
		entry.Count += int(value)
		if entry.Count < 0 {
			entry.Count = 0
		}
	case KindMultiplier:
		entry.Amount += value
		if entry.Amount < 0 {
			entry.Amount = 0
		}
	}
	if !entry.On && entry.Count == 0 && entry.Amount == 0 {
		delete(b, k)
		return
	}
	b[k] = entry
}

// Clone returns an independent copy of the bag.
func (b EffectBag) Clone() EffectBag {
	if b == nil {
		return EffectBag{}
	}
	out := make(EffectBag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
