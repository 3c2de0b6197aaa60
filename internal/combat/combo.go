package combat

import "layer-survivors/server/internal/world"

const (
	// ComboWindowMs is how long a streak survives without a kill.
	ComboWindowMs = 3000.0
	comboStep     = 0.02
)

// RegisterKill extends the player's streak and recomputes the multiplier.
func RegisterKill(player *world.Player) {
	if player == nil {
		return
	}
	player.Combo++
	player.ComboTimerMs = ComboWindowMs
	player.ComboMultiplier = ComboMultiplier(player.Combo, player.Effects.Amount(world.EffectComboMaster))
}

// ComboMultiplier is 1 + combo*0.02*(1+master), capped at MaxComboMultiplier.
func ComboMultiplier(combo int, master float64) float64 {
	if combo <= 0 {
		return 1
	}
	if master < 0 {
		master = 0
	}
	m := 1 + float64(combo)*comboStep*(1+master)
	if m > world.MaxComboMultiplier {
		m = world.MaxComboMultiplier
	}
	return m
}

// TickCombo counts the streak window down and resets it on expiry.
func TickCombo(player *world.Player, deltaMs float64) {
	if player == nil || player.Combo == 0 {
		return
	}
	player.ComboTimerMs -= deltaMs
	if player.ComboTimerMs <= 0 {
		player.Combo = 0
		player.ComboTimerMs = 0
		player.ComboMultiplier = 1
	}
}
