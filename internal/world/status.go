package world

// StatusKind enumerates timed status effects shared by players and enemies.
type StatusKind string

const (
	StatusPoison StatusKind = "poison"
	StatusBurn   StatusKind = "burn"
	StatusSlow   StatusKind = "slow"
	StatusStun   StatusKind = "stun"
)

// StatusEffect is a timed effect. Magnitude is damage per second for poison
// and burn, and the fractional speed reduction for slow.
type StatusEffect struct {
	Kind        StatusKind `json:"kind"`
	Magnitude   float64    `json:"magnitude"`
	RemainingMs float64    `json:"remainingMs"`
}

// AddStatus merges effect into list. An existing effect of the same kind keeps
// the stronger magnitude and the longer remaining duration.
func AddStatus(list []StatusEffect, effect StatusEffect) []StatusEffect {
	if effect.RemainingMs <= 0 {
		return list
	}
	for i := range list {
		if list[i].Kind != effect.Kind {
			continue
		}
		if effect.Magnitude > list[i].Magnitude {
			list[i].Magnitude = effect.Magnitude
		}
		if effect.RemainingMs > list[i].RemainingMs {
			list[i].RemainingMs = effect.RemainingMs
		}
		return list
	}
	return append(list, effect)
}

// StatusTick is the aggregate outcome of advancing a status list.
type StatusTick struct {
	Damage     float64
	SpeedScale float64
}

// TickStatus advances every effect by deltaMs, drops expired entries, and
// returns the damage dealt plus the resulting movement scale. Stun wins over
// slow.
func TickStatus(list []StatusEffect, deltaMs float64) ([]StatusEffect, StatusTick) {
	out := StatusTick{SpeedScale: 1}
	kept := list[:0]
	stunned := false
	for _, effect := range list {
		active := deltaMs
		if effect.RemainingMs < active {
			active = effect.RemainingMs
		}
		switch effect.Kind {
		case StatusPoison, StatusBurn:
			out.Damage += effect.Magnitude * active / 1000
		case StatusSlow:
			scale := 1 - Clamp(effect.Magnitude, 0, 0.9)
			if scale < out.SpeedScale {
				out.SpeedScale = scale
			}
		case StatusStun:
			stunned = true
		}
		effect.RemainingMs -= deltaMs
		if effect.RemainingMs > 0 {
			kept = append(kept, effect)
		}
	}
	if stunned {
		out.SpeedScale = 0
	}
	return kept, out
}

// HasStatus reports whether list contains an active effect of kind.
func HasStatus(list []StatusEffect, kind StatusKind) bool {
	for _, effect := range list {
		if effect.Kind == kind && effect.RemainingMs > 0 {
			return true
		}
	}
	return false
}

func cloneStatus(list []StatusEffect) []StatusEffect {
	if len(list) == 0 {
		return nil
	}
	return append([]StatusEffect(nil), list...)
}
