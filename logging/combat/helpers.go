package combat

import (
	"context"

	"layer-survivors/server/logging"
)

const (
	// EventDamage is emitted when a projectile or effect damages an enemy.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an enemy is killed.
	EventDefeat logging.EventType = "combat.defeat"
	// EventPlayerHit is emitted when an enemy ability lands on the player.
	EventPlayerHit logging.EventType = "combat.player_hit"
	// EventSecondWind is emitted when the player is revived by second wind.
	EventSecondWind logging.EventType = "combat.second_wind"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Source       string  `json:"source,omitempty"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
	Crit         bool    `json:"crit,omitempty"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Archetype string `json:"archetype"`
	Source    string `json:"source,omitempty"`
	Score     int    `json:"score"`
	Gold      int    `json:"gold,omitempty"`
	XP        int    `json:"xp,omitempty"`
	Combo     int    `json:"combo"`
}

// PlayerHitPayload describes damage taken by the player.
type PlayerHitPayload struct {
	Ability  string  `json:"ability"`
	Amount   float64 `json:"amount"`
	Health   float64 `json:"health"`
	Dodged   bool    `json:"dodged,omitempty"`
	Blocked  bool    `json:"blocked,omitempty"`
	Absorbed float64 `json:"absorbed,omitempty"`
}

// SecondWindPayload records the health restored on revive.
type SecondWindPayload struct {
	Restored  float64 `json:"restored"`
	Remaining int     `json:"remaining"`
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Defeat publishes a combat defeat event for the eliminated enemy.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// PlayerHit publishes an ability hit against the player.
func PlayerHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerHitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPlayerHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{logging.PlayerRef()},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SecondWind publishes a revive.
func SecondWind(ctx context.Context, pub logging.Publisher, tick uint64, payload SecondWindPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSecondWind,
		Tick:     tick,
		Actor:    logging.PlayerRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
