package status_effects

import (
	"context"

	"layer-survivors/server/logging"
)

const (
	// EventApplied is emitted when an on-hit status lands on an enemy.
	EventApplied logging.EventType = "status_effects.applied"
)

// AppliedPayload captures details about a status effect application.
type AppliedPayload struct {
	StatusEffect string  `json:"statusEffect"`
	Magnitude    float64 `json:"magnitude,omitempty"`
	DurationMs   int64   `json:"durationMs,omitempty"`
}

// Applied publishes a status effect application event.
func Applied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload AppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryStatusEffects,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
