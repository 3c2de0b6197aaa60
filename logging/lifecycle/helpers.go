package lifecycle

import (
	"context"

	"layer-survivors/server/logging"
)

const (
	// EventGameStarted is emitted when a fresh run begins.
	EventGameStarted logging.EventType = "lifecycle.game_started"
	// EventGameOver is emitted once when the player's health is depleted.
	EventGameOver logging.EventType = "lifecycle.game_over"
	// EventLayerCleared is emitted when a layer timer reaches zero.
	EventLayerCleared logging.EventType = "lifecycle.layer_cleared"
	// EventLayerAdvanced is emitted when the controller starts the next layer.
	EventLayerAdvanced logging.EventType = "lifecycle.layer_advanced"
)

// GameStartedPayload captures the seed a run was started with.
type GameStartedPayload struct {
	Seed  string `json:"seed"`
	Layer int    `json:"layer"`
}

// GameOverPayload captures the final run stats.
type GameOverPayload struct {
	Layer     int     `json:"layer"`
	Score     int     `json:"score"`
	ElapsedMs float64 `json:"elapsedMs"`
}

// LayerClearedPayload describes which follow-ups the cleared layer triggers.
type LayerClearedPayload struct {
	Layer     int  `json:"layer"`
	ShopLayer bool `json:"shopLayer"`
	BossLayer bool `json:"bossLayer"`
	BossKill  bool `json:"bossKill"`
}

// LayerAdvancedPayload records a layer transition.
type LayerAdvancedPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// GameStarted publishes a new run.
func GameStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload GameStartedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventGameStarted, payload, extra)
}

// GameOver publishes the terminal event.
func GameOver(ctx context.Context, pub logging.Publisher, tick uint64, payload GameOverPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventGameOver, payload, extra)
}

// LayerCleared publishes a cleared layer.
func LayerCleared(ctx context.Context, pub logging.Publisher, tick uint64, payload LayerClearedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventLayerCleared, payload, extra)
}

// LayerAdvanced publishes a layer transition.
func LayerAdvanced(ctx context.Context, pub logging.Publisher, tick uint64, payload LayerAdvancedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventLayerAdvanced, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, eventType logging.EventType, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
