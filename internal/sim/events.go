package sim

import "layer-survivors/server/internal/world"

// EventKind tags the outward events a step can produce.
type EventKind string

const (
	EventEnemyKilled   EventKind = "enemy_killed"
	EventBossKilled    EventKind = "boss_killed"
	EventLayerCleared  EventKind = "layer_cleared"
	EventGameOver      EventKind = "game_over"
	EventPlayerRevived EventKind = "player_revived"
)

// Event is a notable transition inside a step. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind      EventKind       `json:"kind"`
	Tick      uint64          `json:"tick"`
	Layer     int             `json:"layer"`
	EnemyID   uint64          `json:"enemyId,omitempty"`
	Archetype world.Archetype `json:"archetype,omitempty"`
	Score     int             `json:"score,omitempty"`
	Gold      int             `json:"gold,omitempty"`
	XP        int             `json:"xp,omitempty"`
	ShopLayer bool            `json:"shopLayer,omitempty"`
	BossLayer bool            `json:"bossLayer,omitempty"`
}

// StepResult summarizes one call to Engine.Step.
type StepResult struct {
	Tick      uint64  `json:"tick"`
	DeltaMs   float64 `json:"deltaMs"`
	Skipped   bool    `json:"skipped,omitempty"`
	Spawned   int     `json:"spawned"`
	Fired     int     `json:"fired"`
	Killed    int     `json:"killed"`
	Events    []Event `json:"events,omitempty"`
	PlayerHit float64 `json:"playerHit,omitempty"`
}

func (r *StepResult) emit(event Event) {
	event.Tick = r.Tick
	r.Events = append(r.Events, event)
}

// Has reports whether the result carries an event of kind.
func (r StepResult) Has(kind EventKind) bool {
	for _, event := range r.Events {
		if event.Kind == kind {
			return true
		}
	}
	return false
}
