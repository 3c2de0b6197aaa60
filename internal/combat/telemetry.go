package combat

import (
	"context"
	"strconv"

	"layer-survivors/server/internal/world"
	"layer-survivors/server/logging"
	loggingcombat "layer-survivors/server/logging/combat"
	loggingstatus "layer-survivors/server/logging/status_effects"
)

// EnemyRef converts an enemy into a logging reference.
func EnemyRef(enemy *world.Enemy) logging.EntityRef {
	if enemy == nil {
		return logging.EntityRef{Kind: logging.EntityKindEnemy}
	}
	return logging.EntityRef{ID: strconv.FormatUint(enemy.ID, 10), Kind: logging.EntityKindEnemy}
}

// ProjectileRef converts a projectile into a logging reference.
func ProjectileRef(projectile *world.Projectile) logging.EntityRef {
	if projectile == nil {
		return logging.PlayerRef()
	}
	return logging.EntityRef{ID: strconv.FormatUint(projectile.ID, 10), Kind: logging.EntityKindProjectile}
}

// TelemetryRecorderConfig captures the dependencies required to publish
// combat telemetry from inside the collision pass.
type TelemetryRecorderConfig struct {
	Publisher   logging.Publisher
	CurrentTick func() uint64
}

func (cfg TelemetryRecorderConfig) tick() uint64 {
	if cfg.CurrentTick == nil {
		return 0
	}
	return cfg.CurrentTick()
}

// NewDamageTelemetryRecorder returns an OnHit hook that emits damage events.
// It returns nil when no publisher is configured.
func NewDamageTelemetryRecorder(cfg TelemetryRecorderConfig) func(hit HitRecord) {
	if cfg.Publisher == nil {
		return nil
	}
	return func(hit HitRecord) {
		crit := hit.Projectile != nil && hit.Projectile.Crit && hit.Source == SourceProjectile
		loggingcombat.Damage(
			context.Background(),
			cfg.Publisher,
			cfg.tick(),
			ProjectileRef(hit.Projectile),
			EnemyRef(hit.Enemy),
			loggingcombat.DamagePayload{
				Source:       hit.Source,
				Amount:       hit.Damage,
				TargetHealth: hit.Enemy.Health,
				Crit:         crit,
			},
			nil,
		)
	}
}

// NewStatusTelemetryRecorder returns an OnStatus hook that emits status
// application events.
func NewStatusTelemetryRecorder(cfg TelemetryRecorderConfig) func(enemy *world.Enemy, effect world.StatusEffect) {
	if cfg.Publisher == nil {
		return nil
	}
	return func(enemy *world.Enemy, effect world.StatusEffect) {
		loggingstatus.Applied(
			context.Background(),
			cfg.Publisher,
			cfg.tick(),
			logging.PlayerRef(),
			EnemyRef(enemy),
			loggingstatus.AppliedPayload{
				StatusEffect: string(effect.Kind),
				Magnitude:    effect.Magnitude,
				DurationMs:   int64(effect.RemainingMs),
			},
			nil,
		)
	}
}
