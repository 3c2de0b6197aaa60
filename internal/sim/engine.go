package sim

import (
	"context"
	"math"

	"layer-survivors/server/internal/ai"
	"layer-survivors/server/internal/combat"
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
	"layer-survivors/server/logging"
	loggingcombat "layer-survivors/server/logging/combat"
	"layer-survivors/server/logging/lifecycle"
)

const (
	enemiesAliveMetricKey  = "sim_enemies_alive"
	enemiesKilledMetricKey = "sim_enemies_killed_total"
	projectilesMetricKey   = "sim_projectiles_live"

	timeWarpCap = 0.9
)

// Engine owns the per-tick combat resolution for a single GameState. It is
// not safe for concurrent use; callers serialize Step behind one owner.
type Engine struct {
	state   *world.GameState
	cfg     Config
	src     rng.Source
	deps    Deps
	spawner *Spawner

	layer           int
	attackTimerMs   float64
	bossKilledLayer int
	killSources     map[uint64]string

	damageRecorder func(hit combat.HitRecord)
	statusRecorder func(enemy *world.Enemy, effect world.StatusEffect)
}

// NewEngine binds an engine to state. The source drives every random roll in
// the loop, so identical sources and inputs replay identically.
func NewEngine(state *world.GameState, cfg Config, src rng.Source, deps Deps) *Engine {
	cfg = cfg.normalized()
	e := &Engine{
		state:       state,
		cfg:         cfg,
		src:         src,
		deps:        deps,
		spawner:     NewSpawner(cfg),
		layer:       state.Layer,
		killSources: make(map[uint64]string),
	}
	telemetryCfg := combat.TelemetryRecorderConfig{
		Publisher:   deps.Publisher,
		CurrentTick: func() uint64 { return e.state.Tick },
	}
	e.damageRecorder = combat.NewDamageTelemetryRecorder(telemetryCfg)
	e.statusRecorder = combat.NewStatusTelemetryRecorder(telemetryCfg)
	return e
}

// State exposes the aggregate the engine mutates.
func (e *Engine) State() *world.GameState {
	return e.state
}

// Config returns the normalized configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Spawner exposes the spawn scheduler.
func (e *Engine) Spawner() *Spawner {
	return e.spawner
}

// Reset rebinds the engine to a fresh aggregate and source.
func (e *Engine) Reset(state *world.GameState, src rng.Source) {
	e.state = state
	e.src = src
	e.layer = state.Layer
	e.attackTimerMs = 0
	e.bossKilledLayer = 0
	e.killSources = make(map[uint64]string)
	e.spawner.Reset()
}

// Resize updates the viewport and pulls the player back inside it.
func (e *Engine) Resize(width, height float64) {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return
	}
	e.state.Bounds = world.Bounds{Width: width, Height: height}
	if e.state.Player != nil {
		e.state.Player.Position = e.state.Bounds.Clamp(e.state.Player.Position, e.state.Margin)
	}
}

// Step advances the simulation by deltaMs. While paused or while a cleared
// layer awaits the controller only the tick counter moves; after game over
// Step does nothing.
func (e *Engine) Step(input Input, deltaMs float64) StepResult {
	state := e.state
	if state.GameOver {
		return StepResult{Tick: state.Tick, Skipped: true}
	}
	dt := world.Finite(deltaMs, 0)
	if dt < 0 {
		dt = 0
	}
	state.Tick++
	result := StepResult{Tick: state.Tick, DeltaMs: dt}
	if state.Paused || state.LayerCleared {
		result.Skipped = true
		return result
	}
	if state.Layer != e.layer {
		e.layer = state.Layer
		e.attackTimerMs = 0
		e.spawner.Reset()
	}

	e.updatePlayer(input, dt)
	e.updateEnemies(dt, &result)
	e.collectKills(&result)
	if state.GameOver {
		return result
	}
	e.updateProjectiles(dt)
	result.Spawned += len(e.spawner.Update(state, dt, e.src))
	result.Fired = e.updateAttack(dt)
	e.resolveCollisions(dt, &result)
	e.collectKills(&result)
	if state.GameOver {
		return result
	}
	e.updateTime(dt, &result)
	e.storeMetrics()
	return result
}

func (e *Engine) updatePlayer(input Input, dt float64) {
	player := e.state.Player
	var status world.StatusTick
	player.Status, status = world.TickStatus(player.Status, dt)
	if player.Effects.Flag(world.EffectCCImmunity) {
		status.SpeedScale = 1
	}

	speed := player.MoveSpeed * e.cfg.PlayerSpeed * status.SpeedScale
	move := input.Vector().Scale(speed * dt / 1000)
	player.Position = e.state.Bounds.Clamp(player.Position.Add(move), e.state.Margin)

	player.Heal(player.Regeneration * dt / 1000)
	player.Energy = world.Clamp(player.Energy+e.cfg.EnergyRegen*dt/1000, 0, player.MaxEnergy)
	combat.TickCombo(player, dt)
}

func (e *Engine) updateEnemies(dt float64, result *StepResult) {
	state := e.state
	player := state.Player
	warp := 1 - world.Clamp(player.Effects.Amount(world.EffectTimeWarp), 0, timeWarpCap)
	ctx := ai.Context{Player: player.Position, Allies: state.Enemies}

	// Summons append to state.Enemies; they act from the next tick.
	for _, enemy := range state.Enemies {
		if !enemy.Alive() {
			continue
		}
		var status world.StatusTick
		enemy.Status, status = world.TickStatus(enemy.Status, dt)
		if status.Damage > 0 {
			e.damageEnemy(enemy, status.Damage, combat.SourceStatus)
			if !enemy.Alive() {
				continue
			}
		}
		enemy.TickCooldowns(dt)
		enemy.TickAnimation(dt)
		enemy.TickDash(dt)

		intent := ai.Decide(enemy, ctx)
		speed := enemy.MoveSpeed * intent.SpeedScale * status.SpeedScale * warp
		if enemy.Dashing() {
			speed *= dashSpeedFactor
		}
		enemy.Velocity = intent.Direction.Scale(speed)
		enemy.Position = enemy.Position.Add(enemy.Velocity.Scale(dt / 1000))
		if !enemy.Hit() {
			enemy.Mode = intent.Mode
		}
		if status.SpeedScale > 0 {
			e.useAbilities(enemy, intent, result)
		}
		if state.GameOver {
			return
		}
	}

	kept := state.Enemies[:0]
	for _, enemy := range state.Enemies {
		if enemy.Archetype != world.ArchetypeBoss && state.Bounds.Outside(enemy.Position, e.cfg.EnemyCullSlack) {
			continue
		}
		kept = append(kept, enemy)
	}
	for i := len(kept); i < len(state.Enemies); i++ {
		state.Enemies[i] = nil
	}
	state.Enemies = kept
}

func (e *Engine) updateProjectiles(dt float64) {
	state := e.state
	kept := state.Projectiles[:0]
	for _, projectile := range state.Projectiles {
		projectile.Position = projectile.Position.Add(projectile.Velocity.Scale(dt / 1000))
		if state.Bounds.Outside(projectile.Position, 0) || projectile.Expired(state.ElapsedMs) {
			continue
		}
		kept = append(kept, projectile)
	}
	for i := len(kept); i < len(state.Projectiles); i++ {
		state.Projectiles[i] = nil
	}
	state.Projectiles = kept
}

// updateAttack fires a volley at the nearest enemy once the attack timer
// exceeds the interval. The timer keeps accumulating while no enemy exists.
func (e *Engine) updateAttack(dt float64) int {
	state := e.state
	player := state.Player
	e.attackTimerMs += dt
	interval := 1000 / player.AttackSpeed
	if e.attackTimerMs <= interval {
		return 0
	}
	target := combat.NearestEnemy(player.Position, state.Enemies)
	if target == nil {
		return 0
	}
	e.attackTimerMs = 0
	volley := combat.FireVolley(combat.VolleyConfig{
		Player: player,
		Target: target.Position,
		NowMs:  state.ElapsedMs,
		Source: e.src,
		NextID: state.NextProjectileID,
	})
	state.Projectiles = append(state.Projectiles, volley...)
	return len(volley)
}

func (e *Engine) resolveCollisions(dt float64, result *StepResult) {
	state := e.state
	player := state.Player
	collision := combat.ResolveProjectiles(combat.CollisionConfig{
		Player:      player,
		Enemies:     state.Enemies,
		Projectiles: state.Projectiles,
		Source:      e.src,
		OnHit:       e.recordHit,
		OnStatus:    e.statusRecorder,
	})
	state.Projectiles = collision.Projectiles

	for _, enemy := range state.Enemies {
		if !enemy.Alive() {
			continue
		}
		if player.Position.DistanceTo(enemy.Position) > e.cfg.ContactRange+enemy.Size {
			continue
		}
		before := enemy.Health
		hit := combat.ContactDamage(player, enemy, dt)
		if enemy.Health < before {
			e.recordHit(combat.HitRecord{Enemy: enemy, Source: combat.SourceThorns, Damage: before - enemy.Health, Fatal: !enemy.Alive()})
		}
		result.PlayerHit += hit.Damage
		e.afterPlayerHit(hit, result)
		if state.GameOver {
			return
		}
	}
}

func (e *Engine) damageEnemy(enemy *world.Enemy, amount float64, source string) {
	before := enemy.Health
	fatal := enemy.TakeDamage(amount)
	e.recordHit(combat.HitRecord{Enemy: enemy, Source: source, Damage: before - enemy.Health, Fatal: fatal})
}

func (e *Engine) recordHit(hit combat.HitRecord) {
	if hit.Fatal && hit.Enemy != nil {
		e.killSources[hit.Enemy.ID] = hit.Source
	}
	if e.damageRecorder != nil {
		e.damageRecorder(hit)
	}
}

// collectKills removes every enemy at zero health and awards it exactly once.
func (e *Engine) collectKills(result *StepResult) {
	state := e.state
	kept := state.Enemies[:0]
	for _, enemy := range state.Enemies {
		if enemy.Alive() {
			kept = append(kept, enemy)
			continue
		}
		e.awardKill(enemy, result)
	}
	for i := len(kept); i < len(state.Enemies); i++ {
		state.Enemies[i] = nil
	}
	state.Enemies = kept
}

func (e *Engine) awardKill(enemy *world.Enemy, result *StepResult) {
	state := e.state
	player := state.Player
	score := combat.KillScore(state.Layer)
	loot := combat.RollLoot(enemy, e.src)
	state.Score += score
	player.Gold += loot.Gold
	player.Experience += loot.Experience
	combat.RegisterKill(player)
	result.Killed++

	event := Event{
		Kind:      EventEnemyKilled,
		Layer:     state.Layer,
		EnemyID:   enemy.ID,
		Archetype: enemy.Archetype,
		Score:     score,
		Gold:      loot.Gold,
		XP:        loot.Experience,
	}
	result.emit(event)
	if enemy.Archetype == world.ArchetypeBoss {
		e.bossKilledLayer = state.Layer
		event.Kind = EventBossKilled
		result.emit(event)
	}

	source := e.killSources[enemy.ID]
	delete(e.killSources, enemy.ID)
	loggingcombat.Defeat(
		context.Background(),
		e.deps.Publisher,
		state.Tick,
		logging.PlayerRef(),
		combat.EnemyRef(enemy),
		loggingcombat.DefeatPayload{
			Archetype: string(enemy.Archetype),
			Source:    source,
			Score:     score,
			Gold:      loot.Gold,
			XP:        loot.Experience,
			Combo:     player.Combo,
		},
		nil,
	)
	if e.deps.Metrics != nil {
		e.deps.Metrics.Add(enemiesKilledMetricKey, 1)
	}
}

func (e *Engine) afterPlayerHit(hit combat.PlayerHit, result *StepResult) {
	state := e.state
	if hit.Revived {
		result.emit(Event{Kind: EventPlayerRevived, Layer: state.Layer})
		loggingcombat.SecondWind(
			context.Background(),
			e.deps.Publisher,
			state.Tick,
			loggingcombat.SecondWindPayload{
				Restored:  state.Player.Health,
				Remaining: state.Player.Effects.Count(world.EffectSecondWind),
			},
			nil,
		)
	}
	if hit.Fatal {
		e.endGame(result)
	}
}

func (e *Engine) endGame(result *StepResult) {
	state := e.state
	if state.GameOver {
		return
	}
	state.GameOver = true
	result.emit(Event{Kind: EventGameOver, Layer: state.Layer, Score: state.Score})
	lifecycle.GameOver(
		context.Background(),
		e.deps.Publisher,
		state.Tick,
		lifecycle.GameOverPayload{Layer: state.Layer, Score: state.Score, ElapsedMs: state.ElapsedMs},
		nil,
	)
}

func (e *Engine) updateTime(dt float64, result *StepResult) {
	state := e.state
	state.ElapsedMs += dt
	state.TimeRemainingMs -= dt
	if state.TimeRemainingMs > 0 {
		return
	}
	state.TimeRemainingMs = 0
	if state.LayerCleared {
		return
	}
	state.LayerCleared = true
	shop := world.IsShopLayer(state.Layer)
	boss := world.IsBossLayer(state.Layer)
	result.emit(Event{Kind: EventLayerCleared, Layer: state.Layer, ShopLayer: shop, BossLayer: boss})
	lifecycle.LayerCleared(
		context.Background(),
		e.deps.Publisher,
		state.Tick,
		lifecycle.LayerClearedPayload{
			Layer:     state.Layer,
			ShopLayer: shop,
			BossLayer: boss,
			BossKill:  e.bossKilledLayer == state.Layer,
		},
		nil,
	)
}

func (e *Engine) storeMetrics() {
	if e.deps.Metrics == nil {
		return
	}
	e.deps.Metrics.Store(enemiesAliveMetricKey, uint64(len(e.state.Enemies)))
	e.deps.Metrics.Store(projectilesMetricKey, uint64(len(e.state.Projectiles)))
}
