package sim

import (
	"math"

	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
)

const (
	swarmPackSize    = 3
	swarmPackSpacing = 14.0
	kiterRetreat     = 180.0
	kiterOffsetAngle = 0.5
)

var varietyArchetypes = []world.Archetype{
	world.ArchetypeSwarm,
	world.ArchetypeRanged,
	world.ArchetypeTank,
	world.ArchetypeAssassin,
	world.ArchetypeSupport,
}

// Spawner accumulates a timer and places enemies on the off-screen edges.
type Spawner struct {
	cfg     Config
	timerMs float64
	nextMs  float64
}

// NewSpawner builds a spawner for cfg.
func NewSpawner(cfg Config) *Spawner {
	return &Spawner{cfg: cfg.normalized()}
}

// Reset restarts the spawn timer, used when a new layer starts.
func (s *Spawner) Reset() {
	s.timerMs = 0
	s.nextMs = 0
}

// Interval draws the next spawn interval for layer.
func (s *Spawner) Interval(layer int, src rng.Source) float64 {
	if s.cfg.Schedule == ScheduleRandom {
		return rng.Float(src, s.cfg.RandomMinMs, s.cfg.RandomMaxMs)
	}
	base := math.Max(s.cfg.ScaledFloorMs, s.cfg.ScaledBaseMs-s.cfg.ScaledStepMs*float64(layer-1))
	jitter := rng.Float(src, -s.cfg.ScaledJitter, s.cfg.ScaledJitter)
	return base * (1 + jitter)
}

// Cap returns the population cap for layer.
func (s *Spawner) Cap(layer int) int {
	if s.cfg.Schedule == ScheduleRandom {
		return s.cfg.CapMax
	}
	cap := s.cfg.CapBase + s.cfg.CapStep*layer
	if cap > s.cfg.CapMax {
		cap = s.cfg.CapMax
	}
	return cap
}

// Update advances the timer and spawns when it elapses. On a boss layer the
// first spawn is always the layer's single boss.
func (s *Spawner) Update(state *world.GameState, deltaMs float64, src rng.Source) []*world.Enemy {
	if s.cfg.DisableSpawns {
		return nil
	}
	if s.nextMs <= 0 {
		s.nextMs = s.Interval(state.Layer, src)
	}
	s.timerMs += deltaMs
	if s.timerMs < s.nextMs {
		return nil
	}
	s.timerMs = 0
	s.nextMs = s.Interval(state.Layer, src)
	if len(state.Enemies) >= s.Cap(state.Layer) {
		return nil
	}

	pos := s.EdgePoint(state.Bounds, src)
	if world.IsBossLayer(state.Layer) && state.BossSpawnedLayer != state.Layer {
		state.BossSpawnedLayer = state.Layer
		return s.place(state, world.ArchetypeBoss, pos, nil)
	}

	archetype := s.PickArchetype(state.Layer, src)
	switch archetype {
	case world.ArchetypeSwarm:
		return s.SpawnPack(state, pos, swarmPackSize)
	case world.ArchetypeRanged:
		var behavior world.Behavior
		if rng.Chance(src, s.cfg.RangedKiterShare) {
			behavior = world.Defensive{RetreatRadius: kiterRetreat, OffsetAngle: kiterOffsetAngle}
		}
		return s.place(state, archetype, pos, behavior)
	default:
		return s.place(state, archetype, pos, nil)
	}
}

// PickArchetype rolls the elite chance first, then from layer 3 the variety
// roll, falling back to a normal enemy.
func (s *Spawner) PickArchetype(layer int, src rng.Source) world.Archetype {
	if rng.Chance(src, math.Min(0.35, 0.02*float64(layer))) {
		return world.ArchetypeElite
	}
	if layer >= 3 && rng.Chance(src, math.Min(0.45, 0.04*float64(layer))) {
		pick, err := rng.Choice(src, varietyArchetypes)
		if err == nil {
			return pick
		}
	}
	return world.ArchetypeNormal
}

// EdgePoint returns a random point just beyond one of the four edges.
func (s *Spawner) EdgePoint(bounds world.Bounds, src rng.Source) world.Vec2 {
	offset := s.cfg.SpawnEdgeOffset
	switch rng.Int(src, 4) {
	case 0:
		return world.Vec2{X: rng.Float(src, 0, bounds.Width), Y: -offset}
	case 1:
		return world.Vec2{X: bounds.Width + offset, Y: rng.Float(src, 0, bounds.Height)}
	case 2:
		return world.Vec2{X: rng.Float(src, 0, bounds.Width), Y: bounds.Height + offset}
	default:
		return world.Vec2{X: -offset, Y: rng.Float(src, 0, bounds.Height)}
	}
}

// SpawnPack places up to n swarm enemies around center, respecting the cap.
func (s *Spawner) SpawnPack(state *world.GameState, center world.Vec2, n int) []*world.Enemy {
	room := s.Cap(state.Layer) - len(state.Enemies)
	if n > room {
		n = room
	}
	var out []*world.Enemy
	for i := 0; i < n; i++ {
		offset := float64(i) - float64(n-1)/2
		pos := center.Add(world.Vec2{X: offset * swarmPackSpacing, Y: offset * swarmPackSpacing})
		out = append(out, s.place(state, world.ArchetypeSwarm, pos, nil)...)
	}
	return out
}

func (s *Spawner) place(state *world.GameState, archetype world.Archetype, pos world.Vec2, behavior world.Behavior) []*world.Enemy {
	enemy := world.NewEnemy(state.NextEnemyID(), archetype, state.Layer, pos, behavior)
	state.Enemies = append(state.Enemies, enemy)
	return []*world.Enemy{enemy}
}
