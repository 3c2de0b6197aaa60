package ai

import (
	"layer-survivors/server/internal/world"
)

const (
	// swarmPlayerBias weights the pull toward the player against the pull
	// toward the pack centroid.
	swarmPlayerBias = 1.0
	swarmPackBias   = 0.5
	// supportArriveRadius is how close a support unit gets to its patient.
	supportArriveRadius = 30.0
	// defensiveHoldFactor widens the retreat radius into a hold band.
	defensiveHoldFactor = 1.5
	// bossHoldFactor is the fraction of slam range at which a boss stops.
	bossHoldFactor = 0.8
)

// Context is the read-only view of the world an enemy decides against.
type Context struct {
	Player world.Vec2
	Allies []*world.Enemy
}

// Intent is the outcome of one decision: a unit direction (or zero), the
// mode to display, and a multiplier on the enemy's own move speed.
type Intent struct {
	Direction  world.Vec2
	Mode       world.Mode
	SpeedScale float64
	// Target is the ally a support unit is tending, if any.
	Target *world.Enemy
}

// Decide computes the intent for e. It mutates only the enemy's aggro latch.
func Decide(e *world.Enemy, ctx Context) Intent {
	if e == nil {
		return Intent{Mode: world.ModeIdle}
	}
	toPlayer := world.Direction(e.Position, ctx.Player)
	dist := e.Position.DistanceTo(ctx.Player)

	switch b := e.Behavior.(type) {
	case world.Aggressive:
		return decideAggressive(e, b, toPlayer, dist)
	case world.Defensive:
		return decideDefensive(e, b, ctx, toPlayer, dist)
	case world.Support:
		return decideSupport(e, b, ctx, toPlayer)
	case world.Swarm:
		return decideSwarm(e, b, ctx, toPlayer)
	case world.Ranged:
		if dist > b.AttackRange {
			return chase(toPlayer)
		}
		return Intent{Mode: world.ModeAttacking, SpeedScale: 1}
	case world.BossBehavior:
		if dist > b.SlamRange*bossHoldFactor {
			return chase(toPlayer)
		}
		return Intent{Mode: world.ModeAttacking, SpeedScale: 1}
	case world.Elite:
		intent := chase(toPlayer)
		if dist <= b.ChargeRadius {
			intent.SpeedScale += b.ChargeBoost
			intent.Mode = world.ModeAttacking
		}
		return intent
	case nil:
		return chase(toPlayer)
	default:
		return chase(toPlayer)
	}
}

func chase(dir world.Vec2) Intent {
	return Intent{Direction: dir, Mode: world.ModeMoving, SpeedScale: 1}
}

func decideAggressive(e *world.Enemy, b world.Aggressive, toPlayer world.Vec2, dist float64) Intent {
	if !e.Engaged && dist <= b.AggroRadius {
		e.Engaged = true
	} else if e.Engaged && dist > b.DeaggroRadius {
		e.Engaged = false
	}
	if !e.Engaged {
		return Intent{Mode: world.ModeIdle, SpeedScale: 1}
	}
	return chase(toPlayer)
}

func decideDefensive(e *world.Enemy, b world.Defensive, ctx Context, toPlayer world.Vec2, dist float64) Intent {
	switch {
	case dist < b.RetreatRadius:
		away := world.Direction(ctx.Player, e.Position).Rotated(b.OffsetAngle)
		return Intent{Direction: away, Mode: world.ModeMoving, SpeedScale: 1}
	case dist > b.RetreatRadius*defensiveHoldFactor:
		return chase(toPlayer)
	default:
		return Intent{Mode: world.ModeAttacking, SpeedScale: 1}
	}
}

func decideSupport(e *world.Enemy, b world.Support, ctx Context, toPlayer world.Vec2) Intent {
	patient := MostInjuredAlly(e, ctx.Allies, b.InjuredRatio, b.SeekRadius)
	if patient == nil {
		return chase(toPlayer)
	}
	if e.Position.DistanceTo(patient.Position) <= supportArriveRadius {
		return Intent{Mode: world.ModeSpecial, SpeedScale: 1, Target: patient}
	}
	return Intent{
		Direction:  world.Direction(e.Position, patient.Position),
		Mode:       world.ModeMoving,
		SpeedScale: 1,
		Target:     patient,
	}
}

func decideSwarm(e *world.Enemy, b world.Swarm, ctx Context, toPlayer world.Vec2) Intent {
	centroid, n := PackCentroid(e, ctx.Allies, b.CohesionRadius)
	if n == 0 {
		return chase(toPlayer)
	}
	toPack := world.Direction(e.Position, centroid)
	blend := toPlayer.Scale(swarmPlayerBias).Add(toPack.Scale(swarmPackBias)).Normalized()
	return Intent{Direction: blend, Mode: world.ModeMoving, SpeedScale: 1}
}

// MostInjuredAlly returns the living ally (other than self) with the lowest
// health ratio below threshold within radius. Ties keep the first found.
func MostInjuredAlly(self *world.Enemy, allies []*world.Enemy, threshold, radius float64) *world.Enemy {
	var best *world.Enemy
	bestRatio := threshold
	for _, ally := range allies {
		if ally == nil || ally == self || !ally.Alive() {
			continue
		}
		if radius > 0 && self.Position.DistanceTo(ally.Position) > radius {
			continue
		}
		ratio := ally.HealthRatio()
		if ratio < bestRatio {
			best = ally
			bestRatio = ratio
		}
	}
	return best
}

// PackCentroid averages the positions of living allies within radius of self.
func PackCentroid(self *world.Enemy, allies []*world.Enemy, radius float64) (world.Vec2, int) {
	var sum world.Vec2
	n := 0
	for _, ally := range allies {
		if ally == nil || ally == self || !ally.Alive() {
			continue
		}
		if self.Position.DistanceTo(ally.Position) > radius {
			continue
		}
		sum = sum.Add(ally.Position)
		n++
	}
	if n == 0 {
		return world.Vec2{}, 0
	}
	return sum.Scale(1 / float64(n)), n
}
