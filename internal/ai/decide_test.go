package ai

import (
	"math"
	"testing"

	"layer-survivors/server/internal/world"
)

func enemyAt(x, y float64, b world.Behavior) *world.Enemy {
	e := world.NewEnemy(1, world.ArchetypeNormal, 1, world.Vec2{X: x, Y: y}, b)
	return e
}

func TestAggressiveHysteresis(t *testing.T) {
	e := enemyAt(0, 0, world.Aggressive{AggroRadius: 100, DeaggroRadius: 200})
	ctx := Context{Player: world.Vec2{X: 150}}

	if got := Decide(e, ctx); got.Mode != world.ModeIdle || e.Engaged {
		t.Fatalf("outside aggro should idle, got %+v engaged=%v", got, e.Engaged)
	}

	ctx.Player = world.Vec2{X: 90}
	if got := Decide(e, ctx); got.Direction.X <= 0 || !e.Engaged {
		t.Fatalf("inside aggro should chase, got %+v", got)
	}

	ctx.Player = world.Vec2{X: 150}
	if got := Decide(e, ctx); got.Mode != world.ModeMoving {
		t.Fatalf("between aggro and deaggro should keep chasing, got %+v", got)
	}

	ctx.Player = world.Vec2{X: 250}
	if got := Decide(e, ctx); got.Mode != world.ModeIdle || e.Engaged {
		t.Fatalf("beyond deaggro should disengage, got %+v", got)
	}
}

func TestDefensiveRetreatsAtOffsetAngle(t *testing.T) {
	e := enemyAt(100, 0, world.Defensive{RetreatRadius: 150, OffsetAngle: math.Pi / 2})
	got := Decide(e, Context{Player: world.Vec2{}})
	// away is +X; rotated by 90 degrees it becomes +Y.
	if math.Abs(got.Direction.X) > 1e-9 || math.Abs(got.Direction.Y-1) > 1e-9 {
		t.Fatalf("retreat direction = %+v, want (0,1)", got.Direction)
	}
}

func TestSupportSeeksMostInjuredAlly(t *testing.T) {
	healer := enemyAt(0, 0, world.Support{InjuredRatio: 0.5, SeekRadius: 400})
	scratched := enemyAt(100, 0, nil)
	scratched.Health = scratched.MaxHealth * 0.4
	dying := enemyAt(0, 100, nil)
	dying.Health = dying.MaxHealth * 0.1
	healthy := enemyAt(-100, 0, nil)

	got := Decide(healer, Context{Player: world.Vec2{X: 500}, Allies: []*world.Enemy{healer, scratched, dying, healthy}})
	if got.Target != dying {
		t.Fatalf("support picked %+v, want most injured ally", got.Target)
	}
	if got.Direction.Y <= 0 {
		t.Fatalf("support should move toward patient, got %+v", got.Direction)
	}
}

func TestSupportDefaultsToPlayer(t *testing.T) {
	healer := enemyAt(0, 0, world.Support{InjuredRatio: 0.5, SeekRadius: 400})
	ally := enemyAt(10, 0, nil)
	got := Decide(healer, Context{Player: world.Vec2{X: -300}, Allies: []*world.Enemy{healer, ally}})
	if got.Target != nil || got.Direction.X >= 0 {
		t.Fatalf("support without patients should chase player, got %+v", got)
	}
}

func TestSwarmBlendsTowardPack(t *testing.T) {
	self := enemyAt(0, 0, world.Swarm{CohesionRadius: 100})
	mate := enemyAt(0, 50, nil)
	far := enemyAt(0, -500, nil)
	got := Decide(self, Context{Player: world.Vec2{X: 300}, Allies: []*world.Enemy{self, mate, far}})
	if got.Direction.X <= 0 || got.Direction.Y <= 0 {
		t.Fatalf("swarm direction %+v should lean toward player (+x) and pack (+y)", got.Direction)
	}
	if math.Abs(got.Direction.Len()-1) > 1e-9 {
		t.Fatalf("swarm direction not normalized: %v", got.Direction.Len())
	}
}

func TestRangedHoldsInsideAttackRange(t *testing.T) {
	e := enemyAt(0, 0, world.Ranged{AttackRange: 250})
	if got := Decide(e, Context{Player: world.Vec2{X: 400}}); got.Mode != world.ModeMoving {
		t.Fatalf("ranged outside range should close distance, got %s", got.Mode)
	}
	got := Decide(e, Context{Player: world.Vec2{X: 200}})
	if got.Mode != world.ModeAttacking || got.Direction != (world.Vec2{}) {
		t.Fatalf("ranged inside range should hold and attack, got %+v", got)
	}
}

func TestEliteChargeBoost(t *testing.T) {
	e := enemyAt(0, 0, world.Elite{ChargeRadius: 200, ChargeBoost: 0.5})
	if got := Decide(e, Context{Player: world.Vec2{X: 500}}); got.SpeedScale != 1 {
		t.Fatalf("elite outside charge radius speed %v, want 1", got.SpeedScale)
	}
	if got := Decide(e, Context{Player: world.Vec2{X: 100}}); got.SpeedScale != 1.5 {
		t.Fatalf("elite inside charge radius speed %v, want 1.5", got.SpeedScale)
	}
}

func TestZeroDistanceIsGuarded(t *testing.T) {
	e := enemyAt(5, 5, world.Elite{ChargeRadius: 10, ChargeBoost: 1})
	got := Decide(e, Context{Player: world.Vec2{X: 5, Y: 5}})
	if math.IsNaN(got.Direction.X) || math.IsNaN(got.Direction.Y) {
		t.Fatalf("zero-distance produced NaN direction")
	}
}
