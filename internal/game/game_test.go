package game

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"layer-survivors/server/internal/layers"
	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/internal/session"
	"layer-survivors/server/internal/sim"
	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/internal/world"
	"layer-survivors/server/logging/lifecycle"
	"layer-survivors/server/logging/sinks"
)

const (
	harnessSeed      = "test_seed"
	harnessTicks     = 1500
	harnessTickMs    = 16.0
	harnessLayerMs   = 2500.0
	harnessHashEvery = 25
)

type harnessOutcome struct {
	Checksum    string
	Layer       int
	Score       int
	Transitions int
	GameOver    bool
}

func harnessInput(tick int) sim.Input {
	return sim.Input{
		Up:    tick%180 < 50,
		Down:  tick%180 >= 90 && tick%180 < 140,
		Left:  tick%240 < 70,
		Right: tick%240 >= 120 && tick%240 < 190,
	}
}

// resolveChoices plays the first available option so the run keeps moving.
func resolveChoices(t *testing.T, g *Game) {
	t.Helper()
	offers := g.Controller().Offers()
	var cmds []sim.Command
	switch offers.Phase {
	case layers.PhaseBossReward:
		cmds = []sim.Command{
			{Type: sim.CommandSelectBossReward, Ref: offers.BossRewards[0].ID},
			{Type: sim.CommandConfirmBossReward},
		}
	case layers.PhasePassiveSelection:
		cmds = []sim.Command{
			{Type: sim.CommandSelectPassive, Ref: offers.Passives[0].ID},
			{Type: sim.CommandConfirmPassive},
		}
	}
	if offers.ShopOpen && !offers.Shop[0].Empty() {
		cmds = append([]sim.Command{{Type: sim.CommandBuyShopItem, Slot: 0}}, cmds...)
	}
	if err := g.Apply(cmds); err != nil {
		t.Fatalf("apply choices: %v", err)
	}
}

func runHarness(t *testing.T) harnessOutcome {
	t.Helper()
	cfg := DefaultConfig()
	cfg.World.Seed = harnessSeed
	cfg.World.LayerDurationMs = harnessLayerMs
	g := New(cfg, Deps{})

	hasher := sha256.New()
	outcome := harnessOutcome{}
	for tick := 0; tick < harnessTicks; tick++ {
		result := g.Tick(harnessInput(tick), harnessTickMs)
		if result.Transition != nil {
			outcome.Transitions++
		}
		for g.Controller().Phase() != layers.PhaseCombat {
			resolveChoices(t, g)
		}
		if tick%harnessHashEvery == 0 {
			snap := g.Snapshot()
			data, err := json.Marshal(struct {
				World  world.Snapshot
				Offers layers.Offers
			}{snap.World, snap.Offers})
			if err != nil {
				t.Fatalf("marshal snapshot at tick %d: %v", tick, err)
			}
			hasher.Write(data)
		}
	}
	state := g.State()
	outcome.Checksum = hex.EncodeToString(hasher.Sum(nil))
	outcome.Layer = state.Layer
	outcome.Score = state.Score
	outcome.GameOver = state.GameOver
	return outcome
}

func TestDeterminismHarnessReplays(t *testing.T) {
	first := runHarness(t)
	second := runHarness(t)
	if first != second {
		t.Fatalf("replay drift: %+v vs %+v", first, second)
	}
	if first.Transitions == 0 && !first.GameOver {
		t.Fatalf("expected the harness to clear at least one layer: %+v", first)
	}
	t.Logf("determinism harness: checksum=%s layer=%d score=%d transitions=%d", first.Checksum, first.Layer, first.Score, first.Transitions)
}

func quietConfig(layer int) Config {
	cfg := DefaultConfig()
	cfg.World.StartLayer = layer
	cfg.World.LayerDurationMs = 1000
	cfg.Sim.DisableSpawns = true
	return cfg
}

func TestBossKillUnlocksBossRewards(t *testing.T) {
	g := New(quietConfig(5), Deps{})
	state := g.State()
	boss := world.NewEnemy(state.NextEnemyID(), world.ArchetypeBoss, 5, world.Vec2{X: 700, Y: 100}, nil)
	boss.Health = 0
	state.Enemies = []*world.Enemy{boss}

	first := g.Tick(sim.Input{}, 16)
	if !first.Step.Has(sim.EventBossKilled) {
		t.Fatalf("expected a boss kill, got %+v", first.Step.Events)
	}
	cleared := g.Tick(sim.Input{}, 1000)
	if cleared.Transition == nil || !cleared.Transition.BossKill || cleared.Transition.Phase != layers.PhaseBossReward {
		t.Fatalf("expected the boss reward phase, got %+v", cleared.Transition)
	}

	offers := g.Snapshot().Offers
	if len(offers.BossRewards) != layers.BossOfferCount {
		t.Fatalf("expected %d boss rewards, got %d", layers.BossOfferCount, len(offers.BossRewards))
	}
	for _, offer := range offers.BossRewards {
		if offer.Rarity != rewards.RarityLegendary {
			t.Fatalf("expected legendary offers, got %s", offer.Rarity)
		}
	}
	resolveChoices(t, g)
	resolveChoices(t, g)
	if state.Layer != 6 || g.Controller().Phase() != layers.PhaseCombat {
		t.Fatalf("expected layer 6 in combat, got %d/%s", state.Layer, g.Controller().Phase())
	}
	if len(state.Player.Acquired) != 2 || state.Player.Acquired[0] != offers.BossRewards[0].ID {
		t.Fatalf("unexpected build %v", state.Player.Acquired)
	}
}

func TestGameOverSubmitsRecordOnce(t *testing.T) {
	var records []session.RunRecord
	submitter := session.SubmitterFunc(func(_ context.Context, record session.RunRecord) error {
		records = append(records, record)
		return nil
	})
	g := New(quietConfig(1), Deps{Submitter: submitter})
	state := g.State()
	state.Player.Health = 0.5
	state.Player.Acquired = []string{"damage"}
	state.Enemies = []*world.Enemy{
		world.NewEnemy(state.NextEnemyID(), world.ArchetypeNormal, 1, state.Player.Position.Add(world.Vec2{X: 5}), nil),
	}

	result := g.Tick(sim.Input{}, 50)
	g.Tick(sim.Input{}, 50)

	if !result.Step.Has(sim.EventGameOver) {
		t.Fatalf("expected game over")
	}
	if len(records) != 1 {
		t.Fatalf("expected one submission, got %d", len(records))
	}
	record := records[0]
	if !record.GameOver || record.SessionID != g.SessionID() || !session.ValidSessionID(record.SessionID) {
		t.Fatalf("unexpected record %+v", record)
	}
	if len(record.Build) != 1 || record.Build[0] != "damage" || record.Seed != world.DefaultSeed {
		t.Fatalf("unexpected record build/seed %+v", record)
	}
}

func TestSubmitFailureDoesNotTouchState(t *testing.T) {
	var logged int
	deps := Deps{Submitter: session.SubmitterFunc(func(context.Context, session.RunRecord) error {
		return errors.New("offline")
	})}
	deps.Logger = telemetry.LoggerFunc(func(string, ...any) { logged++ })
	g := New(quietConfig(1), deps)
	state := g.State()
	state.Player.Health = 0.1
	state.Enemies = []*world.Enemy{
		world.NewEnemy(state.NextEnemyID(), world.ArchetypeNormal, 1, state.Player.Position, nil),
	}
	g.Tick(sim.Input{}, 50)
	if !state.GameOver || logged != 1 {
		t.Fatalf("expected game over with one logged failure, got over=%v logged=%d", state.GameOver, logged)
	}
}

func TestHandleCommands(t *testing.T) {
	memory := sinks.NewMemorySink()
	deps := Deps{}
	deps.Publisher = memory
	g := New(quietConfig(1), deps)
	state := g.State()

	if err := g.Handle(sim.Command{Type: sim.CommandPause}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	before := state.Player.Position
	if step := g.Tick(sim.Input{Right: true}, 100).Step; !step.Skipped || state.Player.Position != before {
		t.Fatalf("paused tick moved the player")
	}
	if err := g.Handle(sim.Command{Type: sim.CommandResume}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := g.Handle(sim.Command{Type: sim.CommandInput, Input: &sim.Input{Down: true}}); err != nil {
		t.Fatalf("input: %v", err)
	}
	g.Step(100)
	if state.Player.Position.Y <= before.Y {
		t.Fatalf("expected the held input to move the player down")
	}

	if err := g.Apply([]sim.Command{{Type: sim.CommandConfirmPassive}}); err != nil {
		t.Fatalf("rejections must not fail a batch: %v", err)
	}
	if err := g.Handle(sim.Command{Type: "Teleport"}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if err := g.Apply([]sim.Command{{Type: "Teleport"}}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected Apply to surface unknown commands, got %v", err)
	}

	if err := g.Handle(sim.Command{Type: sim.CommandResize, Resize: &sim.ResizeCommand{Width: 400, Height: 300}}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if !g.State().Bounds.Contains(g.State().Player.Position) {
		t.Fatalf("expected the player pulled inside the new bounds")
	}

	if err := g.Handle(sim.Command{Type: sim.CommandNewGame, Seed: "other"}); err != nil {
		t.Fatalf("new game: %v", err)
	}
	fresh := g.State()
	if fresh == state || fresh.Seed != "other" || fresh.Tick != 0 {
		t.Fatalf("expected a fresh aggregate seeded with other, got seed %q tick %d", fresh.Seed, fresh.Tick)
	}
	started := memory.OfType(lifecycle.EventGameStarted)
	if len(started) != 2 || started[1].SessionID != g.SessionID() {
		t.Fatalf("expected two session-stamped start events, got %d", len(started))
	}
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	data := []byte(`
world:
  layerDurationMs: 45000
sim:
  schedule: random
rewards:
  bossCandidates:
    5: 4
  prices:
    legendary: 300
loop:
  tickRate: 30
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.World.LayerDurationMs != 45000 || cfg.World.Seed != world.DefaultSeed {
		t.Fatalf("unexpected world config %+v", cfg.World)
	}
	if cfg.Sim.Schedule != sim.ScheduleRandom {
		t.Fatalf("expected random schedule, got %s", cfg.Sim.Schedule)
	}
	tuning := cfg.Rewards.Normalized()
	if tuning.BossCandidateCount(5) != 4 || tuning.BossCandidateCount(10) != 4 {
		t.Fatalf("unexpected boss schedule %+v", tuning.BossCandidates)
	}
	if tuning.Prices[rewards.RarityLegendary] != 300 || tuning.Prices[rewards.RarityAttribute] != 25 {
		t.Fatalf("unexpected prices %+v", tuning.Prices)
	}
	if cfg.Loop.TickRate != 30 {
		t.Fatalf("expected tick rate 30, got %d", cfg.Loop.TickRate)
	}

	if _, err := ParseConfig([]byte("world: [")); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil || cfg.World.LayerDurationMs != world.DefaultLayerDurationMs {
		t.Fatalf("expected defaults for an empty path, got %+v %v", cfg.World, err)
	}
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("world:\n  seed: file_seed\n"), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	cfg, err = LoadConfig(path)
	if err != nil || cfg.World.Seed != "file_seed" {
		t.Fatalf("expected file_seed, got %+v %v", cfg.World, err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
