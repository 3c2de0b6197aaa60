package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"layer-survivors/server/internal/layers"
	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/session"
	"layer-survivors/server/internal/sim"
	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/internal/world"
	"layer-survivors/server/logging"
	"layer-survivors/server/logging/lifecycle"
)

var ErrUnknownCommand = errors.New("game: unknown command")

var _ sim.Core = (*Game)(nil)

// Deps carries the engine dependencies plus the run submitter.
type Deps struct {
	sim.Deps
	Submitter session.Submitter
}

// Snapshot is the read-only view handed to clients.
type Snapshot struct {
	SessionID string         `json:"sessionId"`
	World     world.Snapshot `json:"world"`
	Offers    layers.Offers  `json:"offers"`
}

// TickResult is the outcome of one tick: the engine summary plus the layer
// transition it triggered, if any.
type TickResult struct {
	Step       sim.StepResult     `json:"step"`
	Transition *layers.Transition `json:"transition,omitempty"`
}

// Game is the single writer for one run. It owns the aggregate, the engine,
// the layer controller and the shared random source. It is not safe for
// concurrent use.
type Game struct {
	cfg        Config
	deps       Deps
	generator  *rewards.Generator
	state      *world.GameState
	src        *rng.Seeded
	engine     *sim.Engine
	controller *layers.Controller

	sessionID string
	input     sim.Input
	submitted bool
}

// New builds a game for cfg and starts the first run.
func New(cfg Config, deps Deps) *Game {
	sessionID := session.NewSessionID()
	if deps.Publisher != nil {
		deps.Publisher = logging.WithSession(deps.Publisher, sessionID)
	}
	g := &Game{
		cfg:       cfg,
		deps:      deps,
		generator: rewards.NewGenerator(rewards.MustLoadDefault(), cfg.Rewards, deps.Publisher),
		sessionID: sessionID,
	}
	g.start(cfg.World.Seed)
	return g
}

func (g *Game) start(seed string) {
	worldCfg := g.cfg.World
	if seed != "" {
		worldCfg.Seed = seed
	}
	g.state = world.NewGameState(worldCfg)
	g.src = rng.FromString(g.state.Seed)
	if g.engine == nil {
		g.engine = sim.NewEngine(g.state, g.cfg.Sim, g.src, g.deps.Deps)
		g.controller = layers.NewController(g.state, g.generator, g.src, g.deps.Publisher)
	} else {
		g.engine.Reset(g.state, g.src)
		g.controller.Reset(g.state, g.src)
	}
	g.input = sim.Input{}
	g.submitted = false
	lifecycle.GameStarted(context.Background(), g.deps.Publisher, g.state.Tick, lifecycle.GameStartedPayload{
		Seed:  g.state.Seed,
		Layer: g.state.Layer,
	}, nil)
}

// NewGame discards the current run and starts over. An empty seed reuses the
// configured season seed.
func (g *Game) NewGame(seed string) {
	g.start(seed)
}

// SessionID identifies this game across runs.
func (g *Game) SessionID() string { return g.sessionID }

// State exposes the aggregate. Callers outside the owning goroutine should
// use Snapshot.
func (g *Game) State() *world.GameState { return g.state }

// Controller exposes the layer controller.
func (g *Game) Controller() *layers.Controller { return g.controller }

// Deps implements sim.Core.
func (g *Game) Deps() sim.Deps { return g.deps.Deps }

// Tick holds input and advances the run by deltaMs.
func (g *Game) Tick(input sim.Input, deltaMs float64) TickResult {
	g.input = input
	return g.advance(deltaMs)
}

// Step implements sim.Core using the most recently held input.
func (g *Game) Step(deltaMs float64) sim.StepResult {
	return g.advance(deltaMs).Step
}

func (g *Game) advance(deltaMs float64) TickResult {
	result := TickResult{Step: g.engine.Step(g.input, deltaMs)}
	for _, event := range result.Step.Events {
		switch event.Kind {
		case sim.EventBossKilled:
			g.controller.RecordBossDefeat(event.Layer)
		case sim.EventLayerCleared:
			transition, err := g.controller.OnLayerCleared(event.Layer, g.state.ElapsedMs)
			if err != nil {
				g.logf("[game] layer %d cleared: %v", event.Layer, err)
				continue
			}
			result.Transition = &transition
		case sim.EventGameOver:
			g.submit()
		}
	}
	return result
}

// Apply implements sim.Core. Rejected choices are logged by the controller
// and do not fail the batch.
func (g *Game) Apply(cmds []sim.Command) error {
	var errs []error
	for _, cmd := range cmds {
		err := g.Handle(cmd)
		var rejection layers.Rejection
		if err == nil || errors.As(err, &rejection) {
			continue
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Handle dispatches one command.
func (g *Game) Handle(cmd sim.Command) error {
	switch cmd.Type {
	case sim.CommandInput:
		if cmd.Input != nil {
			g.input = *cmd.Input
		}
		return nil
	case sim.CommandSelectPassive:
		return g.controller.SelectPassive(cmd.Ref)
	case sim.CommandConfirmPassive:
		return g.controller.ConfirmPassiveSelection()
	case sim.CommandSelectBossReward:
		return g.controller.SelectBossReward(cmd.Ref)
	case sim.CommandConfirmBossReward:
		return g.controller.ConfirmBossRewardSelection()
	case sim.CommandBuyShopItem:
		return g.controller.BuyShopItem(cmd.Slot)
	case sim.CommandToggleShopLock:
		return g.controller.ToggleShopItemLock(cmd.Slot)
	case sim.CommandRefreshShop:
		return g.controller.RefreshAllShopItems()
	case sim.CommandPause:
		g.state.Paused = true
		return nil
	case sim.CommandResume:
		g.state.Paused = false
		return nil
	case sim.CommandNewGame:
		g.NewGame(cmd.Seed)
		return nil
	case sim.CommandResize:
		if cmd.Resize != nil {
			g.engine.Resize(cmd.Resize.Width, cmd.Resize.Height)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// Snapshot copies the aggregate and the current offers.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		SessionID: g.sessionID,
		World:     g.state.Snapshot(),
		Offers:    g.controller.Offers(),
	}
}

// Record returns the persisted summary of the current run.
func (g *Game) Record() session.RunRecord {
	player := g.state.Player
	return session.RunRecord{
		SessionID:  g.sessionID,
		Seed:       g.state.Seed,
		Layer:      g.state.Layer,
		Score:      g.state.Score,
		ElapsedMs:  g.state.ElapsedMs,
		Build:      append([]string(nil), player.Acquired...),
		Gold:       player.Gold,
		Experience: player.Experience,
		GameOver:   g.state.GameOver,
		RecordedAt: g.now(),
	}
}

func (g *Game) submit() {
	if g.submitted || g.deps.Submitter == nil {
		return
	}
	g.submitted = true
	if err := g.deps.Submitter.Submit(context.Background(), g.Record()); err != nil {
		g.logf("[game] submit run %s: %v", g.sessionID, err)
	}
}

func (g *Game) now() time.Time {
	if g.deps.Clock != nil {
		return g.deps.Clock.Now()
	}
	return time.Now()
}

func (g *Game) logf(format string, args ...any) {
	telemetry.Logf(g.deps.Logger, format, args...)
}
