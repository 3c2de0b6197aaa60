package sim

import (
	"context"
	"sync"
	"time"

	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging"
	"layer-survivors/server/logging/simulation"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to per-type
	// queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is saturated.
	CommandRejectQueueFull = "queue_full"

	DefaultTickRate        = 60
	DefaultCatchupMaxTicks = 3
	DefaultCommandCapacity = 256
)

// Core is the single writer a Loop drives: it applies staged commands and
// advances the simulation.
type Core interface {
	Apply([]Command) error
	Step(deltaMs float64) StepResult
	Deps() Deps
}

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int `yaml:"tickRate"`
	CatchupMaxTicks int `yaml:"catchupMaxTicks"`
	CommandCapacity int `yaml:"commandCapacity"`
	PerTypeLimit    int `yaml:"perTypeLimit"`
	WarningStep     int `yaml:"warningStep"`
}

func (cfg LoopConfig) normalized() LoopConfig {
	normalized := cfg
	if normalized.TickRate <= 0 {
		normalized.TickRate = DefaultTickRate
	}
	if normalized.CatchupMaxTicks < 1 {
		normalized.CatchupMaxTicks = DefaultCatchupMaxTicks
	}
	if normalized.CommandCapacity <= 0 {
		normalized.CommandCapacity = DefaultCommandCapacity
	}
	if normalized.PerTypeLimit < 0 {
		normalized.PerTypeLimit = 0
	}
	if normalized.WarningStep < 0 {
		normalized.WarningStep = 0
	}
	return normalized
}

// LoopHooks observe the loop without owning any state.
type LoopHooks struct {
	Prepare        func(LoopTickContext)
	AfterStep      func(LoopStepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// LoopTickContext identifies one fixed-timestep tick. Delta is in seconds.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// LoopStepResult is handed to AfterStep once per tick.
type LoopStepResult struct {
	Tick     uint64
	Now      time.Time
	Delta    float64
	Step     StepResult
	Commands []Command
	Err      error

	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	MaxDelta     float64
}

// Loop coordinates command ingestion and the fixed-timestep simulation runner.
type Loop struct {
	core    Core
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	logger  telemetry.Logger
	metrics telemetry.Metrics
	pub     logging.Publisher

	queueMu    sync.Mutex
	dropCounts map[CommandType]uint64

	overrunStreak uint64
}

// NewLoop wraps the provided core with a ring-buffer queue and loop.
func NewLoop(core Core, cfg LoopConfig, hooks LoopHooks) *Loop {
	if core == nil {
		return nil
	}
	cfg = cfg.normalized()
	deps := core.Deps()
	return &Loop{
		core:       core,
		buffer:     NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		hooks:      hooks,
		config:     cfg,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		pub:        deps.Publisher,
		dropCounts: make(map[CommandType]uint64),
	}
}

// Config returns the normalized loop configuration.
func (l *Loop) Config() LoopConfig {
	if l == nil {
		return LoopConfig{}
	}
	return l.config
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// DrainCommands clears the staged command queue without advancing the core.
func (l *Loop) DrainCommands() []Command {
	if l == nil {
		return nil
	}
	return l.drainCommands()
}

// Enqueue stages a command, enforcing per-type throttling and capacity limits.
// The per-type limit counts occupied slots, so held input that coalesces into
// the trailing Input never trips it.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason := ""
	var dropCount uint64
	warnAt := 0
	l.queueMu.Lock()
	limited := l.config.PerTypeLimit > 0 && cmd.Type != CommandInput &&
		l.buffer.CountType(cmd.Type) >= l.config.PerTypeLimit
	switch {
	case limited:
		reason = CommandRejectQueueLimit
		dropCount = l.incrementDropLocked(cmd.Type)
	default:
		switch l.buffer.Stage(cmd) {
		case PushRejected:
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.Type)
		case PushStaged:
			if step := l.config.WarningStep; step > 0 {
				if length := l.buffer.Len(); length >= step && length%step == 0 {
					warnAt = length
				}
			}
		}
	}
	l.queueMu.Unlock()
	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	if warnAt > 0 {
		l.warnQueue(warnAt)
	}
	return true, ""
}

// Advance executes a single simulation step using the staged commands.
func (l *Loop) Advance(ctx LoopTickContext) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	commands := l.drainCommands()
	if l.hooks.Prepare != nil {
		l.hooks.Prepare(ctx)
	}
	err := l.core.Apply(commands)
	step := l.core.Step(ctx.Delta * 1000)
	return LoopStepResult{
		Tick:     ctx.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Step:     step,
		Commands: commands,
		Err:      err,
	}
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	tickRate := l.config.TickRate
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	clock := l.core.Deps().Clock
	if clock == nil {
		clock = logging.SystemClock{}
	}
	last := clock.Now()
	budgetSeconds := 1.0 / float64(tickRate)
	maxDt := budgetSeconds * float64(l.config.CatchupMaxTicks)
	budgetDuration := time.Second / time.Duration(tickRate)
	var tick uint64

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := clock.Now()
			dt := now.Sub(last).Seconds()
			clamped := false
			if dt <= 0 {
				dt = budgetSeconds
			} else if dt > maxDt {
				dt = maxDt
				clamped = true
			}
			last = now
			tick++

			start := clock.Now()
			result := l.Advance(LoopTickContext{Tick: tick, Now: now, Delta: dt})
			result.Duration = clock.Now().Sub(start)
			result.Budget = budgetDuration
			result.ClampedDelta = clamped
			result.MaxDelta = maxDt
			l.checkBudget(result)

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) checkBudget(result LoopStepResult) {
	if result.Budget <= 0 || result.Duration <= result.Budget {
		l.overrunStreak = 0
		return
	}
	l.overrunStreak++
	simulation.TickBudgetOverrun(
		context.Background(),
		l.pub,
		result.Step.Tick,
		simulation.TickBudgetOverrunPayload{
			DurationMillis: result.Duration.Milliseconds(),
			BudgetMillis:   result.Budget.Milliseconds(),
			Ratio:          float64(result.Duration) / float64(result.Budget),
			Streak:         l.overrunStreak,
			ClampedDelta:   result.ClampedDelta,
		},
		nil,
	)
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	return l.buffer.Drain()
}

func (l *Loop) incrementDropLocked(kind CommandType) uint64 {
	count := l.dropCounts[kind] + 1
	l.dropCounts[kind] = count
	return count
}

func (l *Loop) warnQueue(length int) {
	if l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(length)
	}
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	simulation.CommandDropped(
		context.Background(),
		l.pub,
		cmd.OriginTick,
		simulation.CommandDroppedPayload{Command: string(cmd.Type), Reason: reason},
		nil,
	)
	if count > 0 && count&(count-1) == 0 && l.logger != nil {
		l.logger.Printf(
			"[backpressure] dropping command type=%s reason=%s count=%d limit=%d",
			cmd.Type,
			reason,
			count,
			l.config.PerTypeLimit,
		)
	}
}
