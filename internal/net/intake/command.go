package intake

import (
	"time"

	"layer-survivors/server/internal/net/proto"
	"layer-survivors/server/internal/sim"
)

// CommandRejectInvalid marks a message that does not map onto a command.
const CommandRejectInvalid = "invalid_command"

// Queue is the staging side of a sim.Loop.
type Queue interface {
	Enqueue(sim.Command) (bool, string)
}

type CommandContext struct {
	Queue Queue
	Tick  func() uint64
	Now   func() time.Time
}

// StageClientCommand validates msg and stages the command it carries for the
// next tick. The reason is empty when the command was accepted.
func StageClientCommand(ctx CommandContext, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, CommandRejectInvalid
	}

	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Queue == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Queue.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}

// Retryable reports whether a rejection may succeed on a later tick.
func Retryable(reason string) bool {
	return reason == sim.CommandRejectQueueLimit || reason == sim.CommandRejectQueueFull
}
