package intake

import (
	"testing"
	"time"

	"layer-survivors/server/internal/net/proto"
	"layer-survivors/server/internal/sim"
)

type fakeQueue struct {
	enqueueOK     bool
	enqueueReason string
	commands      []sim.Command
}

func (f *fakeQueue) Enqueue(cmd sim.Command) (bool, string) {
	f.commands = append(f.commands, cmd)
	if f.enqueueOK {
		return true, ""
	}
	if f.enqueueReason == "" {
		f.enqueueReason = sim.CommandRejectQueueLimit
	}
	return false, f.enqueueReason
}

func TestStageClientCommandAcceptsInput(t *testing.T) {
	queue := &fakeQueue{enqueueOK: true}
	issuedAt := time.Unix(100, 0)
	ctx := CommandContext{
		Queue: queue,
		Tick:  func() uint64 { return 42 },
		Now:   func() time.Time { return issuedAt },
	}

	cmd, ok, reason := StageClientCommand(ctx, proto.ClientMessage{Type: proto.TypeInput, Right: true})
	if !ok || reason != "" {
		t.Fatalf("expected input to be staged, got ok=%v reason=%q", ok, reason)
	}
	if cmd.OriginTick != 42 || !cmd.IssuedAt.Equal(issuedAt) {
		t.Fatalf("unexpected origin metadata: tick=%d at=%v", cmd.OriginTick, cmd.IssuedAt)
	}
	if len(queue.commands) != 1 || queue.commands[0].Input == nil || !queue.commands[0].Input.Right {
		t.Fatalf("expected the queued command to carry the input, got %+v", queue.commands)
	}
}

func TestStageClientCommandRejectsInvalidMessages(t *testing.T) {
	queue := &fakeQueue{enqueueOK: true}
	_, ok, reason := StageClientCommand(CommandContext{Queue: queue}, proto.ClientMessage{Type: proto.TypeBuyShopItem})
	if ok || reason != CommandRejectInvalid {
		t.Fatalf("expected invalid rejection, got ok=%v reason=%q", ok, reason)
	}
	if len(queue.commands) != 0 {
		t.Fatalf("invalid messages must not reach the queue")
	}
	if Retryable(reason) {
		t.Fatalf("invalid commands are not retryable")
	}
}

func TestStageClientCommandPropagatesQueueRejections(t *testing.T) {
	queue := &fakeQueue{enqueueReason: sim.CommandRejectQueueLimit}
	_, ok, reason := StageClientCommand(CommandContext{Queue: queue}, proto.ClientMessage{Type: proto.TypePause})
	if ok || reason != sim.CommandRejectQueueLimit || !Retryable(reason) {
		t.Fatalf("expected retryable queue limit, got ok=%v reason=%q", ok, reason)
	}

	_, ok, reason = StageClientCommand(CommandContext{}, proto.ClientMessage{Type: proto.TypePause})
	if ok || reason != sim.CommandRejectQueueFull {
		t.Fatalf("expected queue_full without a queue, got ok=%v reason=%q", ok, reason)
	}
}
