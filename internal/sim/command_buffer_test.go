package sim

import "testing"

func TestCommandBufferWraparound(t *testing.T) {
	buffer := NewCommandBuffer(3, nil)
	cmds := []Command{
		{Type: CommandSelectPassive, Ref: "a"},
		{Type: CommandSelectPassive, Ref: "b"},
		{Type: CommandSelectPassive, Ref: "c"},
	}
	for _, cmd := range cmds {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed for %+v", cmd)
		}
	}
	if buffer.Push(Command{Type: CommandPause}) {
		t.Fatalf("expected push to fail when buffer full")
	}
	drained := buffer.Drain()
	if len(drained) != len(cmds) {
		t.Fatalf("expected %d commands, got %d", len(cmds), len(drained))
	}
	for i, cmd := range drained {
		if cmd.Ref != cmds[i].Ref {
			t.Fatalf("expected drain order %v, got %v", cmds[i].Ref, cmd.Ref)
		}
	}
	for _, cmd := range []Command{{Ref: "d"}, {Ref: "e"}} {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed after drain for %+v", cmd)
		}
	}
	wrapped := buffer.Drain()
	if len(wrapped) != 2 {
		t.Fatalf("expected 2 commands after wraparound, got %d", len(wrapped))
	}
	if wrapped[0].Ref != "d" || wrapped[1].Ref != "e" {
		t.Fatalf("unexpected order after wraparound: %+v", wrapped)
	}
}

type recordingMetrics struct {
	added  map[string]uint64
	stored map[string]uint64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{added: map[string]uint64{}, stored: map[string]uint64{}}
}

func (m *recordingMetrics) Add(key string, delta uint64)   { m.added[key] += delta }
func (m *recordingMetrics) Store(key string, value uint64) { m.stored[key] = value }

func TestCommandBufferOverflow(t *testing.T) {
	metrics := newRecordingMetrics()
	buffer := NewCommandBuffer(1, metrics)
	if !buffer.Push(Command{Ref: "one"}) {
		t.Fatalf("expected initial push to succeed")
	}
	if buffer.Push(Command{Ref: "two"}) {
		t.Fatalf("expected push to fail when capacity exceeded")
	}
	if metrics.added[commandBufferOverflowMetricKey] != 1 {
		t.Fatalf("expected one overflow, got %d", metrics.added[commandBufferOverflowMetricKey])
	}
	if metrics.stored[commandBufferOccupancyMetricKey] != 1 {
		t.Fatalf("expected occupancy 1, got %d", metrics.stored[commandBufferOccupancyMetricKey])
	}
	drained := buffer.Drain()
	if len(drained) != 1 || drained[0].Ref != "one" {
		t.Fatalf("unexpected drained commands: %+v", drained)
	}
	if metrics.stored[commandBufferOccupancyMetricKey] != 0 {
		t.Fatalf("expected occupancy reset after drain")
	}
}

func TestCommandBufferCoalescesTrailingInput(t *testing.T) {
	metrics := newRecordingMetrics()
	buffer := NewCommandBuffer(2, metrics)
	for i := 0; i < 5; i++ {
		if !buffer.Push(Command{Type: CommandInput, Input: &Input{Left: i%2 == 0, Right: i%2 == 1}}) {
			t.Fatalf("input %d rejected", i)
		}
	}
	if buffer.Len() != 1 || metrics.added[commandBufferCoalescedMetricKey] != 4 {
		t.Fatalf("expected one staged input and 4 coalesced, got %d/%d", buffer.Len(), metrics.added[commandBufferCoalescedMetricKey])
	}
	if !buffer.Push(Command{Type: CommandSelectPassive, Ref: "armor"}) {
		t.Fatalf("expected room for a choice command")
	}
	// The buffer is full, but the trailing command is not an Input.
	if buffer.Push(Command{Type: CommandInput, Input: &Input{Up: true}}) {
		t.Fatalf("an input after a choice must not overwrite it")
	}

	drained := buffer.Drain()
	if len(drained) != 2 || !drained[0].Input.Left || drained[1].Ref != "armor" {
		t.Fatalf("unexpected drain %+v", drained)
	}
}

func TestCommandBufferStageResultsAndTypeCounts(t *testing.T) {
	buffer := NewCommandBuffer(4, nil)
	steps := []struct {
		cmd  Command
		want PushResult
	}{
		{Command{Type: CommandInput, Input: &Input{Up: true}}, PushStaged},
		{Command{Type: CommandInput, Input: &Input{Down: true}}, PushCoalesced},
		{Command{Type: CommandBuyShopItem, Slot: 0}, PushStaged},
		{Command{Type: CommandBuyShopItem, Slot: 1}, PushStaged},
		{Command{Type: CommandInput, Input: &Input{Left: true}}, PushStaged},
		{Command{Type: CommandPause}, PushRejected},
	}
	for i, step := range steps {
		if got := buffer.Stage(step.cmd); got != step.want {
			t.Fatalf("step %d: expected %d, got %d", i, step.want, got)
		}
	}
	if got := buffer.CountType(CommandBuyShopItem); got != 2 {
		t.Fatalf("expected 2 staged purchases, got %d", got)
	}
	if got := buffer.CountType(CommandInput); got != 2 {
		t.Fatalf("expected 2 input slots, got %d", got)
	}
	buffer.Drain()
	if buffer.CountType(CommandBuyShopItem) != 0 {
		t.Fatalf("expected type counts cleared by drain")
	}
}

func TestNilCommandBuffer(t *testing.T) {
	var buffer *CommandBuffer
	if buffer.Push(Command{}) {
		t.Fatalf("nil buffer accepted a command")
	}
	if buffer.Drain() != nil || buffer.Len() != 0 || buffer.Capacity() != 0 || buffer.CountType(CommandInput) != 0 {
		t.Fatalf("nil buffer should report empty")
	}
}
