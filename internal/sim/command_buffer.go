package sim

import (
	"sync"

	"layer-survivors/server/internal/telemetry"
)

const (
	commandBufferOccupancyMetricKey = "sim_command_buffer_occupancy"
	commandBufferOverflowMetricKey  = "sim_command_buffer_overflow_total"
	commandBufferCoalescedMetricKey = "sim_command_buffer_input_coalesced_total"
)

// PushResult reports what happened to a staged command.
type PushResult uint8

const (
	PushRejected PushResult = iota
	PushStaged
	// PushCoalesced means the command replaced a trailing Input in place.
	PushCoalesced
)

// Accepted reports whether the command will reach the next tick.
func (r PushResult) Accepted() bool { return r != PushRejected }

// CommandBuffer is a fixed-size FIFO ring shared by concurrent producers and a
// single draining consumer.
//
// Input commands carry held directions, not edges, so an Input staged right
// behind another Input overwrites it. A client streaming key state holds at
// most one slot between two choice commands.
type CommandBuffer struct {
	mu      sync.Mutex
	ring    []Command
	head    int
	size    int
	byType  map[CommandType]int
	metrics telemetry.Metrics
}

// NewCommandBuffer allocates a ring of capacity slots (at least one).
func NewCommandBuffer(capacity int, metrics telemetry.Metrics) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandBuffer{
		ring:    make([]Command, capacity),
		byType:  make(map[CommandType]int),
		metrics: metrics,
	}
}

func (b *CommandBuffer) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.ring)
}

// Stage appends cmd, coalescing held input.
func (b *CommandBuffer) Stage(cmd Command) PushResult {
	if b == nil {
		return PushRejected
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if cmd.Type == CommandInput && b.size > 0 {
		last := b.slot(b.size - 1)
		if b.ring[last].Type == CommandInput {
			b.ring[last] = cmd
			telemetry.Count(b.metrics, commandBufferCoalescedMetricKey)
			return PushCoalesced
		}
	}
	if b.size == len(b.ring) {
		telemetry.Count(b.metrics, commandBufferOverflowMetricKey)
		return PushRejected
	}
	b.ring[b.slot(b.size)] = cmd
	b.size++
	b.byType[cmd.Type]++
	b.reportOccupancy()
	return PushStaged
}

// Push is Stage reduced to accepted or not.
func (b *CommandBuffer) Push(cmd Command) bool {
	return b.Stage(cmd).Accepted()
}

// Drain empties the buffer and returns the commands oldest first.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == 0 {
		return nil
	}
	out := make([]Command, b.size)
	for i := range out {
		idx := b.slot(i)
		out[i] = b.ring[idx]
		b.ring[idx] = Command{}
	}
	b.head = b.slot(b.size)
	b.size = 0
	clear(b.byType)
	b.reportOccupancy()
	return out
}

// Len reports the number of occupied slots.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// CountType reports how many slots currently hold commands of kind.
func (b *CommandBuffer) CountType(kind CommandType) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byType[kind]
}

func (b *CommandBuffer) slot(offset int) int {
	return (b.head + offset) % len(b.ring)
}

func (b *CommandBuffer) reportOccupancy() {
	if b.metrics != nil {
		b.metrics.Store(commandBufferOccupancyMetricKey, uint64(b.size))
	}
}
