package session

import (
	"context"
	"sync/atomic"
	"time"

	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging"
	"layer-survivors/server/logging/network"
)

const (
	DefaultQueueCapacity = 32

	submitDroppedMetricKey = "session_submit_dropped_total"
	submitFailedMetricKey  = "session_submit_failed_total"
)

// AsyncConfig tunes the background submitter.
type AsyncConfig struct {
	Capacity  int
	Timeout   time.Duration
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
}

// AsyncSubmitter queues records for a background worker so callers on the
// tick path never wait on the network. A full queue drops the record.
type AsyncSubmitter struct {
	next    Submitter
	cfg     AsyncConfig
	queue   chan RunRecord
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewAsyncSubmitter wraps next. Run must be called to drain the queue.
func NewAsyncSubmitter(next Submitter, cfg AsyncConfig) *AsyncSubmitter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultQueueCapacity
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSubmitTimeout
	}
	return &AsyncSubmitter{
		next:  next,
		cfg:   cfg,
		queue: make(chan RunRecord, cfg.Capacity),
	}
}

// Submit enqueues record without blocking. It never returns an error; a
// dropped record is logged.
func (a *AsyncSubmitter) Submit(ctx context.Context, record RunRecord) error {
	if a == nil {
		return nil
	}
	record.Build = append([]string(nil), record.Build...)
	select {
	case a.queue <- record:
	default:
		count := a.dropped.Add(1)
		telemetry.Count(a.cfg.Metrics, submitDroppedMetricKey)
		telemetry.Logf(a.cfg.Logger, "[session] submit queue full, dropped record %s (total=%d)", record.SessionID, count)
		network.SubmitFailed(ctx, a.cfg.Publisher, sessionRef(record), network.SubmitFailedPayload{
			Error:   "queue full",
			Dropped: true,
		}, nil)
	}
	return nil
}

// Run delivers queued records until ctx is cancelled.
func (a *AsyncSubmitter) Run(ctx context.Context) error {
	if a == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case record := <-a.queue:
			a.deliver(ctx, record)
		}
	}
}

func (a *AsyncSubmitter) deliver(ctx context.Context, record RunRecord) {
	if a.next == nil {
		return
	}
	submitCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	err := a.next.Submit(submitCtx, record)
	if err == nil {
		return
	}
	a.failed.Add(1)
	telemetry.Count(a.cfg.Metrics, submitFailedMetricKey)
	telemetry.Logf(a.cfg.Logger, "[session] submit %s failed: %v", record.SessionID, err)
	network.SubmitFailed(ctx, a.cfg.Publisher, sessionRef(record), network.SubmitFailedPayload{Error: err.Error()}, nil)
}

// Pending returns the number of queued records.
func (a *AsyncSubmitter) Pending() int {
	if a == nil {
		return 0
	}
	return len(a.queue)
}

// Dropped returns how many records were discarded because the queue was full.
func (a *AsyncSubmitter) Dropped() uint64 {
	if a == nil {
		return 0
	}
	return a.dropped.Load()
}

// Failed returns how many deliveries returned an error.
func (a *AsyncSubmitter) Failed() uint64 {
	if a == nil {
		return 0
	}
	return a.failed.Load()
}

func sessionRef(record RunRecord) logging.EntityRef {
	return logging.EntityRef{ID: record.SessionID, Kind: logging.EntityKindSession}
}
