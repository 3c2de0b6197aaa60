package ws

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"layer-survivors/server/internal/game"
	"layer-survivors/server/internal/net/intake"
	"layer-survivors/server/internal/net/proto"
	"layer-survivors/server/internal/sim"
	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging"
	"layer-survivors/server/logging/network"
)

const (
	sendDroppedMetricKey = "ws_send_dropped_total"
)

// session is the actor for one connection. The loop goroutine is the only
// writer of the game; the read goroutine only stages commands and the write
// goroutine is the only writer of the connection.
type session struct {
	conn          *websocket.Conn
	game          *game.Game
	loop          *sim.Loop
	send          chan []byte
	logger        telemetry.Logger
	metrics       telemetry.Metrics
	pub           logging.Publisher
	writeTimeout  time.Duration
	snapshotEvery uint64

	tick    atomic.Uint64
	dropped atomic.Uint64
	lastSeq uint64
}

func newSession(cfg HandlerConfig, seed string, conn *websocket.Conn) *session {
	gameCfg := cfg.Game
	if seed != "" {
		gameCfg.World.Seed = seed
	}
	s := &session{
		conn:          conn,
		send:          make(chan []byte, cfg.SendBuffer),
		logger:        cfg.Deps.Logger,
		metrics:       cfg.Deps.Metrics,
		writeTimeout:  cfg.WriteTimeout,
		snapshotEvery: uint64(cfg.SnapshotEvery),
	}
	s.game = game.New(gameCfg, cfg.Deps)
	s.pub = logging.WithSession(cfg.Deps.Publisher, s.game.SessionID())
	s.loop = sim.NewLoop(s.game, gameCfg.Loop, sim.LoopHooks{AfterStep: s.afterStep})
	return s
}

func (s *session) ref() logging.EntityRef {
	return logging.EntityRef{ID: s.game.SessionID(), Kind: logging.EntityKindSession}
}

// serve blocks until the client disconnects.
func (s *session) serve(remote string) {
	network.SessionOpened(context.Background(), s.pub, s.ref(), network.SessionOpenedPayload{
		Seed:   s.game.State().Seed,
		Remote: remote,
	}, nil)

	initial, err := proto.EncodeState(proto.StateV1{
		Tick:       s.game.State().Tick,
		ServerTime: time.Now().UnixMilli(),
		Snapshot:   s.game.Snapshot(),
		Resync:     true,
	})
	if err != nil {
		s.logf("[ws] failed to marshal initial state for %s: %v", s.game.SessionID(), err)
		s.conn.Close()
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		s.conn.Close()
		return
	}

	stop := make(chan struct{})
	loopDone := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.loop.Run(stop)
	}()
	go func() {
		defer close(writerDone)
		s.writePump()
	}()

	reason := s.readPump()

	close(stop)
	<-loopDone
	close(s.send)
	<-writerDone
	s.conn.Close()

	network.SessionClosed(context.Background(), s.pub, s.ref(), network.SessionClosedPayload{Reason: reason}, nil)
}

func (s *session) readPump() string {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "client_closed"
			}
			return "read_error"
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			s.logf("[ws] discarding malformed message from %s: %v", s.game.SessionID(), err)
			continue
		}

		if msg.Type == proto.TypeHeartbeat {
			now := time.Now()
			var rtt int64
			if msg.SentAt > 0 {
				rtt = now.UnixMilli() - msg.SentAt
			}
			s.encodeAndQueue(proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt,
			}))
			continue
		}

		seq := msg.Seq()
		if seq > 0 && seq <= s.lastSeq {
			s.encodeAndQueue(proto.EncodeCommandAck(proto.CommandAck{Seq: seq}))
			continue
		}

		cmd, ok, reason := intake.StageClientCommand(intake.CommandContext{
			Queue: s.loop,
			Tick:  s.tick.Load,
		}, msg)
		if !ok {
			if reason == intake.CommandRejectInvalid {
				s.logf("[ws] unknown message type %q from %s", msg.Type, s.game.SessionID())
			}
			if seq > 0 {
				s.encodeAndQueue(proto.EncodeCommandReject(proto.CommandReject{
					Seq:    seq,
					Reason: reason,
					Retry:  intake.Retryable(reason),
					Tick:   s.tick.Load(),
				}))
			}
			continue
		}
		if seq > 0 {
			s.lastSeq = seq
			s.encodeAndQueue(proto.EncodeCommandAck(proto.CommandAck{Seq: seq, Tick: cmd.OriginTick}))
		}
	}
}

func (s *session) writePump() {
	for data := range s.send {
		if s.writeTimeout > 0 {
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logf("[ws] write to %s failed: %v", s.game.SessionID(), err)
			// Unblocks readPump; remaining frames are drained below.
			s.conn.Close()
			for range s.send {
			}
			return
		}
	}
}

// afterStep runs on the loop goroutine, so reading the game here is safe.
func (s *session) afterStep(result sim.LoopStepResult) {
	s.tick.Store(result.Step.Tick)
	if result.Err != nil {
		s.logf("[ws] session %s tick %d: %v", s.game.SessionID(), result.Step.Tick, result.Err)
	}
	if len(result.Commands) == 0 && len(result.Step.Events) == 0 &&
		(s.snapshotEvery > 1 && result.Tick%s.snapshotEvery != 0) {
		return
	}
	s.encodeAndQueue(proto.EncodeState(proto.StateV1{
		Tick:       result.Step.Tick,
		ServerTime: result.Now.UnixMilli(),
		Snapshot:   s.game.Snapshot(),
		Events:     result.Step.Events,
	}))
}

// encodeAndQueue hands a frame to the writer without blocking. Frames are
// dropped when the client cannot keep up.
func (s *session) encodeAndQueue(data []byte, err error) {
	if err != nil {
		s.logf("[ws] failed to marshal frame for %s: %v", s.game.SessionID(), err)
		return
	}
	select {
	case s.send <- data:
	default:
		count := s.dropped.Add(1)
		if s.metrics != nil {
			s.metrics.Add(sendDroppedMetricKey, 1)
		}
		if count&(count-1) == 0 {
			s.logf("[ws] send buffer full for %s, dropped=%d", s.game.SessionID(), count)
		}
	}
}

func (s *session) logf(format string, args ...any) {
	telemetry.Logf(s.logger, format, args...)
}
