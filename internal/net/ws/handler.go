package ws

import (
	nethttp "net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"layer-survivors/server/internal/game"
)

const (
	DefaultSnapshotEvery = 3
	DefaultSendBuffer    = 64
	DefaultWriteTimeout  = 5 * time.Second
)

// HandlerConfig is shared by every session the handler opens.
type HandlerConfig struct {
	Game game.Config
	Deps game.Deps

	// SnapshotEvery is the number of ticks between unsolicited snapshots.
	// Ticks that applied commands or produced events always send one.
	SnapshotEvery int
	SendBuffer    int
	WriteTimeout  time.Duration
}

// Handler upgrades requests and runs one game session per connection.
type Handler struct {
	cfg      HandlerConfig
	upgrader websocket.Upgrader
	active   atomic.Int64
	opened   atomic.Uint64
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = DefaultSnapshotEvery
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{cfg: cfg, upgrader: upgrader}
}

// Active reports the number of open sessions.
func (h *Handler) Active() int {
	return int(h.active.Load())
}

// Opened reports the number of sessions opened since start.
func (h *Handler) Opened() uint64 {
	return h.opened.Load()
}

// Handle serves /ws. The optional seed query parameter overrides the season
// seed for this session.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.cfg.Deps.Logger != nil {
			h.cfg.Deps.Logger.Printf("[ws] upgrade failed for %s: %v", r.RemoteAddr, err)
		}
		return
	}

	h.active.Add(1)
	h.opened.Add(1)
	defer h.active.Add(-1)

	newSession(h.cfg, r.URL.Query().Get("seed"), conn).serve(r.RemoteAddr)
}
