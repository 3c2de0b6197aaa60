package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"layer-survivors/server/internal/game"
	"layer-survivors/server/internal/net/intake"
	"layer-survivors/server/internal/net/proto"
	"layer-survivors/server/logging/network"
	"layer-survivors/server/logging/sinks"
)

type frame struct {
	Type       string `json:"type"`
	Seq        uint64 `json:"seq"`
	Reason     string `json:"reason"`
	ClientTime int64  `json:"clientTime"`
	Resync     bool   `json:"resync"`
	Snapshot   struct {
		SessionID string `json:"sessionId"`
		World     struct {
			Seed   string `json:"seed"`
			Paused bool   `json:"paused"`
			Layer  int    `json:"layer"`
		} `json:"world"`
	} `json:"snapshot"`
}

func dial(t *testing.T, handler *Handler, seed string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	parsed, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	parsed.Scheme = "ws"
	query := parsed.Query()
	query.Set("seed", seed)
	parsed.RawQuery = query.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(parsed.String(), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write %s: %v", payload, err)
	}
}

// readUntil skips frames until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, what string, match func(frame) bool) frame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		var f frame
		if err := json.Unmarshal(payload, &f); err != nil {
			t.Fatalf("failed to decode frame %s: %v", payload, err)
		}
		if match(f) {
			return f
		}
	}
}

func newTestHandler(memory *sinks.MemorySink) *Handler {
	deps := game.Deps{}
	deps.Publisher = memory
	return NewHandler(HandlerConfig{Game: game.DefaultConfig(), Deps: deps, SnapshotEvery: 1})
}

func TestSessionSendsInitialState(t *testing.T) {
	handler := newTestHandler(sinks.NewMemorySink())
	conn := dial(t, handler, "test_seed")

	first := readUntil(t, conn, "initial state", func(f frame) bool { return true })
	if first.Type != proto.TypeState || !first.Resync {
		t.Fatalf("expected a resync state frame first, got %+v", first)
	}
	if first.Snapshot.World.Seed != "test_seed" || first.Snapshot.World.Layer != 1 {
		t.Fatalf("unexpected initial world %+v", first.Snapshot.World)
	}
	if first.Snapshot.SessionID == "" {
		t.Fatalf("expected a session id")
	}
}

func TestSessionAcksStagesAndRejects(t *testing.T) {
	memory := sinks.NewMemorySink()
	handler := newTestHandler(memory)
	conn := dial(t, handler, "test_seed")
	readUntil(t, conn, "initial state", func(f frame) bool { return f.Type == proto.TypeState })

	send(t, conn, `{"type":"pause","seq":1}`)
	readUntil(t, conn, "ack 1", func(f frame) bool { return f.Type == proto.TypeCommandAck && f.Seq == 1 })
	readUntil(t, conn, "paused state", func(f frame) bool { return f.Type == proto.TypeState && f.Snapshot.World.Paused })

	send(t, conn, `{"type":"pause","seq":1}`)
	readUntil(t, conn, "duplicate ack", func(f frame) bool { return f.Type == proto.TypeCommandAck && f.Seq == 1 })

	send(t, conn, `{"type":"buyShopItem","seq":2}`)
	reject := readUntil(t, conn, "reject 2", func(f frame) bool { return f.Type == proto.TypeCommandReject })
	if reject.Seq != 2 || reject.Reason != intake.CommandRejectInvalid {
		t.Fatalf("unexpected reject %+v", reject)
	}

	send(t, conn, `{"type":"heartbeat","sentAt":123}`)
	beat := readUntil(t, conn, "heartbeat", func(f frame) bool { return f.Type == "heartbeat" })
	if beat.ClientTime != 123 {
		t.Fatalf("expected the client time echoed, got %d", beat.ClientTime)
	}

	if handler.Active() != 1 || handler.Opened() != 1 {
		t.Fatalf("expected one active session, got %d/%d", handler.Active(), handler.Opened())
	}
	if len(memory.OfType(network.EventSessionOpened)) != 1 {
		t.Fatalf("expected a session opened event")
	}
}

func TestSessionClosesCleanly(t *testing.T) {
	memory := sinks.NewMemorySink()
	handler := newTestHandler(memory)
	conn := dial(t, handler, "")
	readUntil(t, conn, "initial state", func(f frame) bool { return f.Type == proto.TypeState })

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for handler.Active() != 0 || len(memory.OfType(network.EventSessionClosed)) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("session did not shut down: active=%d", handler.Active())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
