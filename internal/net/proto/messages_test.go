package proto

import (
	"encoding/json"
	"testing"

	"layer-survivors/server/internal/game"
	"layer-survivors/server/internal/sim"
)

func intPtr(v int) *int { return &v }

func TestClientCommand(t *testing.T) {
	cases := []struct {
		name string
		msg  ClientMessage
		want sim.CommandType
		ok   bool
	}{
		{"input", ClientMessage{Type: TypeInput, Up: true, Left: true}, sim.CommandInput, true},
		{"select passive", ClientMessage{Type: TypeSelectPassive, Ref: "armor"}, sim.CommandSelectPassive, true},
		{"select passive without ref", ClientMessage{Type: TypeSelectPassive}, "", false},
		{"confirm passive", ClientMessage{Type: TypeConfirmPassive}, sim.CommandConfirmPassive, true},
		{"select boss reward", ClientMessage{Type: TypeSelectBossReward, Ref: "execute"}, sim.CommandSelectBossReward, true},
		{"confirm boss reward", ClientMessage{Type: TypeConfirmBossReward}, sim.CommandConfirmBossReward, true},
		{"buy slot zero", ClientMessage{Type: TypeBuyShopItem, Slot: intPtr(0)}, sim.CommandBuyShopItem, true},
		{"buy without slot", ClientMessage{Type: TypeBuyShopItem}, "", false},
		{"toggle lock", ClientMessage{Type: TypeToggleShopLock, Slot: intPtr(2)}, sim.CommandToggleShopLock, true},
		{"refresh", ClientMessage{Type: TypeRefreshShop}, sim.CommandRefreshShop, true},
		{"pause", ClientMessage{Type: TypePause}, sim.CommandPause, true},
		{"resume", ClientMessage{Type: TypeResume}, sim.CommandResume, true},
		{"new game", ClientMessage{Type: TypeNewGame, Seed: "abc"}, sim.CommandNewGame, true},
		{"resize", ClientMessage{Type: TypeResize, Width: 1024, Height: 768}, sim.CommandResize, true},
		{"resize to zero", ClientMessage{Type: TypeResize}, "", false},
		{"heartbeat is not a command", ClientMessage{Type: TypeHeartbeat}, "", false},
		{"unknown", ClientMessage{Type: "teleport"}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := ClientCommand(tc.msg)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if cmd.Type != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, cmd.Type)
			}
		})
	}

	cmd, _ := ClientCommand(ClientMessage{Type: TypeInput, Up: true, Left: true})
	if cmd.Input == nil || !cmd.Input.Up || !cmd.Input.Left || cmd.Input.Down {
		t.Fatalf("unexpected input payload %+v", cmd.Input)
	}
	cmd, _ = ClientCommand(ClientMessage{Type: TypeToggleShopLock, Slot: intPtr(2)})
	if cmd.Slot != 2 {
		t.Fatalf("expected slot 2, got %d", cmd.Slot)
	}
	cmd, _ = ClientCommand(ClientMessage{Type: TypeNewGame, Seed: "abc"})
	if cmd.Seed != "abc" {
		t.Fatalf("expected seed abc, got %q", cmd.Seed)
	}
}

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"buyShopItem","slot":0,"seq":7}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Ver != Version || msg.Seq() != 7 || msg.Slot == nil || *msg.Slot != 0 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if _, err := DecodeClientMessage([]byte(`{"ver":2,"type":"pause"}`)); err == nil {
		t.Fatalf("expected a version error")
	}
	if _, err := DecodeClientMessage([]byte(`{`)); err == nil {
		t.Fatalf("expected a syntax error")
	}
	if (ClientMessage{}).Seq() != 0 {
		t.Fatalf("expected zero seq when absent")
	}
}

func TestEncodeFrames(t *testing.T) {
	data, err := EncodeCommandReject(CommandReject{Seq: 3, Reason: "queue_limit", Retry: true})
	if err != nil {
		t.Fatalf("encode reject: %v", err)
	}
	var reject map[string]any
	if err := json.Unmarshal(data, &reject); err != nil {
		t.Fatalf("decode reject: %v", err)
	}
	if reject["type"] != TypeCommandReject || reject["reason"] != "queue_limit" || reject["retry"] != true {
		t.Fatalf("unexpected reject frame %s", data)
	}

	data, err = EncodeCommandAck(CommandAck{Seq: 3})
	if err != nil {
		t.Fatalf("encode ack: %v", err)
	}
	if string(data) != `{"ver":1,"type":"commandAck","seq":3}` {
		t.Fatalf("unexpected ack frame %s", data)
	}

	data, err = EncodeState(StateV1{Tick: 9, Snapshot: game.Snapshot{SessionID: "s"}})
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	var state struct {
		Ver      int    `json:"ver"`
		Type     string `json:"type"`
		Tick     uint64 `json:"t"`
		Snapshot struct {
			SessionID string `json:"sessionId"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Ver != Version || state.Type != TypeState || state.Tick != 9 || state.Snapshot.SessionID != "s" {
		t.Fatalf("unexpected state frame %s", data)
	}
}
