package proto

import (
	"encoding/json"
	"fmt"

	"layer-survivors/server/internal/game"
	"layer-survivors/server/internal/sim"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for outbound websocket payloads.
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
	typeState         = "state"
)

// Client message type identifiers.
const (
	TypeInput             = "input"
	TypeSelectPassive     = "selectPassive"
	TypeConfirmPassive    = "confirmPassive"
	TypeSelectBossReward  = "selectBossReward"
	TypeConfirmBossReward = "confirmBossReward"
	TypeBuyShopItem       = "buyShopItem"
	TypeToggleShopLock    = "toggleShopLock"
	TypeRefreshShop       = "refreshShop"
	TypePause             = "pause"
	TypeResume            = "resume"
	TypeNewGame           = "newGame"
	TypeResize            = "resize"
	TypeHeartbeat         = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeState         = typeState
	TypeCommandAck    = typeCommandAck
	TypeCommandReject = typeCommandReject
)

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver        int     `json:"ver,omitempty"`
	Type       string  `json:"type"`
	Up         bool    `json:"up"`
	Down       bool    `json:"down"`
	Left       bool    `json:"left"`
	Right      bool    `json:"right"`
	Ref        string  `json:"ref,omitempty"`
	Slot       *int    `json:"slot,omitempty"`
	Seed       string  `json:"seed,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	SentAt     int64   `json:"sentAt,omitempty"`
	CommandSeq *uint64 `json:"seq,omitempty"`
}

// Seq returns the client sequence number, or zero when none was sent.
func (m ClientMessage) Seq() uint64 {
	if m.CommandSeq == nil {
		return 0
	}
	return *m.CommandSeq
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ClientCommand maps a client message onto the simulation command it carries.
// Origin metadata is filled in by the intake when the command is staged.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeInput:
		return sim.Command{
			Type:  sim.CommandInput,
			Input: &sim.Input{Up: msg.Up, Down: msg.Down, Left: msg.Left, Right: msg.Right},
		}, true
	case TypeSelectPassive:
		if msg.Ref == "" {
			return sim.Command{}, false
		}
		return sim.Command{Type: sim.CommandSelectPassive, Ref: msg.Ref}, true
	case TypeConfirmPassive:
		return sim.Command{Type: sim.CommandConfirmPassive}, true
	case TypeSelectBossReward:
		if msg.Ref == "" {
			return sim.Command{}, false
		}
		return sim.Command{Type: sim.CommandSelectBossReward, Ref: msg.Ref}, true
	case TypeConfirmBossReward:
		return sim.Command{Type: sim.CommandConfirmBossReward}, true
	case TypeBuyShopItem, TypeToggleShopLock:
		if msg.Slot == nil {
			return sim.Command{}, false
		}
		kind := sim.CommandBuyShopItem
		if msg.Type == TypeToggleShopLock {
			kind = sim.CommandToggleShopLock
		}
		return sim.Command{Type: kind, Slot: *msg.Slot}, true
	case TypeRefreshShop:
		return sim.Command{Type: sim.CommandRefreshShop}, true
	case TypePause:
		return sim.Command{Type: sim.CommandPause}, true
	case TypeResume:
		return sim.Command{Type: sim.CommandResume}, true
	case TypeNewGame:
		return sim.Command{Type: sim.CommandNewGame, Seed: msg.Seed}, true
	case TypeResize:
		if msg.Width <= 0 || msg.Height <= 0 {
			return sim.Command{}, false
		}
		return sim.Command{
			Type:   sim.CommandResize,
			Resize: &sim.ResizeCommand{Width: msg.Width, Height: msg.Height},
		}, true
	default:
		return sim.Command{}, false
	}
}

// CommandAck describes an acknowledgement of a staged command.
type CommandAck struct {
	Seq  uint64
	Tick uint64
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Tick uint64 `json:"tick,omitempty"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
		Tick: msg.Tick,
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
	Tick   uint64
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
		Tick   uint64 `json:"tick,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
		Retry:  msg.Retry,
		Tick:   msg.Tick,
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}

// StateV1 is the version 1 snapshot pushed after simulation steps.
type StateV1 struct {
	Ver        int           `json:"ver"`
	Type       string        `json:"type"`
	Tick       uint64        `json:"t"`
	ServerTime int64         `json:"serverTime"`
	Snapshot   game.Snapshot `json:"snapshot"`
	Events     []sim.Event   `json:"events,omitempty"`
	Resync     bool          `json:"resync,omitempty"`
}

// EncodeState renders a versioned snapshot payload.
func EncodeState(msg StateV1) ([]byte, error) {
	if msg.Type == "" {
		msg.Type = TypeState
	}
	msg.Ver = Version
	return json.Marshal(msg)
}
