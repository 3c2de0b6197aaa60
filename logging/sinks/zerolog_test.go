package sinks

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"layer-survivors/server/logging"
)

func TestZerologWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerolog(&buf, logging.ZerologConfig{})
	err := sink.Write(logging.Event{
		Type:      "combat.defeat",
		Tick:      42,
		Time:      time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Actor:     logging.PlayerRef(),
		Targets:   []logging.EntityRef{{ID: "7", Kind: logging.EntityKindEnemy}},
		Severity:  logging.SeverityWarn,
		Category:  logging.CategoryCombat,
		Payload:   map[string]int{"score": 15},
		Extra:     map[string]any{"layer": 1},
		SessionID: "s-1",
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "combat.defeat" {
		t.Fatalf("message = %v", line["message"])
	}
	if line["level"] != "warn" {
		t.Fatalf("level = %v", line["level"])
	}
	if line["actor"] != "player" || line["session"] != "s-1" {
		t.Fatalf("actor/session = %v/%v", line["actor"], line["session"])
	}
	targets, _ := line["targets"].([]any)
	if len(targets) != 1 || targets[0] != "enemy:7" {
		t.Fatalf("targets = %v", line["targets"])
	}
	if line["tick"].(float64) != 42 || line["layer"].(float64) != 1 {
		t.Fatalf("tick/layer = %v/%v", line["tick"], line["layer"])
	}
}

func TestConsoleLineLeadsWithCategory(t *testing.T) {
	cases := []struct {
		name  string
		event logging.Event
		want  string
	}{
		{
			name:  "info omits severity",
			event: logging.Event{Type: "lifecycle.game_over", Category: logging.CategoryLifecycle, Actor: logging.WorldRef(), Severity: logging.SeverityInfo},
			want:  "[lifecycle] lifecycle.game_over tick=0 actor=world",
		},
		{
			name: "warn with targets and payload",
			event: logging.Event{
				Type:      "economy.selection_rejected",
				Category:  logging.CategoryEconomy,
				Tick:      9,
				Severity:  logging.SeverityWarn,
				SessionID: "s-1",
				Actor:     logging.PlayerRef(),
				Targets:   []logging.EntityRef{{ID: "3", Kind: logging.EntityKindEnemy}},
				Payload:   map[string]int{"slot": 7},
			},
			want: `[economy] economy.selection_rejected tick=9 severity=warn session=s-1 actor=player targets=enemy:3 payload={"slot":7}`,
		},
		{
			name:  "uncategorised",
			event: logging.Event{Type: "bare", Severity: logging.SeverityInfo},
			want:  "[event] bare tick=0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewConsoleSink(&buf, logging.ConsoleConfig{})
			_ = sink.Write(tc.event)
			if !bytes.HasSuffix(bytes.TrimRight(buf.Bytes(), "\n"), []byte(tc.want)) {
				t.Fatalf("unexpected console line %q", buf.String())
			}
		})
	}
}
