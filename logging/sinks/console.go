package sinks

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strconv"
	"strings"

	"layer-survivors/server/logging"
)

// ConsoleSink writes one human-readable line per event:
//
//	[economy] economy.purchase tick=812 session=3f.. actor=player targets=... payload={...}
//
// Lines are grouped by category so a terminal can be grepped per domain.
type ConsoleSink struct {
	logger *log.Logger
}

func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	return &ConsoleSink{logger: log.New(w, cfg.Prefix, log.LstdFlags)}
}

func (s *ConsoleSink) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Print(formatLine(event))
	return nil
}

func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func formatLine(event logging.Event) string {
	var b strings.Builder
	category := event.Category
	if category == "" {
		category = "event"
	}
	b.WriteString("[" + category + "] " + string(event.Type))
	b.WriteString(" tick=" + strconv.FormatUint(event.Tick, 10))
	if event.Severity != logging.SeverityInfo {
		b.WriteString(" severity=" + event.Severity.String())
	}
	if event.SessionID != "" {
		b.WriteString(" session=" + event.SessionID)
	}
	if actor := entityLabel(event.Actor); actor != "" {
		b.WriteString(" actor=" + actor)
	}
	if len(event.Targets) > 0 {
		labels := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			labels = append(labels, entityLabel(target))
		}
		b.WriteString(" targets=" + strings.Join(labels, ","))
	}
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			b.WriteString(" payload=")
			b.Write(data)
		}
	}
	return b.String()
}

// entityLabel renders kind:id, or just the kind for singletons like the player.
func entityLabel(ref logging.EntityRef) string {
	switch {
	case ref.ID == "" || ref.ID == string(ref.Kind):
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	default:
		return string(ref.Kind) + ":" + ref.ID
	}
}
