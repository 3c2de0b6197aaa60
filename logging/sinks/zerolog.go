package sinks

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"layer-survivors/server/logging"
)

// Zerolog writes one JSON object per event through a zerolog.Logger.
type Zerolog struct {
	logger zerolog.Logger
	closer io.Closer
}

// NewZerolog builds a sink over w. Pretty switches to zerolog's console writer.
func NewZerolog(w io.Writer, cfg logging.ZerologConfig) *Zerolog {
	if w == nil {
		w = io.Discard
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return &Zerolog{logger: zerolog.New(w)}
}

// OpenZerolog appends to cfg.FilePath, or writes to stdout when it is empty.
func OpenZerolog(cfg logging.ZerologConfig) (*Zerolog, error) {
	if cfg.FilePath == "" {
		return NewZerolog(os.Stdout, cfg), nil
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sinks: open zerolog file: %w", err)
	}
	sink := NewZerolog(file, cfg)
	sink.closer = file
	return sink, nil
}

func (s *Zerolog) Write(event logging.Event) error {
	entry := s.logger.WithLevel(zerologLevel(event.Severity)).
		Time("time", event.Time).
		Uint64("tick", event.Tick).
		Str("category", event.Category).
		Str("actor", entityLabel(event.Actor))
	if event.SessionID != "" {
		entry = entry.Str("session", event.SessionID)
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, entityLabel(target))
		}
		entry = entry.Strs("targets", targets)
	}
	if event.Payload != nil {
		entry = entry.Interface("payload", event.Payload)
	}
	if len(event.Extra) > 0 {
		entry = entry.Fields(event.Extra)
	}
	entry.Msg(string(event.Type))
	return nil
}

func (s *Zerolog) Close(context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func zerologLevel(sev logging.Severity) zerolog.Level {
	switch sev {
	case logging.SeverityDebug:
		return zerolog.DebugLevel
	case logging.SeverityInfo:
		return zerolog.InfoLevel
	case logging.SeverityWarn:
		return zerolog.WarnLevel
	case logging.SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}
