package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"layer-survivors/server/internal/net/ws"
	"layer-survivors/server/internal/observability"
	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging"
)

type HTTPHandlerConfig struct {
	Logger        telemetry.Logger
	Observability observability.Config
	Catalog       *rewards.Catalog
	Sessions      *ws.Handler
	// Router, when set, contributes its drop counters to /diagnostics.
	Router   *logging.Router
	TickRate int
}

type diagnosticsPayload struct {
	Status         string         `json:"status"`
	ServerTime     int64          `json:"serverTime"`
	TickRate       int            `json:"tickRate"`
	ActiveSessions int            `json:"activeSessions"`
	OpenedSessions uint64         `json:"openedSessions"`
	Logging        *loggingStats  `json:"logging,omitempty"`
	Catalog        map[string]int `json:"catalog"`
}

type loggingStats struct {
	EventsTotal  uint64            `json:"eventsTotal"`
	DroppedTotal uint64            `json:"droppedTotal"`
	MutedTotal   uint64            `json:"mutedTotal"`
	ByCategory   map[string]uint64 `json:"byCategory,omitempty"`
}

func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = rewards.MustLoadDefault()
	}
	logger := telemetry.WithPrefix(cfg.Logger, "[http] ")

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := diagnosticsPayload{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   cfg.TickRate,
			Catalog: map[string]int{
				string(rewards.RarityAttribute): len(catalog.Pool(rewards.RarityAttribute)),
				string(rewards.RaritySpecial):   len(catalog.Pool(rewards.RaritySpecial)),
				string(rewards.RarityEpic):      len(catalog.Pool(rewards.RarityEpic)),
				string(rewards.RarityLegendary): len(catalog.Pool(rewards.RarityLegendary)),
				"passives":                      len(catalog.Passives()),
			},
		}
		if cfg.Sessions != nil {
			payload.ActiveSessions = cfg.Sessions.Active()
			payload.OpenedSessions = cfg.Sessions.Opened()
		}
		if cfg.Router != nil {
			stats := cfg.Router.Stats()
			payload.Logging = &loggingStats{
				EventsTotal:  stats.EventsTotal,
				DroppedTotal: stats.DroppedTotal,
				MutedTotal:   stats.MutedTotal,
				ByCategory:   stats.ByCategory,
			}
		}
		writeJSON(w, payload, logger)
	})

	mux.HandleFunc("/catalog", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, catalog.Document(), logger)
	})

	mux.HandleFunc("/catalog/schema", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		data, err := rewards.SchemaJSON()
		if err != nil {
			telemetry.Logf(logger, "failed to render catalog schema: %v", err)
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/schema+json")
		w.Write(data)
	})

	if cfg.Sessions != nil {
		mux.HandleFunc("/ws", cfg.Sessions.Handle)
	}

	if cfg.Observability.Register(mux) {
		telemetry.Logf(logger, "pprof endpoints enabled under /debug/pprof/")
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any, logger telemetry.Logger) {
	data, err := json.Marshal(payload)
	if err != nil {
		telemetry.Logf(logger, "failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
