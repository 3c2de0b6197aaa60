package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"layer-survivors/server/internal/game"
	servernet "layer-survivors/server/internal/net"
	"layer-survivors/server/internal/net/ws"
	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/internal/session"
	"layer-survivors/server/internal/sim"
	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging"
	loggingSinks "layer-survivors/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

// Run serves until ctx is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	router, err := newRouter(cfg)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	gameCfg, err := game.LoadConfig(cfg.TuningFile)
	if err != nil {
		return err
	}
	if cfg.Seed != "" {
		gameCfg.World.Seed = cfg.Seed
	}
	if cfg.TickRate > 0 {
		gameCfg.Loop.TickRate = cfg.TickRate
	}
	catalog, err := rewards.LoadDefault()
	if err != nil {
		return err
	}

	metrics := telemetry.WrapMetrics(router.Metrics())
	deps := game.Deps{
		Deps: sim.Deps{
			Logger:    telemetryLogger,
			Metrics:   metrics,
			Publisher: router,
			Clock:     logging.SystemClock{},
		},
	}

	var submitter *session.AsyncSubmitter
	if cfg.SubmitURL != "" {
		submitter = session.NewAsyncSubmitter(session.NewHTTPSubmitter(cfg.SubmitURL), session.AsyncConfig{
			Logger:    telemetryLogger,
			Metrics:   metrics,
			Publisher: router,
		})
		deps.Submitter = submitter
	} else {
		telemetryLogger.Printf("%s not set; run records are not submitted", envSubmitURL)
	}

	sessions := ws.NewHandler(ws.HandlerConfig{Game: gameCfg, Deps: deps})
	tickRate := gameCfg.Loop.TickRate
	if tickRate <= 0 {
		tickRate = sim.DefaultTickRate
	}
	handler := servernet.NewHTTPHandler(servernet.HTTPHandlerConfig{
		Logger:        telemetryLogger,
		Observability: cfg.Observability,
		Catalog:       catalog,
		Sessions:      sessions,
		Router:        router,
		TickRate:      tickRate,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		telemetryLogger.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	if submitter != nil {
		group.Go(func() error { return submitter.Run(groupCtx) })
	}
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func newRouter(cfg Config) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	logConfig.MinimumSeverity = cfg.LogMinSeverity
	logConfig.MutedCategories = cfg.LogMute

	var sinks []logging.NamedSink
	if cfg.LogJSON {
		logConfig.EnabledSinks = []string{logging.SinkZerolog}
		sink, err := loggingSinks.OpenZerolog(logConfig.Zerolog)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, logging.NamedSink{Name: logging.SinkZerolog, Sink: sink})
	} else {
		sinks = append(sinks, logging.NamedSink{
			Name: logging.SinkConsole,
			Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console),
		})
	}
	return logging.NewRouter(logging.SystemClock{}, logConfig, sinks)
}
