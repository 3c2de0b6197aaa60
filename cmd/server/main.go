package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"layer-survivors/server/internal/app"
	"layer-survivors/server/internal/telemetry"
)

func main() {
	if err := app.LoadDotEnv(); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := app.DefaultConfig()
	cfg.Logger = telemetry.WrapLogger(log.Default())
	cfg = app.ConfigFromEnv(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
