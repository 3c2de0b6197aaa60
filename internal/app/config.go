package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"layer-survivors/server/internal/observability"
	"layer-survivors/server/internal/telemetry"
	"layer-survivors/server/logging"
)

const (
	envAddr           = "LS_ADDR"
	envTickRate       = "LS_TICK_RATE"
	envSeed           = "LS_SEED"
	envTuningFile     = "LS_TUNING_FILE"
	envSubmitURL      = "LS_SUBMIT_URL"
	envLogJSON        = "LS_LOG_JSON"
	envLogMinSeverity = "LS_LOG_MIN_SEVERITY"
	envLogMute        = "LS_LOG_MUTE"
	envPprofTrace     = "ENABLE_PPROF_TRACE"

	DefaultAddr = ":8080"
)

type Config struct {
	Addr           string
	TickRate       int
	Seed           string
	TuningFile     string
	SubmitURL      string
	LogJSON        bool
	LogMinSeverity logging.Severity
	// LogMute lists event categories the router discards.
	LogMute        []string
	Logger         telemetry.Logger
	Observability  observability.Config
}

func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		LogMinSeverity: logging.SeverityInfo,
	}
}

// LoadDotEnv loads the given files (".env" when none are named) into the
// process environment. Missing files are not an error; variables that are
// already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ConfigFromEnv overlays environment variables on cfg. Malformed values are
// reported through cfg.Logger and ignored.
func ConfigFromEnv(cfg Config) Config {
	return configFromLookup(cfg, os.LookupEnv)
}

func configFromLookup(cfg Config, lookup func(string) (string, bool)) Config {
	logf := func(format string, args ...any) { telemetry.Logf(cfg.Logger, format, args...) }

	if raw, ok := lookup(envAddr); ok && raw != "" {
		cfg.Addr = raw
	}
	if raw, ok := lookup(envTickRate); ok && raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TickRate = value
		} else {
			logf("invalid %s=%q: must be a positive integer", envTickRate, raw)
		}
	}
	if raw, ok := lookup(envSeed); ok && raw != "" {
		cfg.Seed = raw
	}
	if raw, ok := lookup(envTuningFile); ok {
		cfg.TuningFile = raw
	}
	if raw, ok := lookup(envSubmitURL); ok {
		cfg.SubmitURL = raw
	}
	if raw, ok := lookup(envLogJSON); ok && raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.LogJSON = value
		} else {
			logf("invalid %s=%q: %v", envLogJSON, raw, err)
		}
	}
	if raw, ok := lookup(envLogMinSeverity); ok && raw != "" {
		cfg.LogMinSeverity = logging.ParseSeverity(raw, cfg.LogMinSeverity)
	}
	if raw, ok := lookup(envLogMute); ok {
		cfg.LogMute = splitList(raw)
	}
	if raw, ok := lookup(envPprofTrace); ok && raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.Observability.EnablePprofTrace = value
		} else {
			logf("invalid %s=%q: %v", envPprofTrace, raw, err)
		}
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
