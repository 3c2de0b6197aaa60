package telemetry

import (
	"log"

	"layer-survivors/server/logging"
)

// Logger exposes the logging capabilities required by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// Logf writes through logger when one is configured. Components hold an
// optional Logger, so call sites use this instead of repeating the nil check.
func Logf(logger Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, args...)
}

// WithPrefix tags every line written through logger, e.g. "[ws] ".
func WithPrefix(logger Logger, prefix string) Logger {
	if logger == nil {
		return nil
	}
	return LoggerFunc(func(format string, args ...any) {
		logger.Printf(prefix+format, args...)
	})
}

// WrapLogger adapts a standard library logger. A nil logger discards output.
func WrapLogger(logger *log.Logger) Logger {
	if logger == nil {
		return LoggerFunc(nil)
	}
	return LoggerFunc(logger.Printf)
}

// Metrics exposes the telemetry methods required by server components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// Count increments key when metrics is configured.
func Count(metrics Metrics, key string) {
	if metrics == nil {
		return
	}
	metrics.Add(key, 1)
}

// WrapMetrics exposes the router's counter table as Metrics. A nil table
// discards updates.
func WrapMetrics(metrics *logging.Metrics) Metrics {
	return routerMetrics{table: metrics}
}

type routerMetrics struct {
	table *logging.Metrics
}

// Add and Store rely on logging.Metrics being nil-safe.
func (m routerMetrics) Add(key string, delta uint64)   { m.table.TelemetryAdd(key, delta) }
func (m routerMetrics) Store(key string, value uint64) { m.table.TelemetryStore(key, value) }
