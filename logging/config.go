package logging

import "time"

const (
	SinkConsole = "console"
	SinkZerolog = "zerolog"
	SinkMemory  = "memory"
)

type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	// MutedCategories are dropped before reaching any sink, regardless of
	// severity. "combat" silences per-hit damage events on busy layers.
	MutedCategories  []string
	Fields           map[string]any
	Zerolog          ZerologConfig
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

// ZerologConfig controls the JSON-lines sink. An empty FilePath writes to
// stdout.
type ZerologConfig struct {
	FilePath string
	Pretty   bool
}

type ConsoleConfig struct {
	Prefix string
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{SinkConsole},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

func (c Config) mutedSet() map[string]struct{} {
	if len(c.MutedCategories) == 0 {
		return nil
	}
	muted := make(map[string]struct{}, len(c.MutedCategories))
	for _, category := range c.MutedCategories {
		if category != "" {
			muted[category] = struct{}{}
		}
	}
	return muted
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
