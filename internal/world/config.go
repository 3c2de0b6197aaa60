package world

import "strings"

const (
	DefaultSeed            = "season-1"
	DefaultWidth           = 800.0
	DefaultHeight          = 600.0
	DefaultMargin          = 20.0
	DefaultLayerDurationMs = 30000.0
)

// Config describes a fresh game.
type Config struct {
	Seed            string  `json:"seed" yaml:"seed"`
	Width           float64 `json:"width" yaml:"width"`
	Height          float64 `json:"height" yaml:"height"`
	Margin          float64 `json:"margin" yaml:"margin"`
	LayerDurationMs float64 `json:"layerDurationMs" yaml:"layerDurationMs"`
	StartLayer      int     `json:"startLayer" yaml:"startLayer"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	if normalized.Margin < 0 {
		normalized.Margin = 0
	}
	if normalized.Margin*2 >= normalized.Width || normalized.Margin*2 >= normalized.Height {
		normalized.Margin = DefaultMargin
	}
	if normalized.LayerDurationMs <= 0 {
		normalized.LayerDurationMs = DefaultLayerDurationMs
	}
	if normalized.StartLayer < 1 {
		normalized.StartLayer = 1
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Seed:            DefaultSeed,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Margin:          DefaultMargin,
		LayerDurationMs: DefaultLayerDurationMs,
		StartLayer:      1,
	}
}
