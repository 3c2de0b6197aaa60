package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/internal/sim"
	"layer-survivors/server/internal/world"
)

// Config groups the balance knobs of a run. It is usually loaded from a YAML
// tuning file; absent sections keep their defaults.
type Config struct {
	World   world.Config   `yaml:"world"`
	Sim     sim.Config     `yaml:"sim"`
	Rewards rewards.Tuning `yaml:"rewards"`
	Loop    sim.LoopConfig `yaml:"loop"`
}

// DefaultConfig returns the stock balance.
func DefaultConfig() Config {
	return Config{
		World:   world.DefaultConfig(),
		Sim:     sim.DefaultConfig(),
		Rewards: rewards.DefaultTuning(),
	}
}

// ParseConfig overlays YAML data on the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("game: parse tuning: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a tuning file. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("game: read tuning %s: %w", path, err)
	}
	return ParseConfig(data)
}
