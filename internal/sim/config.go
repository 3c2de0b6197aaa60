package sim

// SpawnSchedule selects how spawn intervals and the population cap evolve.
type SpawnSchedule string

const (
	// ScheduleRandom draws each interval uniformly from [RandomMinMs, RandomMaxMs].
	ScheduleRandom SpawnSchedule = "random"
	// ScheduleLevelScaled tightens the interval and raises the cap with the layer.
	ScheduleLevelScaled SpawnSchedule = "level_scaled"
)

const (
	DefaultPlayerSpeed      = 200.0
	DefaultContactRange     = 20.0
	DefaultSpawnEdgeOffset  = 30.0
	DefaultEnemyCullSlack   = 300.0
	DefaultRandomMinMs      = 1000.0
	DefaultRandomMaxMs      = 2000.0
	DefaultScaledBaseMs     = 1500.0
	DefaultScaledStepMs     = 60.0
	DefaultScaledFloorMs    = 500.0
	DefaultScaledJitter     = 0.25
	DefaultCapBase          = 20
	DefaultCapStep          = 5
	DefaultCapMax           = 100
	DefaultEnergyRegen      = 5.0
	DefaultRangedKiterShare = 0.25
)

// Config tunes the combat loop. Non-positive distances and durations fall
// back to the defaults above.
type Config struct {
	Schedule        SpawnSchedule `json:"schedule" yaml:"schedule"`
	PlayerSpeed     float64       `json:"playerSpeed" yaml:"playerSpeed"`
	ContactRange    float64       `json:"contactRange" yaml:"contactRange"`
	SpawnEdgeOffset float64       `json:"spawnEdgeOffset" yaml:"spawnEdgeOffset"`
	EnemyCullSlack  float64       `json:"enemyCullSlack" yaml:"enemyCullSlack"`
	RandomMinMs     float64       `json:"randomMinMs" yaml:"randomMinMs"`
	RandomMaxMs     float64       `json:"randomMaxMs" yaml:"randomMaxMs"`
	ScaledBaseMs    float64       `json:"scaledBaseMs" yaml:"scaledBaseMs"`
	ScaledStepMs    float64       `json:"scaledStepMs" yaml:"scaledStepMs"`
	ScaledFloorMs   float64       `json:"scaledFloorMs" yaml:"scaledFloorMs"`
	ScaledJitter    float64       `json:"scaledJitter" yaml:"scaledJitter"`
	CapBase         int           `json:"capBase" yaml:"capBase"`
	CapStep         int           `json:"capStep" yaml:"capStep"`
	CapMax          int           `json:"capMax" yaml:"capMax"`
	EnergyRegen     float64       `json:"energyRegen" yaml:"energyRegen"`

	// RangedKiterShare is the chance a ranged spawn keeps its distance.
	RangedKiterShare float64 `json:"rangedKiterShare" yaml:"rangedKiterShare"`

	// DisableSpawns freezes the spawner; tests place enemies by hand.
	DisableSpawns bool `json:"-" yaml:"-"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	if normalized.Schedule != ScheduleRandom && normalized.Schedule != ScheduleLevelScaled {
		normalized.Schedule = ScheduleLevelScaled
	}
	defaultFloat(&normalized.PlayerSpeed, DefaultPlayerSpeed)
	defaultFloat(&normalized.ContactRange, DefaultContactRange)
	defaultFloat(&normalized.SpawnEdgeOffset, DefaultSpawnEdgeOffset)
	defaultFloat(&normalized.EnemyCullSlack, DefaultEnemyCullSlack)
	defaultFloat(&normalized.RandomMinMs, DefaultRandomMinMs)
	defaultFloat(&normalized.RandomMaxMs, DefaultRandomMaxMs)
	if normalized.RandomMaxMs < normalized.RandomMinMs {
		normalized.RandomMaxMs = normalized.RandomMinMs
	}
	defaultFloat(&normalized.ScaledBaseMs, DefaultScaledBaseMs)
	defaultFloat(&normalized.ScaledStepMs, DefaultScaledStepMs)
	defaultFloat(&normalized.ScaledFloorMs, DefaultScaledFloorMs)
	if normalized.ScaledJitter < 0 || normalized.ScaledJitter >= 1 {
		normalized.ScaledJitter = DefaultScaledJitter
	}
	if normalized.CapBase <= 0 {
		normalized.CapBase = DefaultCapBase
	}
	if normalized.CapStep < 0 {
		normalized.CapStep = DefaultCapStep
	}
	if normalized.CapMax <= 0 {
		normalized.CapMax = DefaultCapMax
	}
	if normalized.EnergyRegen < 0 {
		normalized.EnergyRegen = 0
	}
	if normalized.RangedKiterShare < 0 || normalized.RangedKiterShare > 1 {
		normalized.RangedKiterShare = DefaultRangedKiterShare
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Schedule:         ScheduleLevelScaled,
		PlayerSpeed:      DefaultPlayerSpeed,
		ContactRange:     DefaultContactRange,
		SpawnEdgeOffset:  DefaultSpawnEdgeOffset,
		EnemyCullSlack:   DefaultEnemyCullSlack,
		RandomMinMs:      DefaultRandomMinMs,
		RandomMaxMs:      DefaultRandomMaxMs,
		ScaledBaseMs:     DefaultScaledBaseMs,
		ScaledStepMs:     DefaultScaledStepMs,
		ScaledFloorMs:    DefaultScaledFloorMs,
		ScaledJitter:     DefaultScaledJitter,
		CapBase:          DefaultCapBase,
		CapStep:          DefaultCapStep,
		CapMax:           DefaultCapMax,
		EnergyRegen:      DefaultEnergyRegen,
		RangedKiterShare: DefaultRangedKiterShare,
	}
}

func defaultFloat(value *float64, fallback float64) {
	if *value <= 0 {
		*value = fallback
	}
}
