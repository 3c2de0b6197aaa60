package world

// GameState is the single mutable aggregate for a run. Exactly one owner
// mutates it; everyone else reads Snapshot copies.
type GameState struct {
	Layer           int           `json:"layer"`
	TimeRemainingMs float64       `json:"timeRemainingMs"`
	LayerDurationMs float64       `json:"layerDurationMs"`
	ElapsedMs       float64       `json:"elapsedMs"`
	Tick            uint64        `json:"tick"`
	Enemies         []*Enemy      `json:"enemies"`
	Projectiles     []*Projectile `json:"projectiles"`
	Player          *Player       `json:"player"`
	Paused          bool          `json:"paused"`
	GameOver        bool          `json:"gameOver"`
	Score           int           `json:"score"`
	Seed            string        `json:"seed"`
	Bounds          Bounds        `json:"bounds"`
	Margin          float64       `json:"margin"`

	// LayerCleared latches once the timer reaches zero until the layer advances.
	LayerCleared bool `json:"layerCleared"`
	// BossSpawnedLayer is the last layer whose boss has been spawned.
	BossSpawnedLayer int `json:"-"`

	nextEnemyID      uint64
	nextProjectileID uint64
}

// NewGameState builds the initial aggregate for cfg.
func NewGameState(cfg Config) *GameState {
	cfg = cfg.normalized()
	bounds := Bounds{Width: cfg.Width, Height: cfg.Height}
	return &GameState{
		Layer:           cfg.StartLayer,
		TimeRemainingMs: cfg.LayerDurationMs,
		LayerDurationMs: cfg.LayerDurationMs,
		Player:          NewPlayer(bounds.Center()),
		Seed:            cfg.Seed,
		Bounds:          bounds,
		Margin:          cfg.Margin,
	}
}

// NextEnemyID allocates a monotonically increasing enemy id.
func (s *GameState) NextEnemyID() uint64 {
	s.nextEnemyID++
	return s.nextEnemyID
}

// NextProjectileID allocates a monotonically increasing projectile id.
func (s *GameState) NextProjectileID() uint64 {
	s.nextProjectileID++
	return s.nextProjectileID
}

// IsBossLayer reports whether layer spawns a boss.
func IsBossLayer(layer int) bool {
	return layer > 0 && layer%5 == 0
}

// IsShopLayer reports whether clearing layer opens the shop.
func IsShopLayer(layer int) bool {
	return layer > 0 && layer%3 == 0
}

// StartLayer resets the per-layer parts of the aggregate for layer.
func (s *GameState) StartLayer(layer int) {
	s.Layer = layer
	s.TimeRemainingMs = s.LayerDurationMs
	s.LayerCleared = false
	s.Enemies = nil
	s.Projectiles = nil
}

// Snapshot is a read-only deep copy of the aggregate.
type Snapshot struct {
	Layer           int          `json:"layer"`
	TimeRemainingMs float64      `json:"timeRemainingMs"`
	ElapsedMs       float64      `json:"elapsedMs"`
	Tick            uint64       `json:"tick"`
	Enemies         []Enemy      `json:"enemies"`
	Projectiles     []Projectile `json:"projectiles"`
	Player          Player       `json:"player"`
	Paused          bool         `json:"paused"`
	GameOver        bool         `json:"gameOver"`
	Score           int          `json:"score"`
	Seed            string       `json:"seed"`
	Bounds          Bounds       `json:"bounds"`
	LayerCleared    bool         `json:"layerCleared"`
}

// Snapshot copies the aggregate so callers cannot mutate simulation state.
func (s *GameState) Snapshot() Snapshot {
	snap := Snapshot{
		Layer:           s.Layer,
		TimeRemainingMs: s.TimeRemainingMs,
		ElapsedMs:       s.ElapsedMs,
		Tick:            s.Tick,
		Paused:          s.Paused,
		GameOver:        s.GameOver,
		Score:           s.Score,
		Seed:            s.Seed,
		Bounds:          s.Bounds,
		LayerCleared:    s.LayerCleared,
		Enemies:         make([]Enemy, 0, len(s.Enemies)),
		Projectiles:     make([]Projectile, 0, len(s.Projectiles)),
	}
	if s.Player != nil {
		snap.Player = *s.Player.Clone()
	}
	for _, e := range s.Enemies {
		snap.Enemies = append(snap.Enemies, *e.Clone())
	}
	for _, p := range s.Projectiles {
		snap.Projectiles = append(snap.Projectiles, *p.Clone())
	}
	return snap
}
