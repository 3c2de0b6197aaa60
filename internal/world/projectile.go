package world

const (
	DefaultProjectileSpeed    = 400.0
	DefaultProjectileSize     = 5.0
	DefaultProjectileLifetime = 3000.0
)

// Projectile is a player-fired bolt.
type Projectile struct {
	ID          uint64  `json:"id"`
	Position    Vec2    `json:"position"`
	Velocity    Vec2    `json:"velocity"`
	Damage      float64 `json:"damage"`
	Pierce      int     `json:"pierce"`
	MaxPierce   int     `json:"maxPierce"`
	Size        float64 `json:"size"`
	CreatedAtMs float64 `json:"createdAtMs"`
	LifetimeMs  float64 `json:"lifetimeMs"`
	Crit        bool    `json:"crit,omitempty"`

	// OnHit is applied to every enemy the projectile strikes.
	OnHit []StatusEffect `json:"-"`
	// StunChance is rolled per hit.
	StunChance float64 `json:"-"`

	hits []uint64
}

// Spent reports whether the projectile has exceeded its pierce budget.
func (p *Projectile) Spent() bool {
	return p.Pierce > p.MaxPierce
}

// Expired reports whether the projectile outlived its lifetime at nowMs.
func (p *Projectile) Expired(nowMs float64) bool {
	return p.LifetimeMs > 0 && nowMs-p.CreatedAtMs >= p.LifetimeMs
}

// MarkHit records a strike against enemyID. It returns false when the
// projectile already struck that enemy.
func (p *Projectile) MarkHit(enemyID uint64) bool {
	for _, id := range p.hits {
		if id == enemyID {
			return false
		}
	}
	p.hits = append(p.hits, enemyID)
	return true
}

// Clone returns a deep copy suitable for snapshots.
func (p *Projectile) Clone() *Projectile {
	if p == nil {
		return nil
	}
	out := *p
	out.OnHit = cloneStatus(p.OnHit)
	out.hits = append([]uint64(nil), p.hits...)
	return &out
}
