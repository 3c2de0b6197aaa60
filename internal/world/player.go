package world

const (
	DefaultPlayerHealth      = 100.0
	DefaultPlayerDamage      = 10.0
	DefaultPlayerAttackSpeed = 1.0
	DefaultPlayerCritChance  = 0.05
	DefaultPlayerCritDamage  = 1.5
	DefaultPlayerEnergy      = 100.0

	// MaxComboMultiplier caps the damage bonus from kill streaks.
	MaxComboMultiplier = 3.0
)

// Player is the controllable survivor.
type Player struct {
	Position Vec2 `json:"position"`

	Health          float64 `json:"health"`
	MaxHealth       float64 `json:"maxHealth"`
	Damage          float64 `json:"damage"`
	AttackSpeed     float64 `json:"attackSpeed"`
	CritChance      float64 `json:"critChance"`
	CritDamage      float64 `json:"critDamage"`
	ProjectileCount int     `json:"projectileCount"`
	Pierce          int     `json:"pierce"`
	MoveSpeed       float64 `json:"moveSpeed"`
	Lifesteal       float64 `json:"lifesteal"`
	Regeneration    float64 `json:"regeneration"`
	Armor           float64 `json:"armor"`
	MagicResistance float64 `json:"magicResistance"`
	DodgeChance     float64 `json:"dodgeChance"`
	BlockChance     float64 `json:"blockChance"`
	Energy          float64 `json:"energy"`
	MaxEnergy       float64 `json:"maxEnergy"`

	Status []StatusEffect `json:"status,omitempty"`

	Combo           int     `json:"combo"`
	ComboMultiplier float64 `json:"comboMultiplier"`
	ComboTimerMs    float64 `json:"comboTimerMs"`

	Gold       int `json:"gold"`
	Experience int `json:"experience"`

	// Acquired lists reward ids in pick order; repeats stack.
	Acquired []string  `json:"acquired"`
	Effects  EffectBag `json:"effects,omitempty"`
}

// NewPlayer returns a player with baseline stats at pos.
func NewPlayer(pos Vec2) *Player {
	return &Player{
		Position:        pos,
		Health:          DefaultPlayerHealth,
		MaxHealth:       DefaultPlayerHealth,
		Damage:          DefaultPlayerDamage,
		AttackSpeed:     DefaultPlayerAttackSpeed,
		CritChance:      DefaultPlayerCritChance,
		CritDamage:      DefaultPlayerCritDamage,
		ProjectileCount: 1,
		MoveSpeed:       1,
		Energy:          DefaultPlayerEnergy,
		MaxEnergy:       DefaultPlayerEnergy,
		ComboMultiplier: 1,
		Effects:         EffectBag{},
	}
}

// ClampInvariants restores the documented ranges after any mutation.
func (p *Player) ClampInvariants() {
	if p == nil {
		return
	}
	p.MaxHealth = Finite(p.MaxHealth, 1)
	if p.MaxHealth < 1 {
		p.MaxHealth = 1
	}
	p.Health = Clamp(Finite(p.Health, 0), 0, p.MaxHealth)
	p.CritChance = Clamp(Finite(p.CritChance, 0), 0, 1)
	p.DodgeChance = Clamp(Finite(p.DodgeChance, 0), 0, 0.75)
	p.BlockChance = Clamp(Finite(p.BlockChance, 0), 0, 0.75)
	p.Lifesteal = Clamp(Finite(p.Lifesteal, 0), 0, 1)
	p.MagicResistance = Clamp(Finite(p.MagicResistance, 0), 0, 0.9)
	if p.Armor < 0 {
		p.Armor = 0
	}
	if p.Damage < 1 {
		p.Damage = 1
	}
	if p.AttackSpeed < 0.1 {
		p.AttackSpeed = 0.1
	}
	if p.CritDamage < 1 {
		p.CritDamage = 1
	}
	if p.MoveSpeed < 0.2 {
		p.MoveSpeed = 0.2
	}
	if p.ProjectileCount < 1 {
		p.ProjectileCount = 1
	}
	if p.Pierce < 0 {
		p.Pierce = 0
	}
	if p.Regeneration < 0 {
		p.Regeneration = 0
	}
	if p.MaxEnergy < 0 {
		p.MaxEnergy = 0
	}
	p.Energy = Clamp(Finite(p.Energy, 0), 0, p.MaxEnergy)
	if p.Effects == nil {
		p.Effects = EffectBag{}
	}
}

// HealthRatio returns health/maxHealth, or one when maxHealth is degenerate.
func (p *Player) HealthRatio() float64 {
	if p == nil || p.MaxHealth <= 0 {
		return 1
	}
	return p.Health / p.MaxHealth
}

// Heal restores up to amount health and returns the amount applied.
func (p *Player) Heal(amount float64) float64 {
	if p == nil || amount <= 0 || p.Health <= 0 {
		return 0
	}
	before := p.Health
	p.Health = Clamp(p.Health+amount, 0, p.MaxHealth)
	return p.Health - before
}

// Clone returns a deep copy suitable for snapshots.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Status = cloneStatus(p.Status)
	out.Acquired = append([]string(nil), p.Acquired...)
	out.Effects = p.Effects.Clone()
	return &out
}
