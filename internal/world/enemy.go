package world

// Archetype tags an enemy's role. The set is closed.
type Archetype string

const (
	ArchetypeNormal   Archetype = "normal"
	ArchetypeElite    Archetype = "elite"
	ArchetypeBoss     Archetype = "boss"
	ArchetypeSwarm    Archetype = "swarm"
	ArchetypeRanged   Archetype = "ranged"
	ArchetypeTank     Archetype = "tank"
	ArchetypeAssassin Archetype = "assassin"
	ArchetypeSupport  Archetype = "support"
)

// Mode is the enemy's animation/behaviour state.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeMoving    Mode = "moving"
	ModeAttacking Mode = "attacking"
	ModeSpecial   Mode = "special"
	ModeHit       Mode = "hit"
	ModeDying     Mode = "dying"
)

// AbilityID names an enemy ability.
type AbilityID string

const (
	AbilityRangedShot AbilityID = "ranged_shot"
	AbilityDash       AbilityID = "dash"
	AbilityHealAlly   AbilityID = "heal_ally"
	AbilitySlam       AbilityID = "slam"
	AbilitySummon     AbilityID = "summon"
	AbilityEnrage     AbilityID = "enrage"
)

// Ability is a cooldown-gated enemy action. RemainingMs counts down to zero;
// the ability is usable once it reaches zero.
type Ability struct {
	ID          AbilityID `json:"id"`
	CooldownMs  float64   `json:"cooldownMs"`
	Range       float64   `json:"range"`
	Damage      float64   `json:"damage"`
	Magic       bool      `json:"magic,omitempty"`
	RemainingMs float64   `json:"remainingMs"`
}

// Ready reports whether the ability is off cooldown.
func (a Ability) Ready() bool {
	return a.RemainingMs <= 0
}

// LootKind identifies what a drop table entry grants.
type LootKind string

const (
	LootNothing    LootKind = "nothing"
	LootGold       LootKind = "gold"
	LootExperience LootKind = "experience"
)

// LootEntry is one weighted row of a drop table.
type LootEntry struct {
	Kind   LootKind `json:"kind"`
	Amount int      `json:"amount"`
	Weight float64  `json:"weight"`
}

// Enemy is a hostile combatant.
type Enemy struct {
	ID        uint64    `json:"id"`
	Archetype Archetype `json:"archetype"`

	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Position  Vec2    `json:"position"`
	Velocity  Vec2    `json:"velocity"`
	Damage    float64 `json:"damage"`
	MoveSpeed float64 `json:"moveSpeed"`
	Size      float64 `json:"size"`

	Behavior  Behavior       `json:"-"`
	Abilities []Ability      `json:"abilities,omitempty"`
	Status    []StatusEffect `json:"status,omitempty"`
	DropTable []LootEntry    `json:"-"`

	Experience int `json:"-"`

	Mode      Mode `json:"mode"`
	AnimFrame int  `json:"animFrame"`
	// Engaged tracks aggro hysteresis for chasing behaviours.
	Engaged bool `json:"engaged,omitempty"`
	Enraged bool `json:"enraged,omitempty"`

	animClockMs float64
	hitTimerMs  float64
	dashTimerMs float64
}

// AIKind returns the behaviour tag for diagnostics and snapshots.
func (e *Enemy) AIKind() AIKind {
	if e == nil || e.Behavior == nil {
		return AIAggressive
	}
	return e.Behavior.Kind()
}

// Alive reports whether the enemy still has health.
func (e *Enemy) Alive() bool {
	return e != nil && e.Health > 0
}

// HealthRatio returns health/maxHealth, or one when maxHealth is degenerate.
func (e *Enemy) HealthRatio() float64 {
	if e == nil || e.MaxHealth <= 0 {
		return 1
	}
	return e.Health / e.MaxHealth
}

// TakeDamage subtracts amount, clamps at zero, and flags the hit animation.
// It returns true when the hit was fatal.
func (e *Enemy) TakeDamage(amount float64) bool {
	if e == nil || e.Health <= 0 {
		return false
	}
	if amount > 0 {
		e.Health -= amount
		e.hitTimerMs = hitFlashMs
		if e.Mode != ModeSpecial {
			e.Mode = ModeHit
		}
	}
	if e.Health <= 0 {
		e.Health = 0
		e.Mode = ModeDying
		return true
	}
	return false
}

// Ability returns a pointer to the named ability, or nil.
func (e *Enemy) Ability(id AbilityID) *Ability {
	if e == nil {
		return nil
	}
	for i := range e.Abilities {
		if e.Abilities[i].ID == id {
			return &e.Abilities[i]
		}
	}
	return nil
}

// TickCooldowns counts every ability down by deltaMs, flooring at zero.
func (e *Enemy) TickCooldowns(deltaMs float64) {
	for i := range e.Abilities {
		if e.Abilities[i].RemainingMs > 0 {
			e.Abilities[i].RemainingMs -= deltaMs
			if e.Abilities[i].RemainingMs < 0 {
				e.Abilities[i].RemainingMs = 0
			}
		}
	}
}

const (
	animFrameMs = 100.0
	animFrames  = 4
	hitFlashMs  = 150.0
)

// TickAnimation advances the frame counter and expires the hit flash. It is
// independent of movement.
func (e *Enemy) TickAnimation(deltaMs float64) {
	e.animClockMs += deltaMs
	for e.animClockMs >= animFrameMs {
		e.animClockMs -= animFrameMs
		e.AnimFrame = (e.AnimFrame + 1) % animFrames
	}
	if e.hitTimerMs > 0 {
		e.hitTimerMs -= deltaMs
		if e.hitTimerMs <= 0 && e.Mode == ModeHit {
			e.Mode = ModeMoving
		}
	}
}

// Hit reports whether the hit flash is still showing.
func (e *Enemy) Hit() bool {
	return e.hitTimerMs > 0
}

// Dashing reports whether a dash burst is active.
func (e *Enemy) Dashing() bool {
	return e.dashTimerMs > 0
}

// StartDash begins a speed burst lasting durationMs.
func (e *Enemy) StartDash(durationMs float64) {
	e.dashTimerMs = durationMs
}

// TickDash counts the dash burst down.
func (e *Enemy) TickDash(deltaMs float64) {
	if e.dashTimerMs > 0 {
		e.dashTimerMs -= deltaMs
	}
}

// Clone returns a deep copy suitable for snapshots.
func (e *Enemy) Clone() *Enemy {
	if e == nil {
		return nil
	}
	out := *e
	out.Abilities = append([]Ability(nil), e.Abilities...)
	out.Status = cloneStatus(e.Status)
	out.DropTable = append([]LootEntry(nil), e.DropTable...)
	return &out
}
