package world

// ArchetypeTemplate holds layer-1 stats for an archetype.
type ArchetypeTemplate struct {
	Health     float64
	Damage     float64
	MoveSpeed  float64
	Size       float64
	Experience int
	Behavior   Behavior
	Abilities  []Ability
	DropTable  []LootEntry
}

var defaultDrops = []LootEntry{
	{Kind: LootNothing, Weight: 40},
	{Kind: LootGold, Amount: 1, Weight: 40},
	{Kind: LootGold, Amount: 3, Weight: 15},
	{Kind: LootExperience, Amount: 5, Weight: 5},
}

var archetypeTemplates = map[Archetype]ArchetypeTemplate{
	ArchetypeNormal: {
		Health: 20, Damage: 10, MoveSpeed: 60, Size: 12, Experience: 1,
		Behavior:  Aggressive{AggroRadius: 700, DeaggroRadius: 900},
		DropTable: defaultDrops,
	},
	ArchetypeElite: {
		Health: 60, Damage: 15, MoveSpeed: 70, Size: 16, Experience: 5,
		Behavior:  Elite{ChargeRadius: 200, ChargeBoost: 0.5},
		Abilities: []Ability{{ID: AbilityEnrage, CooldownMs: 8000}},
		DropTable: []LootEntry{
			{Kind: LootGold, Amount: 5, Weight: 60},
			{Kind: LootGold, Amount: 10, Weight: 30},
			{Kind: LootExperience, Amount: 15, Weight: 10},
		},
	},
	ArchetypeBoss: {
		Health: 400, Damage: 25, MoveSpeed: 45, Size: 32, Experience: 50,
		Behavior: BossBehavior{SlamRange: 120},
		Abilities: []Ability{
			{ID: AbilitySlam, CooldownMs: 4000, Range: 120, Damage: 20},
			{ID: AbilitySummon, CooldownMs: 9000, Range: 1000},
		},
		DropTable: []LootEntry{
			{Kind: LootGold, Amount: 50, Weight: 70},
			{Kind: LootGold, Amount: 100, Weight: 30},
		},
	},
	ArchetypeSwarm: {
		Health: 8, Damage: 5, MoveSpeed: 95, Size: 8, Experience: 1,
		Behavior: Swarm{CohesionRadius: 100},
		DropTable: []LootEntry{
			{Kind: LootNothing, Weight: 70},
			{Kind: LootGold, Amount: 1, Weight: 30},
		},
	},
	ArchetypeRanged: {
		Health: 15, Damage: 6, MoveSpeed: 55, Size: 11, Experience: 2,
		Behavior:  Ranged{AttackRange: 250},
		Abilities: []Ability{{ID: AbilityRangedShot, CooldownMs: 2000, Range: 250, Damage: 8, Magic: true}},
		DropTable: defaultDrops,
	},
	ArchetypeTank: {
		Health: 80, Damage: 14, MoveSpeed: 35, Size: 20, Experience: 4,
		Behavior:  Aggressive{AggroRadius: 2000, DeaggroRadius: 3000},
		DropTable: defaultDrops,
	},
	ArchetypeAssassin: {
		Health: 18, Damage: 16, MoveSpeed: 85, Size: 10, Experience: 3,
		Behavior:  Aggressive{AggroRadius: 600, DeaggroRadius: 800},
		Abilities: []Ability{{ID: AbilityDash, CooldownMs: 5000, Range: 220}},
		DropTable: defaultDrops,
	},
	ArchetypeSupport: {
		Health: 25, Damage: 6, MoveSpeed: 55, Size: 12, Experience: 2,
		Behavior:  Support{InjuredRatio: 0.5, SeekRadius: 400},
		Abilities: []Ability{{ID: AbilityHealAlly, CooldownMs: 3000, Range: 150, Damage: 15}},
		DropTable: defaultDrops,
	},
}

// Template returns the template for archetype, falling back to normal.
func Template(archetype Archetype) ArchetypeTemplate {
	if tmpl, ok := archetypeTemplates[archetype]; ok {
		return tmpl
	}
	return archetypeTemplates[ArchetypeNormal]
}

// HealthScale returns the enemy health multiplier for layer.
func HealthScale(layer int) float64 {
	if layer < 1 {
		layer = 1
	}
	return 1 + 0.15*float64(layer-1)
}

// DamageScale returns the enemy damage multiplier for layer.
func DamageScale(layer int) float64 {
	if layer < 1 {
		layer = 1
	}
	return 1 + 0.1*float64(layer-1)
}

// NewEnemy instantiates archetype scaled to layer at pos. Behaviour overrides
// the template's default when non-nil.
func NewEnemy(id uint64, archetype Archetype, layer int, pos Vec2, behavior Behavior) *Enemy {
	tmpl := Template(archetype)
	if behavior == nil {
		behavior = tmpl.Behavior
	}
	health := tmpl.Health * HealthScale(layer)
	return &Enemy{
		ID:         id,
		Archetype:  archetype,
		Health:     health,
		MaxHealth:  health,
		Position:   pos,
		Damage:     tmpl.Damage * DamageScale(layer),
		MoveSpeed:  tmpl.MoveSpeed,
		Size:       tmpl.Size,
		Behavior:   behavior,
		Abilities:  append([]Ability(nil), tmpl.Abilities...),
		DropTable:  append([]LootEntry(nil), tmpl.DropTable...),
		Experience: tmpl.Experience,
		Mode:       ModeIdle,
	}
}
