package combat

import (
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
)

// Loot is the currency granted by a kill.
type Loot struct {
	Gold       int
	Experience int
}

// RollLoot draws one drop table entry and adds the archetype's base XP.
func RollLoot(enemy *world.Enemy, src rng.Source) Loot {
	loot := Loot{Experience: enemy.Experience}
	if len(enemy.DropTable) == 0 || src == nil {
		return loot
	}
	weights := make([]float64, len(enemy.DropTable))
	for i, entry := range enemy.DropTable {
		weights[i] = entry.Weight
	}
	idx := rng.WeightedChoice(src, weights)
	if idx < 0 {
		return loot
	}
	entry := enemy.DropTable[idx]
	switch entry.Kind {
	case world.LootGold:
		loot.Gold += entry.Amount
	case world.LootExperience:
		loot.Experience += entry.Amount
	case world.LootNothing:
	}
	return loot
}

// KillScore is the score awarded for any kill on layer.
func KillScore(layer int) int {
	return 10 + layer*5
}
