package rewards

const (
	DefaultShopSlots       = 4
	DefaultMaxAttempts     = 50
	DefaultRefreshBase     = 10
	DefaultRefreshPerLayer = 2

	minBossCandidates = 3
	maxBossCandidates = 6
)

// Tuning carries the economy knobs that can be overridden from the balance
// file. Zero values fall back to the defaults.
type Tuning struct {
	ShopSlots       int            `yaml:"shopSlots"`
	MaxAttempts     int            `yaml:"maxAttempts"`
	BossCandidates  map[int]int    `yaml:"bossCandidates"`
	Prices          map[Rarity]int `yaml:"prices"`
	RefreshBase     int            `yaml:"refreshBase"`
	RefreshPerLayer int            `yaml:"refreshPerLayer"`
}

// DefaultTuning returns the stock economy.
func DefaultTuning() Tuning {
	return Tuning{
		ShopSlots:   DefaultShopSlots,
		MaxAttempts: DefaultMaxAttempts,
		BossCandidates: map[int]int{
			5:  3,
			10: 4,
			15: 5,
			20: 6,
		},
		Prices: map[Rarity]int{
			RarityAttribute: 25,
			RaritySpecial:   50,
			RarityEpic:      100,
			RarityLegendary: 200,
		},
		RefreshBase:     DefaultRefreshBase,
		RefreshPerLayer: DefaultRefreshPerLayer,
	}
}

func (t Tuning) normalized() Tuning {
	defaults := DefaultTuning()
	if t.ShopSlots <= 0 {
		t.ShopSlots = defaults.ShopSlots
	}
	if t.MaxAttempts <= 0 {
		t.MaxAttempts = defaults.MaxAttempts
	}
	if t.RefreshBase <= 0 {
		t.RefreshBase = defaults.RefreshBase
	}
	if t.RefreshPerLayer <= 0 {
		t.RefreshPerLayer = defaults.RefreshPerLayer
	}

	candidates := make(map[int]int, len(defaults.BossCandidates)+len(t.BossCandidates))
	for layer, count := range defaults.BossCandidates {
		candidates[layer] = count
	}
	for layer, count := range t.BossCandidates {
		if count > 0 {
			candidates[layer] = count
		}
	}
	t.BossCandidates = candidates

	prices := make(map[Rarity]int, len(defaults.Prices))
	for rarity, price := range defaults.Prices {
		prices[rarity] = price
	}
	for rarity, price := range t.Prices {
		if price > 0 {
			prices[rarity] = price
		}
	}
	t.Prices = prices
	return t
}

// Normalized returns t with defaults filled in. Override maps are copied.
func (t Tuning) Normalized() Tuning {
	return t.normalized()
}

// BossCandidateCount returns how many legendary candidates a boss on layer
// rolls: the explicit schedule when present, else 3 plus one per five layers
// past layer 5, capped at 6.
func (t Tuning) BossCandidateCount(layer int) int {
	if count, ok := t.BossCandidates[layer]; ok && count > 0 {
		return count
	}
	count := minBossCandidates + (layer-5)/5
	if count < minBossCandidates {
		count = minBossCandidates
	}
	if count > maxBossCandidates {
		count = maxBossCandidates
	}
	return count
}

// MaxBossCandidates returns the largest candidate count any layer can ask for.
func (t Tuning) MaxBossCandidates() int {
	max := maxBossCandidates
	for _, count := range t.BossCandidates {
		if count > max {
			max = count
		}
	}
	return max
}

// RefreshCost is the gold price of rerolling the shop on layer.
func (t Tuning) RefreshCost(layer int) int {
	if layer < 1 {
		layer = 1
	}
	return t.RefreshBase + t.RefreshPerLayer*layer
}
