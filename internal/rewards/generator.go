package rewards

import (
	"context"
	"math"

	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
	"layer-survivors/server/logging"
	"layer-survivors/server/logging/economy"
)

const synergyBonus = 2

// Context carries the player-facing inputs that bias generation.
type Context struct {
	Tick             uint64
	Player           *world.Player
	RecentOfferedIDs []string
}

// Offer is a catalog entry resolved for a layer: its tier value scaled and,
// for shop items, priced.
type Offer struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Rarity      Rarity          `json:"rarity"`
	Color       string          `json:"color"`
	Effect      world.EffectKey `json:"effect"`
	Value       float64         `json:"scaledValue"`
	Debuff      *Debuff         `json:"debuff,omitempty"`
	Price       int             `json:"price,omitempty"`
}

// Outcome classifies how completely a generation call was satisfied.
type Outcome string

const (
	OutcomeComplete  Outcome = "complete"
	OutcomePartial   Outcome = "partial"
	OutcomeForced    Outcome = "forced"
	OutcomeExhausted Outcome = "exhausted"
)

// GenerationResult is the output of a generator call. Forced counts slots
// that had to fall back to an unweighted green pick.
type GenerationResult struct {
	Rewards []Offer
	Outcome Outcome
	Forced  int
}

// IDs lists the offered ids in order.
func (r GenerationResult) IDs() []string {
	ids := make([]string, 0, len(r.Rewards))
	for _, offer := range r.Rewards {
		ids = append(ids, offer.ID)
	}
	return ids
}

// rarityRow is one band of the shop rarity table. Weights are ordered
// attribute, special, epic, legendary.
type rarityRow struct {
	minLayer int
	weights  [4]float64
}

// shopRarityTable shifts probability mass from green to gold as layers rise.
var shopRarityTable = []rarityRow{
	{minLayer: 1, weights: [4]float64{0.70, 0.25, 0.05, 0}},
	{minLayer: 6, weights: [4]float64{0.60, 0.28, 0.10, 0.02}},
	{minLayer: 11, weights: [4]float64{0.50, 0.30, 0.15, 0.05}},
	{minLayer: 21, weights: [4]float64{0.40, 0.32, 0.20, 0.08}},
	{minLayer: 31, weights: [4]float64{0.30, 0.35, 0.23, 0.12}},
	{minLayer: 41, weights: [4]float64{0.22, 0.36, 0.26, 0.16}},
	{minLayer: 51, weights: [4]float64{0.15, 0.37, 0.28, 0.20}},
}

// Generator rolls boss, shop and reconciliation offers from a catalog.
type Generator struct {
	catalog   *Catalog
	tuning    Tuning
	publisher logging.Publisher
}

// NewGenerator binds a catalog and tuning. pub may be nil.
func NewGenerator(catalog *Catalog, tuning Tuning, pub logging.Publisher) *Generator {
	if catalog == nil {
		catalog = MustLoadDefault()
	}
	return &Generator{catalog: catalog, tuning: tuning.normalized(), publisher: pub}
}

// Catalog exposes the bound catalog.
func (g *Generator) Catalog() *Catalog { return g.catalog }

// Tuning exposes the normalized tuning.
func (g *Generator) Tuning() Tuning { return g.tuning }

// LayerMultiplier scales reward values and prices by layer band.
func LayerMultiplier(layer int) float64 {
	switch {
	case layer >= 20:
		return 2.0
	case layer >= 15:
		return 1.6
	case layer >= 10:
		return 1.3
	default:
		return 1.0
	}
}

// tierIndex maps a layer onto an index of an n-tier value array.
func tierIndex(n, layer int) int {
	if n <= 0 {
		return 0
	}
	var idx int
	switch {
	case layer >= 20:
		idx = n - 1
	case layer >= 15:
		idx = int(math.Floor(float64(n) * 0.67))
	case layer >= 10:
		idx = int(math.Floor(float64(n) * 0.34))
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// PickTierValue resolves the entry's value for layer, including the layer
// multiplier.
func PickTierValue(entry Entry, layer int) float64 {
	base := entry.BaseValue
	if len(entry.Tiers) > 0 {
		base = entry.Tiers[tierIndex(len(entry.Tiers), layer)]
	}
	return base * LayerMultiplier(layer)
}

func synergy(entry Entry, player *world.Player) float64 {
	if player == nil {
		return 0
	}
	switch entry.Effect {
	case world.EffectProjectileCount, world.EffectAttackSpeedPct:
		if player.AttackSpeed > 1.4 {
			return synergyBonus
		}
	case world.EffectCritChance, world.EffectCritDamage, world.EffectPierce:
		if player.CritChance > 0.25 {
			return synergyBonus
		}
	case world.EffectLifesteal, world.EffectRegeneration:
		if player.HealthRatio() < 0.4 {
			return synergyBonus
		}
	}
	return 0
}

func sampleWeight(entry Entry, player *world.Player) float64 {
	weight := math.Floor(entry.Weight)
	if weight < 1 {
		weight = 1
	}
	return weight + synergy(entry, player)
}

// WeightedSample draws up to count distinct entries from pool without
// replacement, skipping ids in exclude. Fewer are returned when the pool
// runs dry.
func WeightedSample(pool []Entry, count int, exclude map[string]struct{}, ctx Context, src rng.Source) []Entry {
	if count <= 0 {
		return nil
	}
	candidates := make([]Entry, 0, len(pool))
	for _, entry := range pool {
		if _, skip := exclude[entry.ID]; skip {
			continue
		}
		candidates = append(candidates, entry)
	}
	picked := make([]Entry, 0, count)
	for len(picked) < count && len(candidates) > 0 {
		weights := make([]float64, len(candidates))
		for i, entry := range candidates {
			weights[i] = sampleWeight(entry, ctx.Player)
		}
		idx := rng.WeightedChoice(src, weights)
		if idx < 0 {
			break
		}
		picked = append(picked, candidates[idx])
		candidates = append(candidates[:idx], candidates[idx+1:]...)
	}
	return picked
}

// RollRarity picks the shop rarity for one slot on layer.
func RollRarity(layer int, src rng.Source) Rarity {
	row := shopRarityTable[0]
	for _, candidate := range shopRarityTable {
		if layer >= candidate.minLayer {
			row = candidate
		}
	}
	idx := rng.WeightedChoice(src, row.weights[:])
	if idx < 0 || idx >= len(fallbackOrder) {
		return RarityAttribute
	}
	return fallbackOrder[idx]
}

// Price returns the gold cost of a shop item of rarity on layer.
func (g *Generator) Price(rarity Rarity, layer int) int {
	return int(math.Round(float64(g.tuning.Prices[rarity]) * LayerMultiplier(layer)))
}

// RefreshCost returns the gold cost of rerolling the shop on layer.
func (g *Generator) RefreshCost(layer int) int {
	return g.tuning.RefreshCost(layer)
}

func (g *Generator) offer(entry Entry, rarity Rarity, layer int) Offer {
	return Offer{
		ID:          entry.ID,
		Name:        entry.Name,
		Description: entry.Description,
		Rarity:      rarity,
		Color:       rarity.Color(),
		Effect:      entry.Effect,
		Value:       PickTierValue(entry, layer),
		Debuff:      entry.Debuff,
	}
}

// GenerateBossRewards samples the layer's candidate count from the legendary
// pool. Every offer is legendary; the result is short only when the pool is.
func (g *Generator) GenerateBossRewards(layer int, ctx Context, src rng.Source) GenerationResult {
	requested := g.tuning.BossCandidateCount(layer)
	picked := WeightedSample(g.catalog.pools[RarityLegendary], requested, nil, ctx, src)
	result := GenerationResult{Rewards: make([]Offer, 0, len(picked)), Outcome: OutcomeComplete}
	for _, entry := range picked {
		result.Rewards = append(result.Rewards, g.offer(entry, RarityLegendary, layer))
	}
	switch {
	case len(picked) == 0:
		result.Outcome = OutcomeExhausted
	case len(picked) < requested:
		result.Outcome = OutcomePartial
	}
	g.reportDegraded(ctx, "boss", layer, result, requested)
	return result
}

// GenerateShopRewards rolls a full shop for layer. The result always holds
// exactly the configured slot count.
func (g *Generator) GenerateShopRewards(layer int, ctx Context, src rng.Source) GenerationResult {
	exclude := make(map[string]struct{}, len(ctx.RecentOfferedIDs))
	for _, id := range ctx.RecentOfferedIDs {
		exclude[id] = struct{}{}
	}
	result := g.fill(layer, g.tuning.ShopSlots, exclude, ctx, src)
	g.reportDegraded(ctx, "shop", layer, result, g.tuning.ShopSlots)
	return result
}

// fill produces n priced shop offers. exclude grows with every pick so no id
// repeats within the call.
func (g *Generator) fill(layer, n int, exclude map[string]struct{}, ctx Context, src rng.Source) GenerationResult {
	result := GenerationResult{Rewards: make([]Offer, 0, n), Outcome: OutcomeComplete}
	chosen := make(map[string]struct{}, n)
	for len(result.Rewards) < n {
		entry, rarity, ok := g.pickSlot(layer, exclude, ctx, src)
		if !ok {
			entry, ok = g.forceGreen(chosen, src)
			rarity = RarityAttribute
			if !ok {
				break
			}
			result.Forced++
		}
		exclude[entry.ID] = struct{}{}
		chosen[entry.ID] = struct{}{}
		offer := g.offer(entry, rarity, layer)
		offer.Price = g.Price(rarity, layer)
		result.Rewards = append(result.Rewards, offer)
	}
	if result.Forced > 0 {
		result.Outcome = OutcomeForced
	}
	return result
}

// pickSlot tries the rolled rarity first and then walks the fallback order,
// within the attempt budget.
func (g *Generator) pickSlot(layer int, exclude map[string]struct{}, ctx Context, src rng.Source) (Entry, Rarity, bool) {
	order := append([]Rarity{RollRarity(layer, src)}, fallbackOrder...)
	for attempt, rarity := range order {
		if attempt >= g.tuning.MaxAttempts {
			break
		}
		picked := WeightedSample(g.catalog.pools[rarity], 1, exclude, ctx, src)
		if len(picked) == 1 {
			return picked[0], rarity, true
		}
	}
	return Entry{}, "", false
}

// forceGreen picks an unweighted green entry, preferring ones not already
// chosen in this call and otherwise ignoring exclusions.
func (g *Generator) forceGreen(chosen map[string]struct{}, src rng.Source) (Entry, bool) {
	green := g.catalog.pools[RarityAttribute]
	fresh := make([]Entry, 0, len(green))
	for _, entry := range green {
		if _, dup := chosen[entry.ID]; !dup {
			fresh = append(fresh, entry)
		}
	}
	if len(fresh) > 0 {
		entry, err := rng.Choice(src, fresh)
		return entry, err == nil
	}
	entry, err := rng.Choice(src, green)
	return entry, err == nil
}

func (g *Generator) reportDegraded(ctx Context, kind string, layer int, result GenerationResult, requested int) {
	if result.Outcome == OutcomeComplete {
		return
	}
	economy.GenerationDegraded(context.Background(), g.publisher, ctx.Tick, economy.GenerationDegradedPayload{
		Kind:      kind,
		Layer:     layer,
		Outcome:   string(result.Outcome),
		Requested: requested,
		Returned:  len(result.Rewards),
		Forced:    result.Forced,
	}, nil)
}
