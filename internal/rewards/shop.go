package rewards

import "layer-survivors/server/internal/rng"

// ShopSlot is one position of the shop. An empty slot (bought or never
// filled) has a zero Offer.
type ShopSlot struct {
	Offer
	Locked bool `json:"locked"`
}

// Empty reports whether the slot holds no item.
func (s ShopSlot) Empty() bool {
	return s.ID == ""
}

// ReconcileShop rebuilds the shop for layer. Locked slots keep their content
// and, while in range, their position; a displaced locked slot moves to the
// first open position. Every other position is filled with a fresh offer
// whose id differs from the locked ones and from each other. The returned
// slice always has the configured slot count.
func (g *Generator) ReconcileShop(slots []ShopSlot, layer int, ctx Context, src rng.Source) ([]ShopSlot, GenerationResult) {
	n := g.tuning.ShopSlots
	out := make([]ShopSlot, n)
	taken := make([]bool, n)

	var displaced []ShopSlot
	for i, slot := range slots {
		if !slot.Locked || slot.Empty() {
			continue
		}
		if i < n && !taken[i] {
			out[i] = slot
			taken[i] = true
			continue
		}
		displaced = append(displaced, slot)
	}
	for _, slot := range displaced {
		for i := range out {
			if !taken[i] {
				out[i] = slot
				taken[i] = true
				break
			}
		}
	}

	exclude := make(map[string]struct{}, n+len(ctx.RecentOfferedIDs))
	for _, id := range ctx.RecentOfferedIDs {
		exclude[id] = struct{}{}
	}
	open := 0
	for i := range out {
		if taken[i] {
			exclude[out[i].ID] = struct{}{}
		} else {
			open++
		}
	}

	result := g.fill(layer, open, exclude, ctx, src)
	next := 0
	for i := range out {
		if taken[i] || next >= len(result.Rewards) {
			continue
		}
		out[i] = ShopSlot{Offer: result.Rewards[next]}
		next++
	}
	g.reportDegraded(ctx, "shop_reconcile", layer, result, open)
	return out, result
}

// LockedCount returns how many slots are locked.
func LockedCount(slots []ShopSlot) int {
	count := 0
	for _, slot := range slots {
		if slot.Locked && !slot.Empty() {
			count++
		}
	}
	return count
}
