package layers

import (
	"context"
	"fmt"

	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/logging/economy"
)

// openShop reconciles the persistent slots for layer. Locked slots from the
// previous shop carry over.
func (c *Controller) openShop(layer int) {
	c.reconcileShop(layer)
	c.shopOpen = true
}

// reconcileShop rerolls every unlocked slot, avoiding the ids that were just
// on display.
func (c *Controller) reconcileShop(layer int) {
	var recent []string
	for _, slot := range c.shop {
		if !slot.Locked && !slot.Empty() {
			recent = append(recent, slot.ID)
		}
	}
	slots, result := c.generator.ReconcileShop(c.shop, layer, c.rewardContext(recent), c.src)
	c.shop = slots
	c.publishOffer("shop", layer, result.IDs())
}

// ShopOpen reports whether shop commands are accepted.
func (c *Controller) ShopOpen() bool { return c.shopOpen }

func (c *Controller) shopSlot(command string, slot int) (int, error) {
	if !c.shopOpen {
		return 0, c.reject(command, ErrShopClosed, fmt.Sprint(slot))
	}
	if slot < 0 || slot >= len(c.shop) {
		return 0, c.reject(command, ErrSlotOutOfRange, fmt.Sprint(slot))
	}
	if c.shop[slot].Empty() {
		return 0, c.reject(command, ErrSlotEmpty, fmt.Sprint(slot))
	}
	return slot, nil
}

// BuyShopItem spends gold on the item in slot, applies it and empties the
// slot.
func (c *Controller) BuyShopItem(slot int) error {
	idx, err := c.shopSlot("buy_shop_item", slot)
	if err != nil {
		return err
	}
	item := c.shop[idx]
	player := c.state.Player
	if player.Gold < item.Price {
		return c.reject("buy_shop_item", ErrInsufficientGold, item.ID)
	}
	if err := rewards.ApplyOffer(player, item.Offer); err != nil {
		return fmt.Errorf("layers: buy shop item: %w", err)
	}
	player.Gold -= item.Price
	c.shop[idx] = rewards.ShopSlot{}
	economy.Purchase(context.Background(), c.publisher, c.state.Tick, economy.PurchasePayload{
		Slot:      idx,
		ID:        item.ID,
		Price:     item.Price,
		GoldAfter: player.Gold,
	}, nil)
	c.publishApplied("shop", item.Offer)
	return nil
}

// ToggleShopItemLock flips the lock on a non-empty slot.
func (c *Controller) ToggleShopItemLock(slot int) error {
	idx, err := c.shopSlot("toggle_shop_lock", slot)
	if err != nil {
		return err
	}
	c.shop[idx].Locked = !c.shop[idx].Locked
	return nil
}

// RefreshAllShopItems pays the refresh cost and rerolls every unlocked slot.
func (c *Controller) RefreshAllShopItems() error {
	if !c.shopOpen {
		return c.reject("refresh_shop", ErrShopClosed, "")
	}
	cost := c.generator.RefreshCost(c.clearedLayer)
	player := c.state.Player
	if player.Gold < cost {
		return c.reject("refresh_shop", ErrInsufficientGold, fmt.Sprint(cost))
	}
	player.Gold -= cost
	c.reconcileShop(c.clearedLayer)
	economy.ShopRefreshed(context.Background(), c.publisher, c.state.Tick, economy.ShopRefreshedPayload{
		Layer:  c.clearedLayer,
		Cost:   cost,
		Locked: rewards.LockedCount(c.shop),
	}, nil)
	return nil
}
