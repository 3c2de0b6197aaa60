package layers

import (
	"context"
	"fmt"

	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/logging/economy"
)

// SelectPassive marks one of the offered passives for confirmation.
func (c *Controller) SelectPassive(id string) error {
	if c.phase != PhasePassiveSelection {
		return c.reject("select_passive", ErrWrongPhase, id)
	}
	for _, passive := range c.passives {
		if passive.ID == id {
			c.selectedPassive = id
			return nil
		}
	}
	return c.reject("select_passive", ErrNoSuchOffer, id)
}

// ConfirmPassiveSelection applies the selected passive and starts the next
// layer. A second call without a new selection is a no-op.
func (c *Controller) ConfirmPassiveSelection() error {
	if c.phase != PhasePassiveSelection {
		return c.reject("confirm_passive", ErrWrongPhase, "")
	}
	if c.selectedPassive == "" {
		return c.reject("confirm_passive", ErrNothingSelected, "")
	}
	var chosen rewards.Passive
	found := false
	for _, passive := range c.passives {
		if passive.ID == c.selectedPassive {
			chosen, found = passive, true
			break
		}
	}
	if !found {
		return c.reject("confirm_passive", ErrNoSuchOffer, c.selectedPassive)
	}
	c.selectedPassive = ""
	if err := rewards.ApplyPassive(c.state.Player, chosen); err != nil {
		return fmt.Errorf("layers: confirm passive: %w", err)
	}
	economy.RewardApplied(context.Background(), c.publisher, c.state.Tick, economy.RewardAppliedPayload{
		Kind:  "passive",
		ID:    chosen.ID,
		Value: chosen.Value,
	}, nil)
	c.advanceLayer()
	return nil
}

// SelectBossReward marks one of the offered boss rewards for confirmation.
func (c *Controller) SelectBossReward(id string) error {
	if c.phase != PhaseBossReward {
		return c.reject("select_boss_reward", ErrWrongPhase, id)
	}
	for _, offer := range c.bossOffers {
		if offer.ID == id {
			c.selectedBoss = id
			return nil
		}
	}
	return c.reject("select_boss_reward", ErrNoSuchOffer, id)
}

// ConfirmBossRewardSelection applies the selected boss reward with its debuff
// and moves on to the passive pick.
func (c *Controller) ConfirmBossRewardSelection() error {
	if c.phase != PhaseBossReward {
		return c.reject("confirm_boss_reward", ErrWrongPhase, "")
	}
	if c.selectedBoss == "" {
		return c.reject("confirm_boss_reward", ErrNothingSelected, "")
	}
	var chosen rewards.Offer
	found := false
	for _, offer := range c.bossOffers {
		if offer.ID == c.selectedBoss {
			chosen, found = offer, true
			break
		}
	}
	if !found {
		return c.reject("confirm_boss_reward", ErrNoSuchOffer, c.selectedBoss)
	}
	c.selectedBoss = ""
	if err := rewards.ApplyOffer(c.state.Player, chosen); err != nil {
		return fmt.Errorf("layers: confirm boss reward: %w", err)
	}
	c.publishApplied("boss", chosen)
	c.bossOffers = nil
	c.offerPassives(c.clearedLayer, c.clearedAtMs)
	return nil
}

func (c *Controller) publishApplied(kind string, offer rewards.Offer) {
	payload := economy.RewardAppliedPayload{Kind: kind, ID: offer.ID, Value: offer.Value}
	if offer.Debuff != nil {
		payload.Debuff = string(offer.Debuff.Effect)
	}
	economy.RewardApplied(context.Background(), c.publisher, c.state.Tick, payload, nil)
}
