package economy

import (
	"context"

	"layer-survivors/server/logging"
)

const (
	// EventOfferGenerated is emitted when a passive, boss or shop offer is rolled.
	EventOfferGenerated logging.EventType = "economy.offer_generated"
	// EventGenerationDegraded is emitted when a generator had to force or
	// short-fill an offer.
	EventGenerationDegraded logging.EventType = "economy.generation_degraded"
	// EventRewardApplied is emitted when a confirmed reward mutates the player.
	EventRewardApplied logging.EventType = "economy.reward_applied"
	// EventPurchase is emitted for a successful shop purchase.
	EventPurchase logging.EventType = "economy.purchase"
	// EventSelectionRejected is emitted when a choice command is a no-op.
	EventSelectionRejected logging.EventType = "economy.selection_rejected"
	// EventShopRefreshed is emitted when unlocked shop slots are rerolled.
	EventShopRefreshed logging.EventType = "economy.shop_refreshed"
)

// OfferGeneratedPayload lists the ids offered to the player.
type OfferGeneratedPayload struct {
	Kind  string   `json:"kind"`
	Layer int      `json:"layer"`
	IDs   []string `json:"ids"`
}

// GenerationDegradedPayload reports a non-complete generation outcome.
type GenerationDegradedPayload struct {
	Kind      string `json:"kind"`
	Layer     int    `json:"layer"`
	Outcome   string `json:"outcome"`
	Requested int    `json:"requested"`
	Returned  int    `json:"returned"`
	Forced    int    `json:"forced,omitempty"`
}

// RewardAppliedPayload describes an applied reward.
type RewardAppliedPayload struct {
	Kind   string  `json:"kind"`
	ID     string  `json:"id"`
	Value  float64 `json:"value"`
	Debuff string  `json:"debuff,omitempty"`
}

// PurchasePayload describes a shop purchase.
type PurchasePayload struct {
	Slot      int    `json:"slot"`
	ID        string `json:"id"`
	Price     int    `json:"price"`
	GoldAfter int    `json:"goldAfter"`
}

// SelectionRejectedPayload names the command and the reason it was ignored.
type SelectionRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
	Ref     string `json:"ref,omitempty"`
}

// ShopRefreshedPayload describes a reroll.
type ShopRefreshedPayload struct {
	Layer  int `json:"layer"`
	Cost   int `json:"cost"`
	Locked int `json:"locked"`
}

// OfferGenerated publishes the ids of a freshly rolled offer.
func OfferGenerated(ctx context.Context, pub logging.Publisher, tick uint64, payload OfferGeneratedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventOfferGenerated, logging.SeverityInfo, payload, extra)
}

// GenerationDegraded publishes a warning for forced or partial generation.
func GenerationDegraded(ctx context.Context, pub logging.Publisher, tick uint64, payload GenerationDegradedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventGenerationDegraded, logging.SeverityWarn, payload, extra)
}

// RewardApplied publishes a reward application.
func RewardApplied(ctx context.Context, pub logging.Publisher, tick uint64, payload RewardAppliedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventRewardApplied, logging.SeverityInfo, payload, extra)
}

// Purchase publishes a successful purchase.
func Purchase(ctx context.Context, pub logging.Publisher, tick uint64, payload PurchasePayload, extra map[string]any) {
	publish(ctx, pub, tick, EventPurchase, logging.SeverityInfo, payload, extra)
}

// SelectionRejected publishes an ignored choice command.
func SelectionRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload SelectionRejectedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventSelectionRejected, logging.SeverityWarn, payload, extra)
}

// ShopRefreshed publishes a shop reroll.
func ShopRefreshed(ctx context.Context, pub logging.Publisher, tick uint64, payload ShopRefreshedPayload, extra map[string]any) {
	publish(ctx, pub, tick, EventShopRefreshed, logging.SeverityInfo, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, tick uint64, eventType logging.EventType, severity logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.PlayerRef(),
		Severity: severity,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	})
}
