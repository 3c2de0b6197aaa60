package layers

import (
	"context"
	"fmt"
	"math"

	"layer-survivors/server/internal/rewards"
	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
	"layer-survivors/server/logging"
	"layer-survivors/server/logging/economy"
	"layer-survivors/server/logging/lifecycle"
)

const (
	// PassiveOfferCount is how many passives are offered after a layer.
	PassiveOfferCount = 3
	// BossOfferCount is how many boss rewards are shown after a boss kill.
	BossOfferCount = 3
)

// Phase is the controller's position in the between-layer flow.
type Phase string

const (
	PhaseCombat           Phase = "combat"
	PhaseBossReward       Phase = "boss_reward"
	PhasePassiveSelection Phase = "passive_selection"
)

// Rejection explains why a choice command changed nothing. Rejections are
// never fatal.
type Rejection string

func (r Rejection) Error() string { return "layers: " + string(r) }

const (
	ErrWrongPhase        Rejection = "wrong phase"
	ErrNoSuchOffer       Rejection = "no such offer"
	ErrNothingSelected   Rejection = "nothing selected"
	ErrShopClosed        Rejection = "shop closed"
	ErrSlotOutOfRange    Rejection = "slot out of range"
	ErrSlotEmpty         Rejection = "slot empty"
	ErrInsufficientGold  Rejection = "insufficient gold"
	ErrRunOver           Rejection = "run over"
	ErrAlreadyTransition Rejection = "layer transition in progress"
)

// Transition summarises what clearing a layer triggered.
type Transition struct {
	Cleared   int   `json:"cleared"`
	ShopLayer bool  `json:"shopLayer"`
	BossLayer bool  `json:"bossLayer"`
	BossKill  bool  `json:"bossKill"`
	Phase     Phase `json:"phase"`
}

// Offers is the read-only view of everything the player can currently pick.
type Offers struct {
	Phase              Phase              `json:"phase"`
	ClearedLayer       int                `json:"clearedLayer,omitempty"`
	Passives           []rewards.Passive  `json:"availablePassives"`
	SelectedPassive    string             `json:"selectedPassive,omitempty"`
	BossRewards        []rewards.Offer    `json:"availableBossRewards"`
	SelectedBossReward string             `json:"selectedBossReward,omitempty"`
	ShopOpen           bool               `json:"shopOpen"`
	Shop               []rewards.ShopSlot `json:"availableShopItems"`
	RefreshCost        int                `json:"refreshCost,omitempty"`
}

// Controller owns layer transitions and the reward economy. It shares the
// game's single writer; it is not safe for concurrent use.
type Controller struct {
	state     *world.GameState
	generator *rewards.Generator
	src       rng.Source
	publisher logging.Publisher

	phase        Phase
	clearedLayer int
	clearedAtMs  float64
	bossLayer    int

	passives        []rewards.Passive
	selectedPassive string

	bossOffers   []rewards.Offer
	selectedBoss string

	shop     []rewards.ShopSlot
	shopOpen bool
}

// NewController binds the controller to state. src is the run's shared
// source; pub may be nil.
func NewController(state *world.GameState, generator *rewards.Generator, src rng.Source, pub logging.Publisher) *Controller {
	if generator == nil {
		generator = rewards.NewGenerator(nil, rewards.DefaultTuning(), pub)
	}
	return &Controller{
		state:     state,
		generator: generator,
		src:       src,
		publisher: pub,
		phase:     PhaseCombat,
	}
}

// Reset rebinds the controller to a fresh run and clears every offer,
// including locked shop slots.
func (c *Controller) Reset(state *world.GameState, src rng.Source) {
	*c = Controller{
		state:     state,
		generator: c.generator,
		src:       src,
		publisher: c.publisher,
		phase:     PhaseCombat,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Generator exposes the reward generator.
func (c *Controller) Generator() *rewards.Generator { return c.generator }

// RecordBossDefeat marks layer as having had its boss killed.
func (c *Controller) RecordBossDefeat(layer int) {
	c.bossLayer = layer
}

// BossDefeated reports whether the boss of layer was killed.
func (c *Controller) BossDefeated(layer int) bool {
	return layer > 0 && c.bossLayer == layer
}

func (c *Controller) rewardContext(recent []string) rewards.Context {
	return rewards.Context{Tick: c.state.Tick, Player: c.state.Player, RecentOfferedIDs: recent}
}

// OnLayerCleared starts the between-layer flow for cleared. The shop is
// reconciled on every third layer; a boss kill on exactly this layer queues
// boss rewards ahead of the passive pick.
func (c *Controller) OnLayerCleared(cleared int, elapsedMs float64) (Transition, error) {
	if c.state.GameOver {
		return Transition{}, ErrRunOver
	}
	if c.phase != PhaseCombat {
		return Transition{}, ErrAlreadyTransition
	}
	c.clearedLayer = cleared
	c.clearedAtMs = elapsedMs
	transition := Transition{
		Cleared:   cleared,
		ShopLayer: world.IsShopLayer(cleared),
		BossLayer: world.IsBossLayer(cleared),
		BossKill:  c.BossDefeated(cleared),
	}

	if transition.ShopLayer {
		c.openShop(cleared)
	}
	if transition.BossKill && c.offerBossRewards(cleared) {
		c.phase = PhaseBossReward
	} else {
		c.offerPassives(cleared, elapsedMs)
	}
	transition.Phase = c.phase
	return transition, nil
}

func (c *Controller) offerBossRewards(layer int) bool {
	result := c.generator.GenerateBossRewards(layer, c.rewardContext(nil), c.src)
	if len(result.Rewards) == 0 {
		return false
	}
	shuffled := rng.Shuffle(c.src, result.Rewards)
	if len(shuffled) > BossOfferCount {
		shuffled = shuffled[:BossOfferCount]
	}
	c.bossOffers = shuffled
	c.selectedBoss = ""
	ids := make([]string, 0, len(shuffled))
	for _, offer := range shuffled {
		ids = append(ids, offer.ID)
	}
	c.publishOffer("boss", layer, ids)
	return true
}

// PassiveSeed is the seed string for the passive shuffle after layer.
func PassiveSeed(layer int, elapsedMs float64) string {
	return fmt.Sprintf("passive:%d:%d", layer, int64(math.Floor(elapsedMs)))
}

func (c *Controller) offerPassives(layer int, elapsedMs float64) {
	src := rng.FromString(PassiveSeed(layer, elapsedMs))
	shuffled := rng.Shuffle(src, c.generator.Catalog().Passives())
	if len(shuffled) > PassiveOfferCount {
		shuffled = shuffled[:PassiveOfferCount]
	}
	c.passives = shuffled
	c.selectedPassive = ""
	c.phase = PhasePassiveSelection
	ids := make([]string, 0, len(shuffled))
	for _, passive := range shuffled {
		ids = append(ids, passive.ID)
	}
	c.publishOffer("passive", layer, ids)
}

// advanceLayer is the only place the layer number moves forward.
func (c *Controller) advanceLayer() {
	from := c.state.Layer
	to := c.clearedLayer + 1
	if to <= from {
		to = from + 1
	}
	c.state.StartLayer(to)
	c.phase = PhaseCombat
	c.clearedLayer = 0
	c.clearedAtMs = 0
	c.passives = nil
	c.selectedPassive = ""
	c.bossOffers = nil
	c.selectedBoss = ""
	c.shopOpen = false
	lifecycle.LayerAdvanced(context.Background(), c.publisher, c.state.Tick, lifecycle.LayerAdvancedPayload{From: from, To: to}, nil)
}

// Offers returns a copy of the current offer lists.
func (c *Controller) Offers() Offers {
	offers := Offers{
		Phase:              c.phase,
		ClearedLayer:       c.clearedLayer,
		Passives:           append([]rewards.Passive(nil), c.passives...),
		SelectedPassive:    c.selectedPassive,
		BossRewards:        append([]rewards.Offer(nil), c.bossOffers...),
		SelectedBossReward: c.selectedBoss,
		ShopOpen:           c.shopOpen,
	}
	if c.shopOpen {
		offers.Shop = append([]rewards.ShopSlot(nil), c.shop...)
		offers.RefreshCost = c.generator.RefreshCost(c.clearedLayer)
	}
	return offers
}

func (c *Controller) publishOffer(kind string, layer int, ids []string) {
	economy.OfferGenerated(context.Background(), c.publisher, c.state.Tick, economy.OfferGeneratedPayload{
		Kind:  kind,
		Layer: layer,
		IDs:   ids,
	}, nil)
}

func (c *Controller) reject(command string, err Rejection, ref string) error {
	economy.SelectionRejected(context.Background(), c.publisher, c.state.Tick, economy.SelectionRejectedPayload{
		Command: command,
		Reason:  string(err),
		Ref:     ref,
	}, nil)
	return err
}
