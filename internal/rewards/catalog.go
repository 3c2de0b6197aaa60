package rewards

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"layer-survivors/server/internal/world"
)

//go:embed catalog/rewards.json
var embeddedCatalog []byte

var (
	ErrDuplicateID   = errors.New("rewards: duplicate id")
	ErrUnknownEffect = errors.New("rewards: unknown effect key")
	ErrUnknownDebuff = errors.New("rewards: unknown debuff type")
	ErrInvalidValue  = errors.New("rewards: invalid value")
	ErrPoolTooSmall  = errors.New("rewards: pool too small")
)

// Rarity names one of the four disjoint reward pools.
type Rarity string

const (
	RarityAttribute Rarity = "attribute"
	RaritySpecial   Rarity = "special"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// fallbackOrder is the pool priority used when a rolled pool cannot supply
// an item: green, blue, purple, gold.
var fallbackOrder = []Rarity{RarityAttribute, RaritySpecial, RarityEpic, RarityLegendary}

// Color returns the card color shown for the rarity.
func (r Rarity) Color() string {
	switch r {
	case RarityAttribute:
		return "green"
	case RaritySpecial:
		return "blue"
	case RarityEpic:
		return "purple"
	case RarityLegendary:
		return "gold"
	}
	return ""
}

// Debuff is a stat penalty bundled with a reward. Value is a positive
// magnitude; it is applied with reversed sign.
type Debuff struct {
	Effect world.EffectKey `json:"effect" jsonschema:"title=Debuff effect,description=Stat effect key reduced when the reward is taken,required"`
	Value  float64         `json:"value" jsonschema:"title=Debuff magnitude,minimum=0,required"`
}

// Entry is one reward in a rarity pool. Exactly one of Tiers and BaseValue
// carries the effect value.
type Entry struct {
	ID          string          `json:"id" jsonschema:"title=Reward id,pattern=^[a-z0-9_]+$,minLength=1,required"`
	Name        string          `json:"name" jsonschema:"title=Display name,required"`
	Description string          `json:"description,omitempty" jsonschema:"title=Card text"`
	Effect      world.EffectKey `json:"effect" jsonschema:"title=Effect key,description=Closed vocabulary interpreted by the reward applier,required"`
	Tiers       []float64       `json:"tiers,omitempty" jsonschema:"title=Tier values,description=Values selected by layer thresholds,minItems=1"`
	BaseValue   float64         `json:"baseValue,omitempty" jsonschema:"title=Flat value,description=Used when the reward has no tiers"`
	Weight      float64         `json:"weight" jsonschema:"title=Sampling weight,description=Floored to an integer of at least one,minimum=0"`
	Debuff      *Debuff         `json:"debuff,omitempty" jsonschema:"title=Bundled debuff"`
}

// Passive is one entry of the fixed passive-attribute table.
type Passive struct {
	ID     string          `json:"id" jsonschema:"title=Passive id,minLength=1,required"`
	Name   string          `json:"name" jsonschema:"title=Display name,required"`
	Effect world.EffectKey `json:"effect" jsonschema:"title=Stat effect key,required"`
	Value  float64         `json:"value" jsonschema:"title=Effect value,required"`
}

// Document is the on-disk catalog layout.
type Document struct {
	Attribute []Entry   `json:"attribute" jsonschema:"title=Attribute pool (green),required"`
	Special   []Entry   `json:"special" jsonschema:"title=Special pool (blue),required"`
	Epic      []Entry   `json:"epic" jsonschema:"title=Epic pool (purple),required"`
	Legendary []Entry   `json:"legendary" jsonschema:"title=Legendary pool (gold; boss exclusive),required"`
	Passives  []Passive `json:"passives" jsonschema:"title=Passive attribute table,required"`
}

// Catalog is the validated, read-only reward catalog.
type Catalog struct {
	pools    map[Rarity][]Entry
	passives []Passive
	byID     map[string]Entry
	rarity   map[string]Rarity
}

// LoadDefault parses the embedded catalog.
func LoadDefault() (*Catalog, error) {
	return LoadCatalog(embeddedCatalog)
}

// MustLoadDefault panics when the embedded catalog is broken.
func MustLoadDefault() *Catalog {
	catalog, err := LoadDefault()
	if err != nil {
		panic(fmt.Errorf("rewards: load default catalog: %w", err))
	}
	return catalog
}

// LoadCatalog decodes and validates a catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rewards: decode catalog: %w", err)
	}
	return NewCatalog(doc, DefaultTuning())
}

// NewCatalog validates doc against tuning. The legendary pool must be able to
// fill the largest boss candidate count.
func NewCatalog(doc Document, tuning Tuning) (*Catalog, error) {
	c := &Catalog{
		pools: map[Rarity][]Entry{
			RarityAttribute: doc.Attribute,
			RaritySpecial:   doc.Special,
			RarityEpic:      doc.Epic,
			RarityLegendary: doc.Legendary,
		},
		passives: doc.Passives,
		byID:     make(map[string]Entry),
		rarity:   make(map[string]Rarity),
	}
	seen := make(map[string]struct{})
	for _, rarity := range fallbackOrder {
		for _, entry := range c.pools[rarity] {
			if err := validateEntry(entry); err != nil {
				return nil, fmt.Errorf("%s pool: %w", rarity, err)
			}
			if _, dup := seen[entry.ID]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateID, entry.ID)
			}
			seen[entry.ID] = struct{}{}
			c.byID[entry.ID] = entry
			c.rarity[entry.ID] = rarity
		}
	}
	for _, passive := range doc.Passives {
		if strings.TrimSpace(passive.ID) == "" {
			return nil, fmt.Errorf("%w: passive with empty id", ErrInvalidValue)
		}
		if _, dup := seen[passive.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, passive.ID)
		}
		seen[passive.ID] = struct{}{}
		if !passive.Effect.Valid() || passive.Effect.Kind() != world.KindStat {
			return nil, fmt.Errorf("%w: passive %q uses %q", ErrUnknownEffect, passive.ID, passive.Effect)
		}
	}
	if len(doc.Attribute) == 0 {
		return nil, fmt.Errorf("%w: attribute pool is empty", ErrPoolTooSmall)
	}
	if need := tuning.Normalized().MaxBossCandidates(); len(doc.Legendary) < need {
		return nil, fmt.Errorf("%w: legendary pool has %d entries, boss rewards need %d", ErrPoolTooSmall, len(doc.Legendary), need)
	}
	return c, nil
}

func validateEntry(entry Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("%w: entry with empty id", ErrInvalidValue)
	}
	if !entry.Effect.Valid() {
		return fmt.Errorf("%w: %q uses %q", ErrUnknownEffect, entry.ID, entry.Effect)
	}
	hasTiers := len(entry.Tiers) > 0
	hasBase := entry.BaseValue != 0
	if hasTiers == hasBase {
		return fmt.Errorf("%w: %q needs exactly one of tiers and baseValue", ErrInvalidValue, entry.ID)
	}
	if entry.Weight < 0 {
		return fmt.Errorf("%w: %q has negative weight", ErrInvalidValue, entry.ID)
	}
	if entry.Debuff != nil {
		if !entry.Debuff.Effect.Valid() || entry.Debuff.Effect.Kind() != world.KindStat {
			return fmt.Errorf("%w: %q uses %q", ErrUnknownDebuff, entry.ID, entry.Debuff.Effect)
		}
		if entry.Debuff.Value <= 0 {
			return fmt.Errorf("%w: %q debuff must be positive", ErrInvalidValue, entry.ID)
		}
	}
	return nil
}

// Pool returns a copy of the entries for rarity.
func (c *Catalog) Pool(rarity Rarity) []Entry {
	return append([]Entry(nil), c.pools[rarity]...)
}

// Passives returns a copy of the passive table in catalog order.
func (c *Catalog) Passives() []Passive {
	return append([]Passive(nil), c.passives...)
}

// Passive looks up a passive by id.
func (c *Catalog) Passive(id string) (Passive, bool) {
	for _, passive := range c.passives {
		if passive.ID == id {
			return passive, true
		}
	}
	return Passive{}, false
}

// Entry looks up a pool entry and its rarity by id.
func (c *Catalog) Entry(id string) (Entry, Rarity, bool) {
	entry, ok := c.byID[id]
	return entry, c.rarity[id], ok
}

// Document rebuilds the catalog document, used to serve the catalog.
func (c *Catalog) Document() Document {
	return Document{
		Attribute: c.Pool(RarityAttribute),
		Special:   c.Pool(RaritySpecial),
		Epic:      c.Pool(RarityEpic),
		Legendary: c.Pool(RarityLegendary),
		Passives:  c.Passives(),
	}
}
