package rng

import "errors"

// ErrEmptyInput is returned when a selection is requested from an empty sequence.
var ErrEmptyInput = errors.New("rng: empty input")

// Source is the minimal randomness contract consumed by generation and
// simulation code. Implementations must be deterministic for a given seed.
type Source interface {
	Next() float64
}

// Seeded is an xorshift32 generator. The zero value is not usable; construct
// with New, FromString or FromInt.
type Seeded struct {
	seed  uint32
	state uint32
}

// HashSeed folds a string into a non-zero 32-bit seed using a base-31 rolling
// hash over its UTF-16 code units.
func HashSeed(value string) uint32 {
	var hash int32
	for _, unit := range utf16Units(value) {
		hash = hash*31 + int32(unit)
	}
	folded := uint32(hash)
	if folded == 0 {
		return 1
	}
	return folded
}

// FromString constructs a generator from a textual seed such as a season id.
func FromString(seed string) *Seeded {
	return New(HashSeed(seed))
}

// FromInt constructs a generator from an integer seed folded into 32 bits.
func FromInt(seed int64) *Seeded {
	folded := uint32(seed) ^ uint32(uint64(seed)>>32)
	return New(folded)
}

// New constructs a generator from a raw 32-bit state. Zero is mapped to one
// because xorshift has a fixed point at zero.
func New(seed uint32) *Seeded {
	if seed == 0 {
		seed = 1
	}
	return &Seeded{seed: seed, state: seed}
}

// Seed reports the initial state the generator was built from.
func (s *Seeded) Seed() uint32 {
	return s.seed
}

// State exposes the current internal state for checkpointing.
func (s *Seeded) State() uint32 {
	return s.state
}

// Restore rewinds the generator to a previously captured state.
func (s *Seeded) Restore(state uint32) {
	if state == 0 {
		state = 1
	}
	s.state = state
}

// Next advances the generator and returns a value in [0, 1).
func (s *Seeded) Next() float64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return float64(x) / 4294967296.0
}

func utf16Units(value string) []uint16 {
	units := make([]uint16, 0, len(value))
	for _, r := range value {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}
