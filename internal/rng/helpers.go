package rng

import "math"

// Int returns an integer in [0, max). Non-positive max yields zero.
func Int(src Source, max int) int {
	if max <= 0 || src == nil {
		return 0
	}
	v := int(math.Floor(src.Next() * float64(max)))
	if v >= max {
		v = max - 1
	}
	return v
}

// IntRange returns an integer in [min, max], inclusive on both ends.
func IntRange(src Source, min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + Int(src, max-min+1)
}

// Float returns a value in [min, max).
func Float(src Source, min, max float64) float64 {
	if src == nil || max <= min {
		return min
	}
	return min + src.Next()*(max-min)
}

// Chance reports true with the supplied probability.
func Chance(src Source, probability float64) bool {
	if probability <= 0 || src == nil {
		return false
	}
	if probability >= 1 {
		return true
	}
	return src.Next() < probability
}

// Choice picks a uniformly random element of items.
func Choice[T any](src Source, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyInput
	}
	return items[Int(src, len(items))], nil
}

// Shuffle returns a Fisher–Yates shuffled copy of items. The input slice is
// left untouched.
func Shuffle[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := Int(src, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// WeightedChoice selects an index with probability proportional to its weight
// by cumulative subtraction. Floating point overrun falls back to the last
// index. Returns -1 for empty input.
func WeightedChoice(src Source, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return Int(src, len(weights))
	}
	remaining := src.Next() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		remaining -= w
		if remaining <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Derive builds an independent generator whose seed mixes the parent's
// current output with a label. Used to give subsystems their own streams.
func Derive(src Source, label string) *Seeded {
	base := uint32(src.Next() * 4294967296.0)
	return New(base ^ HashSeed(label))
}
