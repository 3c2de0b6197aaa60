package rng

// Scripted replays a fixed sequence of values, cycling when exhausted. Tests
// use it to force specific rolls through generation code.
type Scripted struct {
	Values []float64
	pos    int
}

// NewScripted constructs a scripted source over the provided values.
func NewScripted(values ...float64) *Scripted {
	return &Scripted{Values: append([]float64(nil), values...)}
}

// Next returns the next scripted value. An empty script always yields zero.
func (s *Scripted) Next() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 0.999999
	}
	return v
}

// Calls reports how many values have been consumed.
func (s *Scripted) Calls() int {
	return s.pos
}
