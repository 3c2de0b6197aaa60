package sim

import "layer-survivors/server/internal/world"

// DiagonalFactor normalizes diagonal movement.
const DiagonalFactor = 0.707

// Input is the set of movement directions held during a tick.
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Vector converts the held directions into a movement vector in screen space
// (y grows downward). Opposing directions cancel.
func (in Input) Vector() world.Vec2 {
	var v world.Vec2
	if in.Up {
		v.Y--
	}
	if in.Down {
		v.Y++
	}
	if in.Left {
		v.X--
	}
	if in.Right {
		v.X++
	}
	if v.X != 0 && v.Y != 0 {
		v = v.Scale(DiagonalFactor)
	}
	return v
}

// Idle reports whether no direction is held.
func (in Input) Idle() bool {
	return in.Vector() == (world.Vec2{})
}
