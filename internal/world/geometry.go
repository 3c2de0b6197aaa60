package world

import "math"

// Vec2 is a 2D vector in simulation units (pixels).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2           { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2           { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2      { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) Len() float64              { return math.Hypot(v.X, v.Y) }
func (v Vec2) DistanceTo(o Vec2) float64 { return o.Sub(v).Len() }

// Normalized returns the unit vector in the direction of v. A zero vector
// stays zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Rotated returns v rotated by angle radians.
func (v Vec2) Rotated(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Direction returns the unit vector from `from` towards `to`, or zero when the
// points coincide.
func Direction(from, to Vec2) Vec2 {
	return to.Sub(from).Normalized()
}

// Bounds is the visible simulation rectangle anchored at the origin.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp keeps pos inside the rectangle inset by margin on every side.
func (b Bounds) Clamp(pos Vec2, margin float64) Vec2 {
	return Vec2{
		X: Clamp(pos.X, margin, b.Width-margin),
		Y: Clamp(pos.Y, margin, b.Height-margin),
	}
}

// Contains reports whether pos lies within the rectangle.
func (b Bounds) Contains(pos Vec2) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= b.Width && pos.Y <= b.Height
}

// Outside reports whether pos lies further than slack beyond any edge.
func (b Bounds) Outside(pos Vec2, slack float64) bool {
	return pos.X < -slack || pos.Y < -slack || pos.X > b.Width+slack || pos.Y > b.Height+slack
}

// Center returns the middle of the rectangle.
func (b Bounds) Center() Vec2 {
	return Vec2{X: b.Width / 2, Y: b.Height / 2}
}

// Clamp bounds value to [min, max]. When max < min the lower bound wins.
func Clamp(value, min, max float64) float64 {
	if value > max {
		value = max
	}
	if value < min {
		value = min
	}
	return value
}

// Finite replaces NaN and infinities with fallback.
func Finite(value, fallback float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	return value
}
