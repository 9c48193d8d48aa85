// Package vecmath provides the 3D vector and heading primitives shared by the
// locomotion, collision, skid, and steering packages.
package vecmath

import "math"

// Heading16 is a 16-bit signed angle where 0 points along +Z and one full
// circle spans 65536 discrete units. Arithmetic wraps modulo the circle.
type Heading16 int16

// FullCircle is the number of discrete units in one full turn.
const FullCircle = 1 << 16

// HalfCircle is half a turn. SlowUpdate uses it as the idling threshold for
// the fast idling counter; the counter itself is not capped at this value.
const HalfCircle = FullCircle / 2

// Add returns h+delta, wrapping modulo the full circle.
func (h Heading16) Add(delta int32) Heading16 {
	return Heading16(int32(h) + delta)
}

// Delta returns the shortest signed delta from h to target, in [-HalfCircle, HalfCircle).
func (h Heading16) Delta(target Heading16) int32 {
	return int32(target - h)
}

// Radians converts the heading to radians, 0 = +Z, increasing clockwise.
func (h Heading16) Radians() float64 {
	return float64(h) / FullCircle * 2 * math.Pi
}

// FromRadians converts radians to the nearest Heading16.
func FromRadians(rad float64) Heading16 {
	turns := rad / (2 * math.Pi)
	return Heading16(int32(math.Round(turns * FullCircle)))
}

// FromXZ derives a heading from a direction vector in the XZ plane (0 = +Z).
func FromXZ(dx, dz float64) Heading16 {
	if dx == 0 && dz == 0 {
		return 0
	}
	return FromRadians(math.Atan2(dx, dz))
}

// AbsInt32 is a small helper avoiding a math.Abs round-trip through float64
// for heading deltas used in idling/turn-penalty comparisons.
func AbsInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
