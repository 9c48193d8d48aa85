package collision

import (
	"math"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
)

// Clamp limits value to the range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Rect is an axis-aligned XZ rectangle, used for both a mover's footprint and
// a static obstacle's occupied area.
type Rect struct {
	MinX, MinZ, MaxX, MaxZ float64
}

// FootprintRect returns the XZ rectangle a mover's footprint occupies when
// centered at pos.
func FootprintRect(pos vecmath.Vec3, fp mover.Footprint) Rect {
	hx, hz := fp.HalfExtentX(), fp.HalfExtentZ()
	return Rect{MinX: pos.X - hx, MaxX: pos.X + hx, MinZ: pos.Z - hz, MaxZ: pos.Z + hz}
}

// Overlaps reports whether two rectangles intersect, with optional padding
// applied to both (mirrors internal/world/geometry.go's ObstaclesOverlap,
// generalized from fixed obstacle rects to arbitrary footprint rects).
func (r Rect) Overlaps(o Rect, padding float64) bool {
	return r.MinX-padding < o.MaxX+padding &&
		r.MaxX+padding > o.MinX-padding &&
		r.MinZ-padding < o.MaxZ+padding &&
		r.MaxZ+padding > o.MinZ-padding
}

// ClosestPoint returns the point in r closest to p.
func (r Rect) ClosestPoint(x, z float64) (float64, float64) {
	return Clamp(x, r.MinX, r.MaxX), Clamp(z, r.MinZ, r.MaxZ)
}

// CircleRectOverlap reports whether a circle of the given radius centered at
// (cx, cz) intersects rect (mirrors internal/world/geometry.go's
// CircleRectOverlap generalized to a footprint Rect rather than an Obstacle).
func CircleRectOverlap(cx, cz, radius float64, rect Rect) bool {
	px, pz := rect.ClosestPoint(cx, cz)
	dx := cx - px
	dz := cz - pz
	return dx*dx+dz*dz < radius*radius
}

// SeparationXZ returns the (unnormalized) separation vector from b to a
// (a minus b) and the distance between them, with a degenerate fallback along
// +X when the points coincide (matches internal/world/movement.go's
// distSq==0 handling). Callers normalize dx/dz themselves when they need a
// unit direction.
func SeparationXZ(ax, az, bx, bz float64) (dx, dz, dist float64) {
	dx = ax - bx
	dz = az - bz
	distSq := dx*dx + dz*dz
	if distSq == 0 {
		return 1, 0, 0
	}
	dist = math.Sqrt(distSq)
	return dx, dz, dist
}
