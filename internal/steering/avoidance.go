// Package steering implements the short-horizon Obstacle Avoidance filter
// (§4.4): a throttled perturbation of the desired waypoint direction that
// anticipates moving neighbors before the Collision Resolver engages.
package steering

import (
	"math"

	"github.com/chewxy/math32"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

// State carries the per-mover bookkeeping the filter needs across ticks: the
// throttle counter and the previous blended direction for temporal smoothing.
type State struct {
	NextAllowedTick uint64
	PrevDirection   vecmath.Vec3
}

const (
	neighborSearchRadiusFactor = 2.0
	ignoreAngleCos             = -0.5 // cos(120deg)
	gateAngleCos               = 0.0  // cos(90deg)
	falloffRadiusFactor        = 5.0
	blendDesiredWeight         = 0.5
	smoothPrevWeight           = 0.7
	smoothNewWeight            = 0.3
)

// Avoid computes the steering-adjusted desired direction for u given its raw
// waypoint direction. With no path, or when the desired direction is already
// >90 degrees from current facing, the raw direction is returned unchanged;
// while throttled, the previous result (st.PrevDirection) is returned.
func Avoid(u *mover.Unit, moveDef mover.MoveDefinition, st *State, desired vecmath.Vec3, hasPath bool, goalDist float64, view worldview.View, spatial worldview.SpatialIndex) vecmath.Vec3 {
	if u == nil || st == nil {
		return desired
	}
	if !hasPath {
		return desired
	}
	if view.Tick < st.NextAllowedTick {
		return st.PrevDirection
	}

	frontXZ := vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}.Normalize()
	desiredXZ := vecmath.Vec3{X: desired.X, Z: desired.Z}
	if desiredXZ.Len() > 0 {
		desiredXZ = desiredXZ.Normalize()
	}
	if frontXZ.Dot(desiredXZ) < gateAngleCos {
		st.NextAllowedTick = view.Tick + 1
		st.PrevDirection = desired
		return desired
	}

	searchRadius := math.Max(u.CurrentSpeed, 1) * neighborSearchRadiusFactor * u.Radius
	var neighbors []worldview.Neighbor
	if spatial != nil {
		neighbors = spatial.GetSolidsExact(u.Position, searchRadius)
	}

	avoidance := vecmath.Zero3
	for _, n := range neighbors {
		if n.ID == u.ID {
			continue
		}
		if n.Flags.Flying || n.Flags.Skidding {
			continue
		}
		if n.MoveDef != nil && !moveDef.Collides(*n.MoveDef) {
			continue
		}

		toNeighbor := n.Position.Sub(u.Position)
		toNeighbor.Y = 0
		dist := toNeighbor.Len()
		if dist == 0 || dist > goalDist {
			continue
		}
		dir := toNeighbor.Mul(1 / dist)

		if frontXZ.Dot(dir) < ignoreAngleCos {
			continue
		}
		if !n.Flags.Moving && n.Ally {
			continue // ignore idling allies (§4.4); Moving is the maintained idle indicator
		}

		lateral := u.Basis.Right.Dot(dir)
		turnSign := 1.0
		if lateral < 0 {
			turnSign = -1.0
		}
		// Anti-parallel (head-on) encounters: force both parties to the same
		// turn sign so they "pass on the right" rather than mirror-steering
		// into each other.
		relFront := vecmath.Vec3{X: n.Velocity.X, Z: n.Velocity.Z}
		if relFront.Len() > 0 {
			relFrontDir := relFront.Normalize()
			if frontXZ.Dot(relFrontDir) < -0.7 {
				turnSign = 1.0
			}
		}

		radiusSum := u.Radius + n.Radius
		if radiusSum <= 0 {
			radiusSum = mover.GridSquareSize
		}
		falloff := 1 - math.Min(1, dist/(falloffRadiusFactor*radiusSum))
		massShare := n.Mass / (u.Mass + n.Mass)

		// Per-neighbor directness: how squarely ahead the neighbor sits,
		// evaluated every candidate per tick so it stays on the float32 path
		// rather than promoting to float64 for one trig call.
		angle := math32.Acos(clamp32(float32(frontXZ.Dot(dir)), -1, 1))
		directness := float64(1 - angle/math32.Pi)
		if directness < 0 {
			directness = 0
		}

		magnitude := directness*0.9 + 0.1
		magnitude *= falloff * massShare

		right := u.Basis.Right.Mul(turnSign * magnitude)
		avoidance = avoidance.Add(right)
	}

	blended := desiredXZ.Mul(blendDesiredWeight).Add(avoidance)
	if blended.Len() > 0 {
		blended = blended.Normalize()
	} else {
		blended = desiredXZ
	}

	smoothed := st.PrevDirection.Mul(smoothPrevWeight).Add(blended.Mul(smoothNewWeight))
	if smoothed.Len() > 0 {
		smoothed = smoothed.Normalize()
	}

	st.PrevDirection = smoothed
	st.NextAllowedTick = view.Tick + 1
	return smoothed
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
