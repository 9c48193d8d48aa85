package skid

import (
	"rtscore/internal/collision"
	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

// CheckCollisionSkid performs the same radius-based neighbor iteration as the
// normal Collision Resolver, but applies the elastic velocity change along the
// separation axis instead of the position-only push used for normal
// locomotion. Only u's velocity changes; neighbors are not modified.
//
// colliderCrushResistance always refers to the skidding unit itself, not the
// neighbor being checked. The crush comparison it gates has no effect: no
// neighbor is crushed or killed here.
func CheckCollisionSkid(u *mover.Unit, colliderCrushResistance bool, spatial worldview.SpatialIndex) {
	if u == nil || spatial == nil {
		return
	}

	radius := u.Radius * 2
	if radius <= 0 {
		radius = mover.GridSquareSize
	}

	neighbors := spatial.GetUnitsExact(u.Position, radius)
	for _, n := range neighbors {
		if n.ID == u.ID || n.Flags.Flying {
			continue
		}

		dx, dz, dist := collision.SeparationXZ(n.Position.X, n.Position.Z, u.Position.X, u.Position.Z)
		minDist := u.Radius + n.Radius
		if dist >= minDist || dist == 0 {
			continue
		}

		sepDir := vecmath.Vec3{X: dx, Z: dz}.Normalize()

		selfMass := u.Mass
		otherMass := n.Mass
		totalMass := selfMass + otherMass
		if totalMass <= 0 {
			continue
		}

		relVel := u.Velocity.Sub(n.Velocity)
		closingSpeed := relVel.Dot(sepDir)
		if closingSpeed <= 0 {
			continue
		}

		// Elastic 1D exchange along the separation axis (equal-mass special
		// case swaps velocities; otherwise the standard weighted split).
		impulseMag := 2 * closingSpeed / totalMass
		u.Velocity = u.Velocity.Sub(sepDir.Mul(impulseMag * otherMass))

		if !colliderCrushResistance && selfMass*u.CurrentSpeed > otherMass*n.Velocity.Len() {
			continue
		}
	}
}
