// Package skid implements the ballistic sub-state a unit enters when an
// external impulse exceeds the residual-impulse threshold (§4.3). While
// skidding, normal locomotion does not mutate position or heading; this
// package owns that mutation until the unit lands and control returns to
// internal/locomotion.
package skid

import (
	"math"
	"math/rand"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

const (
	// Gravity is the downward acceleration applied to flying/falling units,
	// in world units per second^2.
	Gravity = 9.8 * 20 // scaled to the engine's world-unit convention

	groundSkidStopSpeed = 0.35
	waterDragFlying      = 0.95
	groundContactDampPos = 0.95
	groundContactBouncePos = 1.9
	groundContactDampNeg = 0.8
	collisionDamageScale = 0.02
)

// Environment bundles the terrain queries UpdateSkid needs each tick.
type Environment struct {
	Map              worldview.MapServices
	MinCollisionSpeed float64
	CollisionDamageEnabled bool
	DealCollisionDamage func(unitID string, amount float64)
}

// CanApplyImpulse accumulates impulse onto the unit's residual-impulse slot
// and, once its squared magnitude exceeds threshold, consumes it and enters
// skidding (§4.3).
func CanApplyImpulse(u *mover.Unit, impulse, groundNormal vecmath.Vec3, threshold float64, rng *rand.Rand) bool {
	if u == nil {
		return false
	}
	u.ResidualImpulse = u.ResidualImpulse.Add(impulse)
	magSq := u.ResidualImpulse.Dot(u.ResidualImpulse)
	if magSq <= threshold {
		return false
	}

	applied := u.ResidualImpulse
	u.ResidualImpulse = vecmath.Zero3
	u.Velocity = u.Velocity.Add(applied)
	u.Flags.Skidding = true
	u.Flags.UseMainHeading = false
	u.Skid.PriorPhysics = u.Physics

	if u.Velocity.Dot(groundNormal) > 0 {
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		u.Flags.Flying = true
		u.Skid.RotAxis = randomUnitAxis(rng)
		u.Skid.RotSpeed = 0
		u.Skid.RotAccel = (rng.Float64()*2 - 1) * 0.1
	}
	return true
}

func randomUnitAxis(rng *rand.Rand) vecmath.Vec3 {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	theta := rng.Float64() * 2 * math.Pi
	z := rng.Float64()*2 - 1
	r := math.Sqrt(math.Max(0, 1-z*z))
	return vecmath.Vec3{X: r * math.Cos(theta), Y: z, Z: r * math.Sin(theta)}
}

// UpdateSkid advances one tick of skidding/flying ballistic motion (§4.3).
func UpdateSkid(u *mover.Unit, env Environment, dt float64) {
	if u == nil || !u.Flags.Skidding {
		return
	}

	groundHeight := 0.0
	normal := vecmath.Vec3{Y: 1}
	waterline := 0.0
	if env.Map != nil {
		groundHeight = env.Map.GetHeightReal(u.Position.X, u.Position.Z)
		normal = env.Map.GetNormal(u.Position.X, u.Position.Z)
	}

	if u.Flags.Flying {
		updateFlying(u, env, dt, groundHeight, waterline)
		return
	}

	updateGroundSkid(u, normal, dt)

	speedLen := u.Velocity.Len()
	remaining := math.Max(1, speedLen/groundSkidStopSpeed)
	angularStep := u.Skid.RotSpeed * dt
	u.Skid.RotSpeed += u.Skid.RotAccel * dt
	if u.Skid.RotSpeed < 0 {
		u.Skid.RotSpeed = 0
	}
	u.Basis = RotateBasis(u.Basis, u.Skid.RotAxis, angularStep/remaining)

	nextHeight := 0.0
	if env.Map != nil {
		nextHeight = env.Map.GetHeightReal(u.Position.X+u.Velocity.X*dt, u.Position.Z+u.Velocity.Z*dt)
	}
	if nextHeight < groundHeight-Gravity*dt*dt {
		u.Flags.Flying = true
		return
	}
}

func updateFlying(u *mover.Unit, env Environment, dt, groundHeight, waterline float64) {
	u.Velocity.Y -= Gravity * dt
	if u.Position.Y < waterline {
		u.Velocity = u.Velocity.Mul(waterDragFlying)
	}
	u.Position = u.Position.Add(u.Velocity.Mul(dt))

	if u.Position.Y <= groundHeight {
		impactSpeed := -u.Velocity.Y
		u.Position.Y = groundHeight
		u.Flags.Flying = false

		normal := vecmath.Vec3{Y: 1}
		if env.Map != nil {
			normal = env.Map.GetNormal(u.Position.X, u.Position.Z)
		}
		normalComponent := u.Velocity.Dot(normal)
		if normalComponent > 0 {
			u.Velocity = u.Velocity.Sub(normal.Mul(normalComponent * (1 + groundContactDampPos)))
			u.Velocity = u.Velocity.Mul(groundContactDampPos)
		} else {
			u.Velocity = u.Velocity.Sub(normal.Mul(normalComponent * groundContactBouncePos))
			u.Velocity = u.Velocity.Mul(groundContactDampNeg)
		}

		if impactSpeed*u.Mass*collisionDamageScale > env.MinCollisionSpeed && env.CollisionDamageEnabled {
			if env.DealCollisionDamage != nil {
				env.DealCollisionDamage(u.ID, impactSpeed*u.Mass*collisionDamageScale)
			}
		}

		if u.Velocity.Len() < groundSkidStopSpeed {
			u.Flags.Skidding = false
			u.Physics = u.Skid.PriorPhysics
		}
	}
}

func updateGroundSkid(u *mover.Unit, normal vecmath.Vec3, dt float64) {
	speedLen := u.Velocity.Len()
	onSlope := normal.Y < 0.999

	if speedLen < groundSkidStopSpeed && !onSlope {
		u.Flags.Skidding = false
		u.Physics = u.Skid.PriorPhysics
		u.Velocity = vecmath.Zero3
		return
	}

	if onSlope {
		gravityVec := vecmath.Vec3{Y: -Gravity}
		slopeComponent := gravityVec.Sub(normal.Mul(gravityVec.Dot(normal)))
		u.Velocity = u.Velocity.Add(slopeComponent.Mul(dt))
		u.Velocity = u.Velocity.Mul(1 - 0.1*normal.Y)
	} else if speedLen > 0 {
		damp := math.Min(1, groundSkidStopSpeed/speedLen)
		u.Velocity = u.Velocity.Mul(damp)
	}

	u.Position = u.Position.Add(u.Velocity.Mul(dt))
}

// UpdateControlledDrop integrates the parachute/drop state (§4.3): gravity
// scaled by fallRate, non-positive vertical speed, underwater damping, and a
// landed callback for the unit's animation script.
func UpdateControlledDrop(u *mover.Unit, env Environment, fallRate, dt float64, onLanded func(unitID string)) {
	if u == nil || !u.Flags.Falling {
		return
	}

	u.Velocity.Y -= Gravity * fallRate * dt
	if u.Velocity.Y > 0 {
		u.Velocity.Y = 0
	}
	u.Position = u.Position.Add(u.Velocity.Mul(dt))

	groundHeight := 0.0
	if env.Map != nil {
		groundHeight = env.Map.GetHeightReal(u.Position.X, u.Position.Z)
	}
	if u.Position.Y < 0 {
		u.Velocity = u.Velocity.Mul(0.90)
	}
	if u.Position.Y <= groundHeight {
		u.Position.Y = groundHeight
		u.Flags.Falling = false
		if onLanded != nil {
			onLanded(u.ID)
		}
	}
}
