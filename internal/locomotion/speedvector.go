package locomotion

import (
	"math"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

const (
	dragAir     = 0.9999
	dragGround  = 0.99
	slipStrafe  = 0.9999
	slipGround  = 0.95
)

// ChangeSpeed computes targetSpeed per §4.1 and asks the path controller to
// shape the delta, mutating u.CurrentSpeed.
func (c *Controller) ChangeSpeed(u *mover.Unit, moveDef mover.MoveDefinition, fr followResult, view worldview.View) {
	waitForPath := u.CurrWayPoint.IsSentinel() && u.NextWayPoint.IsSentinel()
	if waitForPath {
		u.WantedSpeed = 0
	}

	target := u.Bounds.MaxSpeed
	if fr.wantReverse {
		target = u.Bounds.MaxReverseSpeed
	}
	if waitForPath {
		target = 0
	}

	groundMod := 1.0
	if view.Map != nil {
		groundMod = view.Map.GetPosSpeedMod(moveDef, u.Position, nil)
	}
	target *= groundMod

	if headCommandIsBrakingGate(u, view) {
		brakingDist := (u.CurrentSpeed * u.CurrentSpeed) / math.Max(2*u.Bounds.DecRate, 1e-6)
		gdx := u.Goal.X - u.Position.X
		gdz := u.Goal.Z - u.Position.Z
		if gdx*gdx+gdz*gdz <= brakingDist*brakingDist {
			target = 0
		}
	}

	if !u.Flags.UseMainHeading {
		reqAngle := headingErrorRadians(u, fr.desiredDir)
		if reqAngle != 0 {
			maxTurnAngle := float64(u.Bounds.TurnRate) / vecmath.FullCircle * 2 * math.Pi
			scale := math.Min(maxTurnAngle/reqAngle, 1)
			scaled := target * scale
			if moveDef.TurnInPlace {
				if math.Abs(reqAngle) > float64(moveDef.TurnInPlaceAngle)/vecmath.FullCircle*2*math.Pi {
					target = scaled
				}
			} else if scaled > moveDef.TurnInPlaceSpeedFloor {
				target = scaled
			}
		}
	}

	if u.AtEndOfPath {
		turnPeriod := vecmath.FullCircle / math.Max(float64(u.Bounds.TurnRate), 1)
		cap := u.CurrWayPointDist * math.Pi / turnPeriod
		if target > cap {
			target = cap
		}
	}

	wanted := u.WantedSpeed * math.Max(groundMod, 1)
	if wanted > 0 && target > wanted {
		target = wanted
	}

	if u.Bounds.AccRate <= 0 && u.Bounds.DecRate <= 0 {
		u.CurrentSpeed = target
		return
	}

	if pc, ok := view.Planner.(worldview.PathController); ok {
		delta := pc.GetDeltaSpeed(u.Path, target, u.CurrentSpeed, u.Bounds.AccRate, u.Bounds.DecRate, fr.wantReverse, u.Flags.Reversing)
		u.CurrentSpeed += delta
	} else {
		u.CurrentSpeed = rampSpeed(u.CurrentSpeed, target, u.Bounds.AccRate, u.Bounds.DecRate)
	}
	if u.CurrentSpeed < 0 {
		u.CurrentSpeed = 0
	}
}

func rampSpeed(current, target, accRate, decRate float64) float64 {
	if target > current {
		next := current + accRate
		if next > target {
			return target
		}
		return next
	}
	next := current - decRate
	if next < target {
		return target
	}
	return next
}

func headCommandIsBrakingGate(u *mover.Unit, view worldview.View) bool {
	if view.Commands == nil {
		return true
	}
	return view.Commands.Len(u.ID) <= 2 && view.Commands.HeadCommandIsPlainMove(u.ID)
}

func headingErrorRadians(u *mover.Unit, desired vecmath.Vec3) float64 {
	front := vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}
	if front.Len() == 0 || desired.Len() == 0 {
		return 0
	}
	return angleBetween(front.Normalize(), desired)
}

// ChangeHeading delegates to the path controller for a bounded heading
// delta, applies it, and re-derives the basis (tilted to terrain unless
// upright or maxSpeed is zero) (§4.1 ChangeHeading).
func (c *Controller) ChangeHeading(u *mover.Unit, desired vecmath.Vec3, view worldview.View) {
	wanted := u.Heading
	if desired.Len() > 0 {
		wanted = vecmath.FromXZ(desired.X, desired.Z)
	}

	delta := u.Heading.Delta(wanted)
	if pc, ok := view.Planner.(worldview.PathController); ok {
		delta = pc.GetDeltaHeading(u.Path, wanted, u.Heading, u.Bounds.TurnRate)
	} else if vecmath.AbsInt32(delta) > u.Bounds.TurnRate {
		if delta > 0 {
			delta = u.Bounds.TurnRate
		} else {
			delta = -u.Bounds.TurnRate
		}
	}
	u.Heading = u.Heading.Add(delta)

	normal := vecmath.Vec3{Y: 1}
	tilt := u.Flags.Upright || u.Bounds.MaxSpeed <= 0
	if !tilt && view.Map != nil {
		normal = view.Map.GetNormal(u.Position.X, u.Position.Z)
	}
	u.Basis = vecmath.DeriveBasis(u.Heading, normal, tilt)
}

// rederiveBasis rebuilds the unit's basis from its current heading without
// turning, used after a direct-control heading write (§6) bypasses
// ChangeHeading's own turn step.
func rederiveBasis(u *mover.Unit, view worldview.View) {
	normal := vecmath.Vec3{Y: 1}
	tilt := u.Flags.Upright || u.Bounds.MaxSpeed <= 0
	if !tilt && view.Map != nil {
		normal = view.Map.GetNormal(u.Position.X, u.Position.Z)
	}
	u.Basis = vecmath.DeriveBasis(u.Heading, normal, tilt)
}

// GetNewSpeedVector produces the next-frame velocity per §4.1.3.
func GetNewSpeedVector(u *mover.Unit, hAcc, vAcc float64, gravityEnabled bool, groundNormal vecmath.Vec3, hovercraftStrafe bool) vecmath.Vec3 {
	if !gravityEnabled {
		sign := 1.0
		if u.Flags.Reversing {
			sign = -1
		}
		return u.Basis.Front.Mul(math.Abs(u.CurrentSpeed)*sign + hAcc)
	}

	up := vecmath.Vec3{Y: 1}
	if groundNormal.Len() > 0 {
		up = groundNormal.Normalize()
	}
	tangent := up.Cross(u.Basis.Right)
	if tangent.Len() > 0 {
		tangent = tangent.Normalize()
	}

	velTangent := tangent.Mul(u.Velocity.Dot(tangent))
	velUp := up.Mul(u.Velocity.Dot(up))

	velTangent = velTangent.Add(tangent.Mul(hAcc))
	velUp = velUp.Add(up.Mul(vAcc))

	drag := dragAir
	slip := slipStrafe
	if u.Physics == mover.OnGround {
		drag = dragGround
		slip = slipGround
	}
	velTangent = velTangent.Mul(drag)
	if hovercraftStrafe {
		velTangent = velTangent.Mul(slip)
	}

	return velTangent.Add(velUp)
}

// UpdateOwnerPos integrates velocity by simple Euler, reverts the step if the
// destination square is impassable, and derives reversing/currentSpeed from
// the velocity component along the flattened front direction (§4.1.3).
func UpdateOwnerPos(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View, dt float64) bool {
	candidate := u.Position.Add(u.Velocity.Mul(dt))
	if view.Map != nil && !view.Map.TestMoveSquare(moveDef, candidate, u.ID) {
		u.Velocity = vecmath.Zero3
		return false
	}

	moved := candidate.Sub(u.Position).Len() > 0
	u.Position = candidate

	flatFront := vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}
	if flatFront.Len() > 0 {
		flatFront = flatFront.Normalize()
	}
	along := u.Velocity.Dot(flatFront)
	u.Flags.Reversing = along < 0
	u.CurrentSpeed = math.Abs(along)

	return moved
}

// ApplyWaterLine implements §4.1.2: after integration, before collisions,
// clamp Y to the terrain/water contract. Falling and flying units skip this.
func ApplyWaterLine(u *mover.Unit, view worldview.View) {
	if u.Flags.Falling || u.Flags.Flying || view.Map == nil {
		return
	}
	terrain := view.Map.GetHeightReal(u.Position.X, u.Position.Z)
	switch {
	case u.Physics == mover.Floating:
		waterline := view.Map.GetHeightAboveWater(u.Position.X, u.Position.Z)
		u.Position.Y = math.Max(terrain, -waterline)
	case u.Physics == mover.Hovering || (u.Physics != mover.Submarine && gravityAffectedNonFloating(u)):
		u.Position.Y = math.Max(terrain, u.Position.Y)
	default:
		u.Position.Y = terrain
	}
}

func gravityAffectedNonFloating(u *mover.Unit) bool {
	return u.Physics == mover.OnGround
}
