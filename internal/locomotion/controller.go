package locomotion

import (
	"context"
	"math"

	"rtscore/internal/collision"
	"rtscore/internal/mover"
	"rtscore/internal/skid"
	"rtscore/internal/steering"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
	movementlog "rtscore/logging/movement"
	skidlog "rtscore/logging/skid"
)

const (
	idlingPositionEpsilon = 0.01
	// pathRequestDelayTicks rate-limits a pathless Active unit's re-request
	// to once every this many ticks (§7 soft re-plan).
	pathRequestDelayTicks = 30
)

// Environment bundles the skid integration inputs the controller forwards
// unchanged to internal/skid each tick.
type Environment = skid.Environment

// DirectControl carries a locally driven unit's raw input for the
// first-person control surface (§6).
type DirectControl struct {
	Active       bool
	ForwardBack  float64 // -1..1
	LeftRight    float64 // -1..1, positive = right
	Aggressive   bool
}

// Update advances one simulation tick for u, implementing the six-step tick
// algorithm of §4.1. It returns whether the unit's position changed
// meaningfully.
func (c *Controller) Update(u *mover.Unit, moveDef mover.MoveDefinition, env Environment, direct DirectControl, st *steering.State, view worldview.View, dt float64) bool {
	if u == nil {
		return false
	}

	// Step 1: transported units do nothing.
	if u.Flags.Transported {
		return false
	}

	// Step 2: slope/skid/falling handoff.
	if u.Flags.Skidding {
		skid.UpdateSkid(u, env, dt)
		skid.CheckCollisionSkid(u, moveDef.CrushResistant, view.Spatial)
		if !u.Flags.Skidding {
			c.emitSkidEnded(u, view)
		}
		return true
	}
	if u.Flags.Falling {
		skid.UpdateControlledDrop(u, env, 1, dt, nil)
		return true
	}
	if view.Map != nil {
		slope := view.Map.GetSlope(u.Position.X, u.Position.Z)
		if slope > moveDef.MaxSlope && moveDef.MaxSlope > 0 {
			groundNormal := view.Map.GetNormal(u.Position.X, u.Position.Z)
			impulse := vecmath.Vec3{Y: -1}
			if skid.CanApplyImpulse(u, impulse, groundNormal, c.Tuning.ImpulseSkidThresholdSq, nil) {
				c.emitSkidStarted(u, view, impulse)
			}
			return true
		}
	}

	prevPos := u.Position
	prevHeading := u.Heading

	// Step 3: stunned/under-construction units command zero speed but still
	// run position/terrain/collision passes.
	var fr followResult
	if u.Flags.Stunned || u.Flags.BeingBuilt {
		u.WantedSpeed = 0
		fr = followResult{desiredDir: vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}}
	} else if direct.Active {
		fr = c.runDirectControl(u, direct, view)
	} else {
		fr = c.FollowPath(u, moveDef, view)
		if u.Progress != mover.Active {
			return false
		}
		fr.desiredDir = steering.Avoid(u, moveDef, st, fr.desiredDir, u.Path != 0, u.CurrWayPointDist, view, view.Spatial)
	}

	if direct.Active {
		rederiveBasis(u, view)
	} else {
		c.ChangeHeading(u, fr.desiredDir, view)
	}
	if !(u.Flags.Stunned || u.Flags.BeingBuilt) && !direct.Active {
		c.ChangeSpeed(u, moveDef, fr, view)
	}

	// Step 5: integrate, water-line, collide.
	velocity := GetNewSpeedVector(u, 0, 0, view.ModInfo.AllowGroundUnitGravity, groundNormalAt(u, view), view.ModInfo.AllowHoverUnitStrafing)
	u.Velocity = velocity
	UpdateOwnerPos(u, moveDef, view, dt)
	ApplyWaterLine(u, view)

	outcome := collision.ResolveUnit(u, moveDef, view)
	resolutions := uint64(len(outcome.Killed))
	if outcome.Displacement.Len() > 0 {
		resolutions++
	}
	if resolutions > 0 {
		c.observe("collision.resolutions", resolutions)
	}
	if outcome.RepathRequested && u.Progress == mover.Active {
		c.startEngine(u, moveDef, view)
	}

	// Step 6: idling classification.
	moved := c.classifyTick(u, prevPos, prevHeading)

	if !direct.Active && view.Planner != nil && u.Path != 0 {
		view.Planner.UpdatePath(u.ID, u.Path)
	}

	if moved && view.Events != nil {
		c.emitMoved(u, view)
	}

	return moved
}

// classifyTick implements §4.1 step 6 / §4.1.1: idling requires a
// sub-epsilon XZ position change AND non-sentinel waypoints AND a
// sub-turn-rate heading change; otherwise compare the per-axis waypoint
// progress against a quadratic projection of the displacement onto the
// waypoint direction.
func (c *Controller) classifyTick(u *mover.Unit, prevPos vecmath.Vec3, prevHeading vecmath.Heading16) bool {
	dx := u.Position.X - prevPos.X
	dz := u.Position.Z - prevPos.Z
	posDelta := math.Hypot(dx, dz)
	headingDelta := vecmath.AbsInt32(prevHeading.Delta(u.Heading))

	sentinel := u.CurrWayPoint.IsSentinel() || u.NextWayPoint.IsSentinel()

	idling := posDelta < idlingPositionEpsilon && !sentinel && headingDelta < int32(u.Bounds.TurnRate)
	if !idling && !sentinel {
		projected := u.PrevWayPointDist - u.CurrWayPointDist
		idling = projected*projected < posDelta*posDelta
	}

	if idling {
		if u.NumIdlingUpdates < math.MaxInt32 {
			u.NumIdlingUpdates++
		}
	} else if u.NumIdlingUpdates > 0 {
		u.NumIdlingUpdates--
	}

	return !idling
}

func groundNormalAt(u *mover.Unit, view worldview.View) vecmath.Vec3 {
	if view.Map == nil {
		return vecmath.Vec3{Y: 1}
	}
	return view.Map.GetNormal(u.Position.X, u.Position.Z)
}

func (c *Controller) emitMoved(u *mover.Unit, view worldview.View) {
	ctx := view.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	movementlog.UnitMoved(ctx, adaptBus(view.Events), view.Tick, entityRef(u.ID), movementlog.MovedPayload{
		X: u.Position.X, Y: u.Position.Y, Z: u.Position.Z,
		Heading:      int32(u.Heading),
		CurrentSpeed: u.CurrentSpeed,
		Reversing:    u.Flags.Reversing,
	})
}

func (c *Controller) emitSkidStarted(u *mover.Unit, view worldview.View, impulse vecmath.Vec3) {
	c.observe("skid.entries", 1)
	if view.Events == nil {
		return
	}
	ctx := view.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	skidlog.SkidStarted(ctx, adaptBus(view.Events), view.Tick, entityRef(u.ID), skidlog.StartedPayload{
		ImpulseX: impulse.X, ImpulseY: impulse.Y, ImpulseZ: impulse.Z,
		Flying: u.Flags.Flying,
	})
}

func (c *Controller) emitSkidEnded(u *mover.Unit, view worldview.View) {
	c.observe("skid.exits", 1)
	if view.Events == nil {
		return
	}
	ctx := view.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	skidlog.SkidEnded(ctx, adaptBus(view.Events), view.Tick, entityRef(u.ID), skidlog.EndedPayload{
		X: u.Position.X, Y: u.Position.Y, Z: u.Position.Z,
	})
}

// SlowUpdate performs the coarse watchdog (§4.1): restarts or abandons a
// stuck path, restarts after the re-request delay if pathless, and clamps
// the unit back inside the playable rectangle.
func (c *Controller) SlowUpdate(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View) {
	if u == nil {
		return
	}

	if u.Progress == mover.Active {
		if u.Path != 0 {
			if u.NumIdlingUpdates > int32(vecmath.HalfCircle) {
				u.NumIdlingSlowUpdates++
				if u.NumIdlingSlowUpdates < c.Tuning.SlowUpdateIdlingCeiling {
					c.startEngine(u, moveDef, view)
				} else {
					c.Fail(u, view, "exceeded slow-update idling ceiling")
				}
			}
		} else if view.Tick >= u.PathRequestTick+pathRequestDelayTicks {
			c.startEngine(u, moveDef, view)
		}
	}

	clampToWorld(u, view)
}

func clampToWorld(u *mover.Unit, view worldview.View) {
	if view.Width <= 0 || view.Height <= 0 {
		return
	}
	half := 0.0
	if u.Footprint.XSize > 0 {
		half = u.Footprint.HalfExtentX()
	}
	u.Position.X = collision.Clamp(u.Position.X, half, view.Width-half)
	halfZ := 0.0
	if u.Footprint.ZSize > 0 {
		halfZ = u.Footprint.HalfExtentZ()
	}
	u.Position.Z = collision.Clamp(u.Position.Z, halfZ, view.Height-halfZ)
}
