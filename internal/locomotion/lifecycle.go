// Package locomotion implements the Locomotion Controller (§4.1): the
// per-tick state machine that drives a mover.Unit from Done through Active
// path-following back to Done/Failed, delegating to internal/collision and
// internal/skid for the passes that run alongside it.
package locomotion

import (
	"context"

	"rtscore/internal/mover"
	"rtscore/internal/telemetry"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
	"rtscore/logging"
	movementlog "rtscore/logging/movement"
)

// Controller bundles the per-unit bookkeeping the tick algorithm needs beyond
// what lives on mover.Unit itself: the tuning constants threaded through every
// call and an optional metrics sink. Obstacle-avoidance throttle state is not
// held here; callers pass a steering.State per unit to Update.
type Controller struct {
	Tuning mover.TuningConstants

	// Metrics, if set, receives per-tick counters (collision resolutions,
	// skid transitions). Nil is a valid no-op value.
	Metrics telemetry.Metrics
}

// NewController returns a Controller configured with the given tuning
// constants.
func NewController(tuning mover.TuningConstants) *Controller {
	return &Controller{Tuning: tuning}
}

func (c *Controller) observe(key string, delta uint64) {
	if c.Metrics != nil {
		c.Metrics.Add(key, delta)
	}
}

// StartMoving transitions u to Active, clears idle/distance bookkeeping, and
// requests a path to goal (§4.1: "A call while already Active first performs
// an internal stop").
func (c *Controller) StartMoving(u *mover.Unit, moveDef mover.MoveDefinition, goal mover.Goal, view worldview.View) {
	if u == nil {
		return
	}
	if u.Progress == mover.Active {
		c.stopEngine(u, view)
	}

	u.Goal = goal
	u.NumIdlingUpdates = 0
	u.NumIdlingSlowUpdates = 0
	u.PrevWayPointDist = 0
	u.CurrWayPointDist = 0
	u.AtEndOfPath = false
	u.Progress = mover.Active

	c.startEngine(u, moveDef, view)
}

// StopMoving releases the path handle and returns u to Done.
func (c *Controller) StopMoving(u *mover.Unit, view worldview.View) {
	if u == nil {
		return
	}
	c.stopEngine(u, view)
	u.WantedSpeed = 0
	u.Progress = mover.Done
}

// startEngine requests a path from the planner and, if granted, seeds the
// waypoint pair (§4.1 StartEngine).
func (c *Controller) startEngine(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View) {
	if view.Planner == nil {
		return
	}
	u.PathRequestTick = view.Tick
	handle := view.Planner.RequestPath(u.ID, moveDef, u.Position, goalVec(u.Goal), u.Goal.GoalRadius, true)
	if handle == 0 {
		u.Progress = mover.Failed
		return
	}
	u.Path = handle
	u.Flags.Moving = true
	u.CurrWayPoint = view.Planner.NextWayPoint(u.ID, handle, u.Position, searchRadius, true)
	u.NextWayPoint = view.Planner.NextWayPoint(u.ID, handle, u.Position, searchRadius, true)
}

// stopEngine deletes the path handle and snaps currWayPoint to the
// braking-distance-projected stop point (§4.1 StopEngine: "currWayPoint :=
// Here()").
func (c *Controller) stopEngine(u *mover.Unit, view worldview.View) {
	if u.Path != 0 && view.Planner != nil {
		view.Planner.DeletePath(u.Path)
	}
	u.Path = 0
	u.Flags.Moving = false
	stopPoint := here(u)
	u.CurrWayPoint = mover.Waypoint{X: stopPoint.X, Y: stopPoint.Y, Z: stopPoint.Z}
	u.NextWayPoint = mover.NoMoreWaypoint
}

// here projects the unit's braking distance forward along its current
// velocity to estimate where it will actually come to rest.
func here(u *mover.Unit) vecmath.Vec3 {
	if u.Bounds.DecRate <= 0 || u.CurrentSpeed <= 0 {
		return u.Position
	}
	brakingDist := (u.CurrentSpeed * u.CurrentSpeed) / (2 * u.Bounds.DecRate)
	dir := vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}
	if u.Flags.Reversing {
		dir = dir.Mul(-1)
	}
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return u.Position.Add(dir.Mul(brakingDist))
}

// Arrived clears the engine, enqueues two benign wait commands so the
// command system advances past the completed move, fixes the head move
// command's recorded position, and flips the unit to Done (§4.1).
func (c *Controller) Arrived(u *mover.Unit, view worldview.View) {
	if u == nil {
		return
	}
	c.stopEngine(u, view)
	if view.Commands != nil {
		view.Commands.AppendWait(u.ID)
		view.Commands.AppendWait(u.ID)
		if view.Commands.HeadCommandIsPlainMove(u.ID) {
			view.Commands.SetMoveCommandPosition(u.ID, u.Position)
		}
	}
	u.Progress = mover.Done
}

// Fail flips u to Failed and emits a move-failed event on the event bus
// (§4.1 Fail).
func (c *Controller) Fail(u *mover.Unit, view worldview.View, reason string) {
	if u == nil {
		return
	}
	c.stopEngine(u, view)
	u.Progress = mover.Failed
	if view.Events == nil {
		return
	}
	ctx := view.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	movementlog.UnitMoveFailed(ctx, adaptBus(view.Events), view.Tick, entityRef(u.ID), reason)
}

// LeaveTransport nudges the unit slightly above ground so it doesn't clip
// terrain on unload (§4.1).
func (c *Controller) LeaveTransport(u *mover.Unit, view worldview.View) {
	if u == nil || view.Map == nil {
		return
	}
	ground := view.Map.GetHeightReal(u.Position.X, u.Position.Z)
	if u.Position.Y < ground+leaveTransportClearance {
		u.Position.Y = ground + leaveTransportClearance
	}
}

// KeepPointingTo requests an in-place rotation so the unit's facing covers
// target; aggressive widens the acceptable angular slack before re-aiming.
func (c *Controller) KeepPointingTo(u *mover.Unit, target vecmath.Vec3, aggressive bool, view worldview.View) {
	if u == nil {
		return
	}
	dx := target.X - u.Position.X
	dz := target.Z - u.Position.Z
	wanted := vecmath.FromXZ(dx, dz)

	slack := int32(keepPointingSlack)
	if aggressive {
		slack = int32(keepPointingSlackAggressive)
	}
	delta := u.Heading.Delta(wanted)
	if vecmath.AbsInt32(delta) <= slack {
		return
	}

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
}

const (
	searchRadius                 = 1.25 * mover.GridSquareSize
	leaveTransportClearance      = 2.0
	keepPointingSlack            = 1 << 12
	keepPointingSlackAggressive  = 1 << 14
)

func goalVec(g mover.Goal) vecmath.Vec3 {
	return vecmath.Vec3{X: g.X, Z: g.Z}
}

func entityRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindUnknown}
}

// busAdapter bridges worldview.EventBus to logging.Publisher so the typed
// event constructors in logging/movement can be reused unchanged.
type busAdapter struct {
	bus worldview.EventBus
}

func (a busAdapter) Publish(ctx context.Context, event logging.Event) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(ctx, event.Tick, string(event.Type), event.Actor.ID, event.Payload)
}

func adaptBus(bus worldview.EventBus) logging.Publisher {
	return busAdapter{bus: bus}
}
