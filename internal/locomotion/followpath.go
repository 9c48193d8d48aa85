package locomotion

import (
	"math"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

const (
	turnAngleToleranceCos     = 0.995 // §4.1 GetNextWayPoint: "nearly aligned"
	nextWaypointSearchSquares = 1.25
)

// followResult carries what FollowPath decided this tick, consumed by the
// caller to drive ChangeHeading/Obstacle Avoidance/ChangeSpeed.
type followResult struct {
	desiredDir  vecmath.Vec3
	wantReverse bool
	atGoal      bool
}

// FollowPath is the normal-state path-following branch of the tick algorithm
// (§4.1 FollowPath).
func (c *Controller) FollowPath(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View) followResult {
	if u.Path == 0 {
		u.WantedSpeed = 0
		return followResult{desiredDir: vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}}
	}

	u.PrevWayPointDist = u.CurrWayPointDist
	pdx := u.CurrWayPoint.X - u.Position.X
	pdz := u.CurrWayPoint.Z - u.Position.Z
	u.CurrWayPointDist = math.Hypot(pdx, pdz)

	widened := widenedGoalRadius(u)
	gdx := u.Goal.X - u.Position.X
	gdz := u.Goal.Z - u.Position.Z
	atGoal := gdx*gdx+gdz*gdz < widened*widened

	if !u.AtEndOfPath {
		c.getNextWayPoint(u, moveDef, view)
	} else if atGoal {
		c.Arrived(u, view)
		return followResult{atGoal: true}
	}

	dx := u.CurrWayPoint.X - u.Position.X
	dz := u.CurrWayPoint.Z - u.Position.Z
	dist := math.Hypot(dx, dz)
	dir := vecmath.Vec3{}
	if dist > 1e-6 {
		dir = vecmath.Vec3{X: dx / dist, Z: dz / dist}
	} else {
		dir = vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}
	}

	wantReverse := c.wantReverse(u, dir)
	desired := dir
	if wantReverse {
		desired = dir.Mul(-1)
	}

	return followResult{desiredDir: desired, wantReverse: wantReverse, atGoal: atGoal}
}

// widenedGoalRadius applies the §4.1.1 arrival-tolerance growth:
// goalRadius x (1 + numIdlingSlowUpdates).
func widenedGoalRadius(u *mover.Unit) float64 {
	radius := u.Goal.GoalRadius
	if radius <= 0 {
		radius = mover.GridSquareSize
	}
	return radius * (1 + float64(u.NumIdlingSlowUpdates))
}

// getNextWayPoint implements GetNextWayPoint / CanGetNextWayPoint (§4.1).
func (c *Controller) getNextWayPoint(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View) {
	if u.CurrWayPoint.IsSentinel() || u.NextWayPoint.IsSentinel() {
		// Still pending: re-fetch the unresolved waypoints, never advance.
		if view.Planner != nil {
			if u.CurrWayPoint.IsSentinel() {
				u.CurrWayPoint = view.Planner.NextWayPoint(u.ID, u.Path, u.Position, searchRadius, true)
			}
			if !u.CurrWayPoint.IsSentinel() && u.NextWayPoint.IsSentinel() {
				u.NextWayPoint = view.Planner.NextWayPoint(u.ID, u.Path, u.Position, searchRadius, true)
			}
		}
		return
	}

	if view.Planner != nil && view.Planner.PathUpdated(u.Path) {
		u.NextWayPoint = view.Planner.NextWayPoint(u.ID, u.Path, u.Position, searchRadius, true)
		return
	}

	if pc, ok := view.Planner.(worldview.PathController); ok {
		if !pc.AllowSetTempGoalPosition(u.Path, vecmath.Vec3{X: u.NextWayPoint.X, Y: u.NextWayPoint.Y, Z: u.NextWayPoint.Z}) {
			return
		}
	}

	turnRadius := turningCircleDiameter(u) / 2
	if u.CurrWayPointDist > 2*turnRadius {
		return
	}

	if u.CurrWayPointDist > mover.GridSquareSize {
		dir := vecmath.Vec3{X: u.CurrWayPoint.X - u.Position.X, Z: u.CurrWayPoint.Z - u.Position.Z}
		if dir.Len() > 0 {
			dir = dir.Normalize()
			front := vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}.Normalize()
			if front.Dot(dir) >= turnAngleToleranceCos {
				return
			}
		}
	}

	if view.Map != nil && segmentBlocked(u, moveDef, view) {
		return
	}

	widened := widenedGoalRadius(u)
	gdx := u.Goal.X - u.CurrWayPoint.X
	gdz := u.Goal.Z - u.CurrWayPoint.Z
	if gdx*gdx+gdz*gdz < widened*widened {
		u.AtEndOfPath = true
		u.CurrWayPoint = mover.Waypoint{X: u.Goal.X, Y: u.CurrWayPoint.Y, Z: u.Goal.Z}
		u.NextWayPoint = mover.Waypoint{X: u.Goal.X, Y: u.CurrWayPoint.Y, Z: u.Goal.Z}
		return
	}

	u.CurrWayPoint = u.NextWayPoint
	if view.Planner == nil {
		return
	}
	next := view.Planner.NextWayPoint(u.ID, u.Path, u.Position, nextWaypointSearchSquares*mover.GridSquareSize, true)
	if next.IsSentinel() {
		c.Fail(u, view, "planner returned sentinel next waypoint")
		return
	}
	u.NextWayPoint = next

	if view.Map != nil {
		blocked := view.Map.SquareIsBlocked(moveDef, vecmath.Vec3{X: u.CurrWayPoint.X, Z: u.CurrWayPoint.Z}, u.ID)
		if blocked&worldview.BlockStructure != 0 {
			c.startEngine(u, moveDef, view)
		}
	}
}

func turningCircleDiameter(u *mover.Unit) float64 {
	if u.Bounds.TurnRate <= 0 || u.CurrentSpeed <= 0 {
		return 0
	}
	radiansPerTick := float64(u.Bounds.TurnRate) / vecmath.FullCircle * 2 * math.Pi
	if radiansPerTick <= 0 {
		return 0
	}
	return 2 * u.CurrentSpeed / radiansPerTick
}

// segmentBlocked sweeps the grid squares between the unit and currWayPoint
// for structure-blocked or impassable-ground squares.
func segmentBlocked(u *mover.Unit, moveDef mover.MoveDefinition, view worldview.View) bool {
	steps := int(u.CurrWayPointDist/mover.GridSquareSize) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := u.Position.X + (u.CurrWayPoint.X-u.Position.X)*t
		z := u.Position.Z + (u.CurrWayPoint.Z-u.Position.Z)*t
		pos := vecmath.Vec3{X: x, Z: z}
		mask := view.Map.SquareIsBlocked(moveDef, pos, u.ID)
		if mask&(worldview.BlockStructure|worldview.BlockTerrain) != 0 {
			return true
		}
		if view.Map.GetPosSpeedMod(moveDef, pos, nil) <= 0.01 {
			return true
		}
	}
	return false
}

// wantReverse implements §4.1.3 WantReverse: compares forward vs reverse ETA
// synthetic estimates and picks reverse iff its ETA is strictly lower.
func (c *Controller) wantReverse(u *mover.Unit, dir vecmath.Vec3) bool {
	if !u.Flags.CanReverse {
		return false
	}
	if u.Bounds.AccRate <= 0 || u.Bounds.DecRate <= 0 || u.Bounds.TurnRate <= 0 || u.Bounds.MaxReverseSpeed <= 0 || u.Bounds.MaxSpeed <= 0 {
		return false
	}

	front := vecmath.Vec3{X: u.Basis.Front.X, Z: u.Basis.Front.Z}
	if front.Len() > 0 {
		front = front.Normalize()
	}
	angle := angleBetween(front, dir)

	turnTicks := func(a float64) float64 {
		return a / (float64(u.Bounds.TurnRate) / vecmath.FullCircle * 2 * math.Pi)
	}

	forwardETA := turnTicks(angle) + u.CurrentSpeed/u.Bounds.AccRate + u.CurrentSpeed/u.Bounds.DecRate + u.CurrWayPointDist/u.Bounds.MaxSpeed
	reverseETA := turnTicks(math.Pi-angle) + u.CurrentSpeed/u.Bounds.AccRate + u.CurrentSpeed/u.Bounds.DecRate + u.CurrWayPointDist/u.Bounds.MaxReverseSpeed

	return reverseETA < forwardETA
}

func angleBetween(a, b vecmath.Vec3) float64 {
	dot := a.Dot(b)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}
