// Package worldview defines the external collaborator contracts the
// locomotion core consumes (§6 of the specification): the path planner, the
// per-unit path controller, map services, the spatial index, the command
// queue, and the event bus. None of these are implemented here — only
// internal/navgrid provides a reference PathPlanner for tests and the
// cmd/simtick driver.
//
// Per §9's "Global mutable state" redesign note, the locomotion tick never
// reaches for a package-level singleton: a View bundling these collaborators
// is threaded through every call instead.
package worldview

import (
	"context"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
)

// PathPlanner is the out-of-scope path-planning service (§6).
type PathPlanner interface {
	// RequestPath returns a handle, or 0 on failure.
	RequestPath(unitID string, moveDef mover.MoveDefinition, from, to vecmath.Vec3, radius float64, synced bool) mover.PathHandle
	// NextWayPoint returns the next waypoint along handle. A waypoint with
	// Y == mover.SentinelY means "not yet known"; mover.NoMoreWaypoint means
	// "no more".
	NextWayPoint(unitID string, handle mover.PathHandle, referencePos vecmath.Vec3, searchRadius float64, synced bool) mover.Waypoint
	// UpdatePath is a tick hook allowing the planner to revise internal state.
	UpdatePath(unitID string, handle mover.PathHandle)
	// PathUpdated reports true exactly once after the planner revises a path
	// in place (e.g. terrain change), without a full re-plan.
	PathUpdated(handle mover.PathHandle) bool
	// DeletePath releases a handle.
	DeletePath(handle mover.PathHandle)
}

// PathController is a per-unit policy object that may veto or shape the
// locomotion controller's speed/heading changes (§6).
type PathController interface {
	GetDeltaSpeed(handle mover.PathHandle, target, current, accel, decel float64, wantReverse, reversing bool) float64
	GetDeltaHeading(handle mover.PathHandle, wanted, current vecmath.Heading16, turnRate int32) int32
	AllowSetTempGoalPosition(handle mover.PathHandle, point vecmath.Vec3) bool
	SetTempGoalPosition(handle mover.PathHandle, point vecmath.Vec3)
	SetRealGoalPosition(handle mover.PathHandle, point vecmath.Vec3)
	IgnoreCollision(colliderID, collideeID string) bool
}

// BlockMask reports the bits returned by SquareIsBlocked.
type BlockMask uint8

const (
	BlockNone      BlockMask = 0
	BlockStructure BlockMask = 1 << 0
	BlockMobile    BlockMask = 1 << 1
	BlockTerrain   BlockMask = 1 << 2
)

// MapServices is the terrain/blocking-map service (§6).
type MapServices interface {
	GetHeightReal(x, z float64) float64
	GetHeightAboveWater(x, z float64) float64
	GetNormal(x, z float64) vecmath.Vec3
	GetSlope(x, z float64) float64
	// GetPosSpeedMod returns the terrain speed modifier at pos for moveDef,
	// optionally accounting for a travel direction.
	GetPosSpeedMod(moveDef mover.MoveDefinition, pos vecmath.Vec3, dir *vecmath.Vec3) float64
	// SquareIsBlocked reports the block mask of the grid square containing
	// pos for moveDef, excluding the given unit.
	SquareIsBlocked(moveDef mover.MoveDefinition, pos vecmath.Vec3, excludeUnitID string) BlockMask
	// TestMoveSquare reports whether pos is passable for moveDef, used to
	// gate every collision push (§4.2) before it is applied.
	TestMoveSquare(moveDef mover.MoveDefinition, pos vecmath.Vec3, excludeUnitID string) bool
}

// Neighbor is a solid object returned by spatial index queries.
type Neighbor struct {
	ID        string
	Position  vecmath.Vec3
	Velocity  vecmath.Vec3
	Radius    float64
	Footprint mover.Footprint
	Mass      float64
	MoveDef   *mover.MoveDefinition // nil for static features/structures
	Flags     mover.ModeFlags
	Ally      bool
	CommandQueueLen int
}

// SpatialIndex answers radius-bounded neighbor queries (§6).
type SpatialIndex interface {
	GetUnitsExact(center vecmath.Vec3, radius float64) []Neighbor
	GetFeaturesExact(center vecmath.Vec3, radius float64) []Neighbor
	GetSolidsExact(center vecmath.Vec3, radius float64) []Neighbor
}

// CommandQueue exposes read access to the order queue head and limited
// mutation (§6): appending Wait commands and updating the recorded move
// position on arrival.
type CommandQueue interface {
	HeadCommandIsPlainMove(unitID string) bool
	Len(unitID string) int
	AppendWait(unitID string)
	SetMoveCommandPosition(unitID string, pos vecmath.Vec3)
}

// EventBus is the fire-and-forget notification sink (§6). logging.Publisher
// has a different Publish signature and does not satisfy it directly; callers
// adapt between the two. See logging/movement and logging/collision for the
// typed event constructors.
type EventBus interface {
	Publish(ctx context.Context, tick uint64, eventType string, actorID string, payload any)
}

// View bundles the per-tick collaborator set passed into every locomotion,
// collision, skid, and steering call, replacing the package-level globals the
// original implementation used (§9).
type View struct {
	Ctx      context.Context
	Tick     uint64
	Planner  PathPlanner
	Map      MapServices
	Spatial  SpatialIndex
	Commands CommandQueue
	Events   EventBus
	ModInfo  mover.ModInfo
	Width    float64
	Height   float64
}
