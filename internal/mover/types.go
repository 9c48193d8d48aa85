// Package mover defines the data model for a ground/amphibious unit under
// locomotion: kinematic state, move definitions, path handles, waypoints,
// goals, and the skid sub-state. It owns no behavior — see internal/locomotion,
// internal/collision, internal/skid, and internal/steering for that.
package mover

import "rtscore/internal/vecmath"

// GridSquareSize is the world-unit size of one terrain/blocking-map cell
// (glossary: "Grid square").
const GridSquareSize = 8.0

// HalfExtentX reports the footprint's half-width in world units.
func (f Footprint) HalfExtentX() float64 {
	return float64(f.XSize) * GridSquareSize / 2
}

// HalfExtentZ reports the footprint's half-depth in world units.
func (f Footprint) HalfExtentZ() float64 {
	return float64(f.ZSize) * GridSquareSize / 2
}

// PhysicalState enumerates how a unit interacts with terrain and water.
type PhysicalState int

const (
	OnGround PhysicalState = iota
	Hovering
	Floating
	Submarine
	Flying
)

// ProgressState reports whether a mover is actively pursuing a path.
type ProgressState int

const (
	Done ProgressState = iota
	Active
	Failed
)

// PathHandle is an opaque identifier returned by the path planner. Zero means
// "no path".
type PathHandle uint64

// Waypoint is a planner-supplied navigation point. Y == SentinelY means
// "temporary/unresolved" — the mover must not advance and must not count the
// tick as idling while either waypoint carries this sentinel.
type Waypoint struct {
	X, Y, Z float64
}

// SentinelY marks a waypoint whose planner resolution is still pending.
const SentinelY = -1

// IsSentinel reports whether w is the "not yet known" placeholder.
func (w Waypoint) IsSentinel() bool {
	return w.Y == SentinelY
}

// NoMoreWaypoint is returned by the planner when a path has no further nodes.
var NoMoreWaypoint = Waypoint{X: -1, Y: 0, Z: -1}

// IsNoMore reports whether w is the planner's "no more waypoints" sentinel.
func (w Waypoint) IsNoMore() bool {
	return w.X == -1 && w.Z == -1 && w.Y != SentinelY
}

// Vec2 returns the XZ projection of a waypoint.
func (w Waypoint) Vec2() (float64, float64) {
	return w.X, w.Z
}

// Goal is the destination of a move order.
type Goal struct {
	X, Z       float64
	GoalRadius float64
}

// ModeFlags captures the boolean mode bits of §3.
type ModeFlags struct {
	Moving         bool
	Reversing      bool
	Skidding       bool
	Flying         bool
	Falling        bool
	BeingBuilt     bool
	Stunned        bool
	CanReverse     bool
	UseMainHeading bool
	Upright        bool
	// Transported is set while a unit rides inside a transporter; the
	// locomotion tick is a no-op while it holds.
	Transported bool
}

// Footprint is a unit's axis-aligned extent in grid squares.
type Footprint struct {
	XSize, ZSize int
}

// KinematicBounds are the per-unit-type speed/accel/turn limits.
type KinematicBounds struct {
	MaxSpeed        float64
	MaxReverseSpeed float64
	AccRate         float64
	DecRate         float64
	TurnRate        int32 // heading units per tick
}

// SkidState holds the ballistic sub-state entered via external impulse.
type SkidState struct {
	RotAxis      vecmath.Vec3
	RotSpeed     float64
	RotAccel     float64
	PriorPhysics PhysicalState
}

// Unit is the controlled entity: the mover itself plus its kinematic state.
// Position is world-space 3D; Heading is the 16-bit signed angle of §3.
type Unit struct {
	ID string

	Position vecmath.Vec3
	Velocity vecmath.Vec3
	Heading  vecmath.Heading16

	Basis vecmath.Basis

	Footprint Footprint
	Mass      float64
	Radius    float64

	Bounds KinematicBounds
	Flags  ModeFlags

	Physics PhysicalState

	CurrentSpeed float64 // always >= 0; sign carried by Flags.Reversing

	Path        PathHandle
	CurrWayPoint Waypoint
	NextWayPoint Waypoint

	Goal Goal

	Progress ProgressState

	NumIdlingUpdates     int32
	NumIdlingSlowUpdates int32

	PrevWayPointDist float64
	CurrWayPointDist float64

	WantedSpeed float64

	ResidualImpulse vecmath.Vec3

	Skid SkidState

	// PathRequestTick records the tick of the last StartEngine call. SlowUpdate
	// uses it to delay a pathless Active unit's re-request by a fixed number of
	// ticks; restarts of a unit that still holds a path are not rate-limited.
	PathRequestTick uint64

	// AtEndOfPath is set once the approach to goal has tightened; it clamps
	// both waypoints to the goal position.
	AtEndOfPath bool
}

// MoveDefinition is the per-unit-type movement profile (§3).
type MoveDefinition struct {
	Family          Family
	Footprint       Footprint
	MaxSlope        float64
	CrushResistant  bool
	TerrainSpeedMod map[string]float64
	TurnInPlace     bool
	TurnInPlaceSpeedFloor float64
	TurnInPlaceAngle      int32

	// NonBlockingFamilies lists the families this move definition never
	// treats as a solid obstacle (§4.2), e.g. a hover craft passing through
	// ships. The relationship need not be symmetric on its own; Collides
	// checks both sides.
	NonBlockingFamilies []Family
}

// Family tags the broad movement category a MoveDefinition belongs to.
type Family int

const (
	FamilyTank Family = iota
	FamilyKBot
	FamilyHover
	FamilyShip
)

// Collides reports whether two move definitions should be treated as solid
// obstacles to each other (§4.2): false if either side's NonBlockingFamilies
// names the other's Family.
func (m MoveDefinition) Collides(other MoveDefinition) bool {
	if familyListed(m.NonBlockingFamilies, other.Family) {
		return false
	}
	if familyListed(other.NonBlockingFamilies, m.Family) {
		return false
	}
	return true
}

func familyListed(families []Family, f Family) bool {
	for _, candidate := range families {
		if candidate == f {
			return true
		}
	}
	return false
}
