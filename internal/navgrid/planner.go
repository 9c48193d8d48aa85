package navgrid

import (
	"sync"

	"github.com/google/uuid"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

// pendingTicks is how many NextWayPoint calls a freshly requested path stays
// in the sentinel "not yet known" state before resolving — it stands in for
// the asynchronous planning latency a production planner would have, and is
// what exercises the locomotion core's sentinel-wait contract.
const pendingTicks = 5

type pathState struct {
	waypoints []vecmath.Vec3
	cursor    int
	ticksLeft int
	updated   bool
	failed    bool
}

// Planner is a reference worldview.PathPlanner: synchronous A* over a Grid,
// with an artificial pending window before the first waypoint resolves so
// callers observe the sentinel-waypoint-while-computing contract.
type Planner struct {
	mu      sync.Mutex
	grid    *Grid
	radius  float64
	blocked []vecmath.Vec3

	paths map[mover.PathHandle]*pathState
}

// NewPlanner wraps grid as a PathPlanner. blockingRadius sizes the dynamic
// blocker footprint used when resolving around moving obstacles.
func NewPlanner(grid *Grid, blockingRadius float64) *Planner {
	return &Planner{grid: grid, radius: blockingRadius, paths: make(map[mover.PathHandle]*pathState)}
}

// SetDynamicBlockers replaces the set of moving-obstacle positions considered
// on the next RequestPath/UpdatePath call.
func (p *Planner) SetDynamicBlockers(positions []vecmath.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocked = positions
}

func newHandle() mover.PathHandle {
	id := uuid.New()
	lo := uint64(0)
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(id[i])
	}
	if lo == 0 {
		lo = 1
	}
	return mover.PathHandle(lo)
}

// RequestPath runs A* immediately but holds the result behind pendingTicks
// sentinel calls before NextWayPoint starts returning real waypoints.
func (p *Planner) RequestPath(unitID string, moveDef mover.MoveDefinition, from, to vecmath.Vec3, radius float64, synced bool) mover.PathHandle {
	p.mu.Lock()
	defer p.mu.Unlock()

	var blocked map[int]struct{}
	if p.grid != nil {
		blocked = p.grid.BlockedCells(p.blocked, p.radius)
	}

	waypoints, ok := p.grid.findPath(from, to, blocked)
	if !ok {
		return 0
	}

	handle := newHandle()
	for _, exists := p.paths[handle]; exists; _, exists = p.paths[handle] {
		handle = newHandle()
	}
	p.paths[handle] = &pathState{waypoints: waypoints, ticksLeft: pendingTicks}
	return handle
}

// NextWayPoint returns the sentinel waypoint while the path is still
// "pending", then walks the resolved waypoint list, skipping nodes already
// within searchRadius of referencePos.
func (p *Planner) NextWayPoint(unitID string, handle mover.PathHandle, referencePos vecmath.Vec3, searchRadius float64, synced bool) mover.Waypoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.paths[handle]
	if !ok {
		return mover.NoMoreWaypoint
	}
	if st.failed {
		return mover.NoMoreWaypoint
	}
	if st.ticksLeft > 0 {
		st.ticksLeft--
		return mover.Waypoint{X: referencePos.X, Y: mover.SentinelY, Z: referencePos.Z}
	}

	for st.cursor < len(st.waypoints) {
		wp := st.waypoints[st.cursor]
		dx, dz := wp.X-referencePos.X, wp.Z-referencePos.Z
		if dx*dx+dz*dz > searchRadius*searchRadius {
			return mover.Waypoint{X: wp.X, Y: wp.Y, Z: wp.Z}
		}
		st.cursor++
	}
	return mover.NoMoreWaypoint
}

// UpdatePath is a no-op for the reference planner: there is no background
// replanning thread to reconcile state with.
func (p *Planner) UpdatePath(unitID string, handle mover.PathHandle) {}

// PathUpdated always reports false: this planner never revises a path in
// place after RequestPath returns it.
func (p *Planner) PathUpdated(handle mover.PathHandle) bool { return false }

// DeletePath releases a handle's state.
func (p *Planner) DeletePath(handle mover.PathHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.paths, handle)
}

var _ worldview.PathPlanner = (*Planner)(nil)
