package navgrid

import (
	"testing"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
)

func TestRequestPathEmptyMapArrives(t *testing.T) {
	grid := NewGrid(256, 256, 4, nil)
	p := NewPlanner(grid, mover.GridSquareSize)

	from := vecmath.Vec3{X: 16, Z: 16}
	to := vecmath.Vec3{X: 200, Z: 200}

	handle := p.RequestPath("unit-1", mover.MoveDefinition{}, from, to, 1, true)
	if handle == 0 {
		t.Fatalf("RequestPath returned zero handle over an open map")
	}

	for i := 0; i < pendingTicks; i++ {
		wp := p.NextWayPoint("unit-1", handle, from, CellSize, true)
		if !wp.IsSentinel() {
			t.Fatalf("tick %d: expected sentinel waypoint while pending, got %+v", i, wp)
		}
	}

	wp := p.NextWayPoint("unit-1", handle, from, CellSize, true)
	if wp.IsSentinel() {
		t.Fatalf("expected a resolved waypoint after the pending window")
	}
	if wp.IsNoMore() {
		t.Fatalf("expected a real first waypoint, got NoMoreWaypoint")
	}
}

func TestRequestPathBlockedByStatics(t *testing.T) {
	statics := make([]vecmath.Vec3, 0)
	for z := 0.0; z < 256; z += CellSize {
		statics = append(statics, vecmath.Vec3{X: 128, Z: z})
	}
	grid := NewGrid(256, 256, CellSize/2, statics)
	p := NewPlanner(grid, mover.GridSquareSize)

	from := vecmath.Vec3{X: 16, Z: 128}
	to := vecmath.Vec3{X: 240, Z: 128}

	handle := p.RequestPath("unit-2", mover.MoveDefinition{}, from, to, 1, true)
	if handle != 0 {
		t.Fatalf("expected RequestPath to fail across a full-width wall, got handle %d", handle)
	}
}

func TestDeletePathRemovesState(t *testing.T) {
	grid := NewGrid(64, 64, 4, nil)
	p := NewPlanner(grid, mover.GridSquareSize)

	handle := p.RequestPath("unit-3", mover.MoveDefinition{}, vecmath.Vec3{X: 8, Z: 8}, vecmath.Vec3{X: 40, Z: 40}, 1, true)
	if handle == 0 {
		t.Fatalf("expected a valid handle")
	}
	p.DeletePath(handle)
	wp := p.NextWayPoint("unit-3", handle, vecmath.Vec3{X: 8, Z: 8}, CellSize, true)
	if !wp.IsNoMore() {
		t.Fatalf("expected NoMoreWaypoint after DeletePath, got %+v", wp)
	}
}
