package main

import (
	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

// flatMap is the simplest possible worldview.MapServices: level terrain, no
// water, nothing ever blocked except the playable rectangle's edges.
type flatMap struct {
	width, height float64
}

func (m *flatMap) GetHeightReal(x, z float64) float64       { return 0 }
func (m *flatMap) GetHeightAboveWater(x, z float64) float64 { return 0 }
func (m *flatMap) GetNormal(x, z float64) vecmath.Vec3      { return vecmath.Vec3{Y: 1} }
func (m *flatMap) GetSlope(x, z float64) float64            { return 0 }

func (m *flatMap) GetPosSpeedMod(moveDef mover.MoveDefinition, pos vecmath.Vec3, dir *vecmath.Vec3) float64 {
	return 1
}

func (m *flatMap) SquareIsBlocked(moveDef mover.MoveDefinition, pos vecmath.Vec3, excludeUnitID string) worldview.BlockMask {
	if pos.X < 0 || pos.Z < 0 || pos.X > m.width || pos.Z > m.height {
		return worldview.BlockTerrain
	}
	return worldview.BlockNone
}

func (m *flatMap) TestMoveSquare(moveDef mover.MoveDefinition, pos vecmath.Vec3, excludeUnitID string) bool {
	return pos.X >= 0 && pos.Z >= 0 && pos.X <= m.width && pos.Z <= m.height
}

// naiveSpatialIndex answers neighbor queries by linear scan, fine for the
// handful of units a boundary scenario exercises.
type naiveSpatialIndex struct {
	units []*mover.Unit
}

func (idx *naiveSpatialIndex) query(center vecmath.Vec3, radius float64) []worldview.Neighbor {
	var out []worldview.Neighbor
	for _, u := range idx.units {
		dx, dz := u.Position.X-center.X, u.Position.Z-center.Z
		if dx*dx+dz*dz > radius*radius {
			continue
		}
		out = append(out, worldview.Neighbor{
			ID:              u.ID,
			Position:        u.Position,
			Velocity:        u.Velocity,
			Radius:          u.Radius,
			Footprint:       u.Footprint,
			Mass:            u.Mass,
			MoveDef:         nil,
			Flags:           u.Flags,
			Ally:            true,
			CommandQueueLen: 1,
		})
	}
	return out
}

func (idx *naiveSpatialIndex) GetUnitsExact(center vecmath.Vec3, radius float64) []worldview.Neighbor {
	return idx.query(center, radius)
}
func (idx *naiveSpatialIndex) GetFeaturesExact(center vecmath.Vec3, radius float64) []worldview.Neighbor {
	return nil
}
func (idx *naiveSpatialIndex) GetSolidsExact(center vecmath.Vec3, radius float64) []worldview.Neighbor {
	return idx.query(center, radius)
}

// noopCommandQueue treats every unit's order as a single plain move, which is
// all a boundary scenario needs.
type noopCommandQueue struct{}

func (noopCommandQueue) HeadCommandIsPlainMove(unitID string) bool { return true }
func (noopCommandQueue) Len(unitID string) int                    { return 1 }
func (noopCommandQueue) AppendWait(unitID string)                  {}
func (noopCommandQueue) SetMoveCommandPosition(unitID string, pos vecmath.Vec3) {}
