package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

type fakeMap struct{}

func (fakeMap) GetHeightReal(x, z float64) float64       { return 0 }
func (fakeMap) GetHeightAboveWater(x, z float64) float64 { return 0 }
func (fakeMap) GetNormal(x, z float64) vecmath.Vec3      { return vecmath.Vec3{Y: 1} }
func (fakeMap) GetSlope(x, z float64) float64            { return 0 }
func (fakeMap) GetPosSpeedMod(mover.MoveDefinition, vecmath.Vec3, *vecmath.Vec3) float64 {
	return 1
}
func (fakeMap) SquareIsBlocked(mover.MoveDefinition, vecmath.Vec3, string) worldview.BlockMask {
	return worldview.BlockNone
}
func (fakeMap) TestMoveSquare(mover.MoveDefinition, vecmath.Vec3, string) bool { return true }

func footprint(squares int) mover.Footprint {
	return mover.Footprint{XSize: squares, ZSize: squares}
}

// Two units with identical goals, standing far enough apart not to collide,
// resolve to a no-op pass.
func TestResolveUnitNoOverlapIsNoop(t *testing.T) {
	u := &mover.Unit{ID: "a", Position: vecmath.Vec3{X: 0, Z: 0}, Footprint: footprint(1), Mass: 10}
	n := &mover.Unit{ID: "b", Position: vecmath.Vec3{X: 500, Z: 500}, Footprint: footprint(1), Mass: 10}
	spatial := &staticIndex{units: []*mover.Unit{n}}
	view := worldview.View{Spatial: spatial, Map: fakeMap{}}

	out := ResolveUnit(u, mover.MoveDefinition{}, view)
	require.Empty(t, out.Killed)
	require.Empty(t, out.Impulses)
	require.Equal(t, vecmath.Zero3, out.Displacement)
}

// Crush (§4.2/§8): a fast, heavy collider overlapping a slow, light,
// non-crush-resistant neighbor kills it and delivers a kill impulse rather
// than discarding the computed physics result.
func TestResolveUnitUnitCrushDeliversImpulse(t *testing.T) {
	collider := &mover.Unit{
		ID: "collider", Position: vecmath.Vec3{X: 0, Z: 0},
		Velocity: vecmath.Vec3{X: 0, Z: 10}, CurrentSpeed: 10,
		Footprint: footprint(1), Mass: 1000,
	}
	victim := &mover.Unit{
		ID: "victim", Position: vecmath.Vec3{X: 0, Z: 1},
		Footprint: footprint(1), Mass: 1,
	}
	spatial := &staticIndex{units: []*mover.Unit{victim}}
	view := worldview.View{Spatial: spatial, Map: fakeMap{}}

	out := ResolveUnit(collider, mover.MoveDefinition{}, view)

	require.Equal(t, []string{"victim"}, out.Killed)
	require.Len(t, out.Impulses, 1)
	require.Equal(t, "victim", out.Impulses[0].ID)
	require.NotEqual(t, vecmath.Zero3, out.Impulses[0].Vector, "crush must deliver a non-zero impulse, not discard it")
	require.Equal(t, collider.Velocity.Mul(collider.Mass), out.Impulses[0].Vector)
}

// A crush-resistant neighbor survives even against overwhelming momentum.
func TestResolveUnitUnitCrushResistantSurvives(t *testing.T) {
	collider := &mover.Unit{
		ID: "collider", Position: vecmath.Vec3{X: 0, Z: 0},
		Velocity: vecmath.Vec3{X: 0, Z: 10}, CurrentSpeed: 10,
		Footprint: footprint(1), Mass: 1000,
	}
	victim := &mover.Unit{
		ID: "victim", Position: vecmath.Vec3{X: 0, Z: 1},
		Footprint: footprint(1), Mass: 1,
	}
	resistant := mover.MoveDefinition{CrushResistant: true}
	spatial := &staticIndex{units: []*mover.Unit{victim}, moveDefs: map[string]*mover.MoveDefinition{"victim": &resistant}}
	view := worldview.View{Spatial: spatial, Map: fakeMap{}}

	out := ResolveUnit(collider, mover.MoveDefinition{}, view)
	require.Empty(t, out.Killed)
	require.Empty(t, out.Impulses)
}

// Non-blocking families (§4.2): a hover unit's move definition names ships as
// non-blocking, so overlapping one produces neither a push nor a crush.
func TestResolveUnitUnitNonBlockingFamilySkipsCollision(t *testing.T) {
	hoverDef := mover.MoveDefinition{Family: mover.FamilyHover, NonBlockingFamilies: []mover.Family{mover.FamilyShip}}
	shipDef := mover.MoveDefinition{Family: mover.FamilyShip}

	hover := &mover.Unit{ID: "hover", Position: vecmath.Vec3{X: 0, Z: 0}, Footprint: footprint(1), Mass: 10}
	ship := &mover.Unit{ID: "ship", Position: vecmath.Vec3{X: 0, Z: 1}, Footprint: footprint(1), Mass: 10}

	spatial := &staticIndex{units: []*mover.Unit{ship}, moveDefs: map[string]*mover.MoveDefinition{"ship": &shipDef}}
	view := worldview.View{Spatial: spatial, Map: fakeMap{}}

	out := ResolveUnit(hover, hoverDef, view)
	require.Empty(t, out.Killed)
	require.Equal(t, vecmath.Zero3, out.Displacement)
}

func TestMoveDefinitionCollidesIsSymmetric(t *testing.T) {
	hover := mover.MoveDefinition{Family: mover.FamilyHover, NonBlockingFamilies: []mover.Family{mover.FamilyShip}}
	ship := mover.MoveDefinition{Family: mover.FamilyShip}
	tank := mover.MoveDefinition{Family: mover.FamilyTank}

	require.False(t, hover.Collides(ship))
	require.False(t, ship.Collides(hover), "either side naming the other as non-blocking must suppress collision")
	require.True(t, hover.Collides(tank))
}

// staticIndex is a minimal worldview.SpatialIndex double for a fixed unit
// roster, with an optional per-ID MoveDefinition override.
type staticIndex struct {
	units    []*mover.Unit
	moveDefs map[string]*mover.MoveDefinition
}

func (idx *staticIndex) neighbors() []worldview.Neighbor {
	out := make([]worldview.Neighbor, 0, len(idx.units))
	for _, u := range idx.units {
		out = append(out, worldview.Neighbor{
			ID: u.ID, Position: u.Position, Velocity: u.Velocity,
			Footprint: u.Footprint, Mass: u.Mass, MoveDef: idx.moveDefs[u.ID],
			Ally: true,
		})
	}
	return out
}

func (idx *staticIndex) GetUnitsExact(vecmath.Vec3, float64) []worldview.Neighbor    { return idx.neighbors() }
func (idx *staticIndex) GetFeaturesExact(vecmath.Vec3, float64) []worldview.Neighbor { return nil }
func (idx *staticIndex) GetSolidsExact(vecmath.Vec3, float64) []worldview.Neighbor   { return idx.neighbors() }
