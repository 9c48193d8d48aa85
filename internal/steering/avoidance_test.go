package steering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
)

func headingZeroUnit(id string, pos vecmath.Vec3) *mover.Unit {
	return &mover.Unit{
		ID: id, Position: pos, Radius: 16, Mass: 10,
		CurrentSpeed: 5,
		Basis:        vecmath.DeriveBasis(0, vecmath.Vec3{Y: 1}, true),
	}
}

type neighborIndex struct {
	neighbors []worldview.Neighbor
}

func (idx neighborIndex) GetUnitsExact(vecmath.Vec3, float64) []worldview.Neighbor    { return idx.neighbors }
func (idx neighborIndex) GetFeaturesExact(vecmath.Vec3, float64) []worldview.Neighbor { return nil }
func (idx neighborIndex) GetSolidsExact(vecmath.Vec3, float64) []worldview.Neighbor   { return idx.neighbors }

// Head-on avoidance (§4.4/§8): a neighbor directly ahead on a reciprocal
// course perturbs the desired direction off the raw waypoint heading.
func TestAvoidHeadOnNeighborPerturbsDirection(t *testing.T) {
	u := headingZeroUnit("self", vecmath.Vec3{X: 0, Z: 0})
	desired := vecmath.Vec3{X: 0, Z: 1}

	oncoming := worldview.Neighbor{
		ID: "other", Position: vecmath.Vec3{X: 0, Z: 40}, Velocity: vecmath.Vec3{X: 0, Z: -5},
		Radius: 16, Mass: 10, Ally: false,
	}
	spatial := neighborIndex{neighbors: []worldview.Neighbor{oncoming}}
	view := worldview.View{Tick: 1, ModInfo: mover.ModInfo{}}

	st := &State{}
	result := Avoid(u, mover.MoveDefinition{}, st, desired, true, 200, view, spatial)

	require.NotEqual(t, desired, result, "a head-on neighbor must perturb the raw waypoint direction")
}

// Idling allies are ignored (§4.4): Flags.Moving is the maintained indicator,
// not Flags.Stunned, so an idling-but-unstunned ally must not contribute.
func TestAvoidIgnoresIdlingAlly(t *testing.T) {
	u := headingZeroUnit("self", vecmath.Vec3{X: 0, Z: 0})
	desired := vecmath.Vec3{X: 0, Z: 1}

	idlingAlly := worldview.Neighbor{
		ID: "ally", Position: vecmath.Vec3{X: 0, Z: 40}, Velocity: vecmath.Zero3,
		Radius: 16, Mass: 10, Ally: true,
		Flags: mover.ModeFlags{Moving: false, Stunned: false},
	}
	spatial := neighborIndex{neighbors: []worldview.Neighbor{idlingAlly}}
	view := worldview.View{Tick: 1, ModInfo: mover.ModInfo{}}

	st := &State{}
	result := Avoid(u, mover.MoveDefinition{}, st, desired, true, 200, view, spatial)

	require.Equal(t, desired.Normalize(), result, "an idling ally must not perturb steering even when unstunned")
}

// A moving, non-idling ally is still a valid avoidance candidate.
func TestAvoidConsidersMovingAlly(t *testing.T) {
	u := headingZeroUnit("self", vecmath.Vec3{X: 0, Z: 0})
	desired := vecmath.Vec3{X: 0, Z: 1}

	movingAlly := worldview.Neighbor{
		ID: "ally", Position: vecmath.Vec3{X: 0, Z: 40}, Velocity: vecmath.Vec3{X: 0, Z: -5},
		Radius: 16, Mass: 10, Ally: true,
		Flags: mover.ModeFlags{Moving: true},
	}
	spatial := neighborIndex{neighbors: []worldview.Neighbor{movingAlly}}
	view := worldview.View{Tick: 1, ModInfo: mover.ModInfo{}}

	st := &State{}
	result := Avoid(u, mover.MoveDefinition{}, st, desired, true, 200, view, spatial)

	require.NotEqual(t, desired, result, "a moving ally on a reciprocal course must still perturb steering")
}

// Non-blocking families (§4.2/§4.4): the same Collides predicate the
// resolver uses also gates the avoidance neighbor filter.
func TestAvoidSkipsNonBlockingFamily(t *testing.T) {
	hoverDef := mover.MoveDefinition{Family: mover.FamilyHover, NonBlockingFamilies: []mover.Family{mover.FamilyShip}}
	shipDef := mover.MoveDefinition{Family: mover.FamilyShip}

	u := headingZeroUnit("hover", vecmath.Vec3{X: 0, Z: 0})
	desired := vecmath.Vec3{X: 0, Z: 1}

	ship := worldview.Neighbor{
		ID: "ship", Position: vecmath.Vec3{X: 0, Z: 40}, Velocity: vecmath.Vec3{X: 0, Z: -5},
		Radius: 16, Mass: 10, MoveDef: &shipDef,
	}
	spatial := neighborIndex{neighbors: []worldview.Neighbor{ship}}
	view := worldview.View{Tick: 1, ModInfo: mover.ModInfo{}}

	st := &State{}
	result := Avoid(u, hoverDef, st, desired, true, 200, view, spatial)

	require.Equal(t, desired.Normalize(), result, "a non-blocking family must not be treated as an avoidance obstacle")
}

func TestAvoidGatedWithoutPath(t *testing.T) {
	u := headingZeroUnit("self", vecmath.Vec3{X: 0, Z: 0})
	desired := vecmath.Vec3{X: 0, Z: 1}
	view := worldview.View{Tick: 1}

	result := Avoid(u, mover.MoveDefinition{}, &State{}, desired, false, 200, view, neighborIndex{})
	require.Equal(t, desired, result)
}
