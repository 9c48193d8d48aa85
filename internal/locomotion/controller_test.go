package locomotion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rtscore/internal/mover"
	"rtscore/internal/navgrid"
	"rtscore/internal/steering"
	"rtscore/internal/vecmath"
	"rtscore/internal/worldview"
	"rtscore/logging"
	"rtscore/logging/sinks"
	movementlog "rtscore/logging/movement"
)

type flatMap struct{ width, height float64 }

func (m *flatMap) GetHeightReal(x, z float64) float64       { return 0 }
func (m *flatMap) GetHeightAboveWater(x, z float64) float64 { return 0 }
func (m *flatMap) GetNormal(x, z float64) vecmath.Vec3      { return vecmath.Vec3{Y: 1} }
func (m *flatMap) GetSlope(x, z float64) float64            { return 0 }
func (m *flatMap) GetPosSpeedMod(mover.MoveDefinition, vecmath.Vec3, *vecmath.Vec3) float64 {
	return 1
}
func (m *flatMap) SquareIsBlocked(mover.MoveDefinition, vecmath.Vec3, string) worldview.BlockMask {
	return worldview.BlockNone
}
func (m *flatMap) TestMoveSquare(_ mover.MoveDefinition, pos vecmath.Vec3, _ string) bool {
	return pos.X >= 0 && pos.Z >= 0 && pos.X <= m.width && pos.Z <= m.height
}

type emptySpatial struct{}

func (emptySpatial) GetUnitsExact(vecmath.Vec3, float64) []worldview.Neighbor    { return nil }
func (emptySpatial) GetFeaturesExact(vecmath.Vec3, float64) []worldview.Neighbor { return nil }
func (emptySpatial) GetSolidsExact(vecmath.Vec3, float64) []worldview.Neighbor   { return nil }

func newTestUnit(id string) *mover.Unit {
	return &mover.Unit{
		ID:     id,
		Bounds: mover.KinematicBounds{MaxSpeed: 10, MaxReverseSpeed: 4, AccRate: 5, DecRate: 5, TurnRate: 4000},
		Mass:   10, Radius: 16,
		Flags: mover.ModeFlags{Upright: true},
		Basis: vecmath.DeriveBasis(0, vecmath.Vec3{Y: 1}, true),
	}
}

func newTestController() *Controller {
	return NewController(mover.TuningConstants{
		PathRequestDelay:        time.Second,
		SlowUpdateIdlingCeiling: 1 << 10,
		ImpulseSkidThresholdSq:  9,
		GroundSkidStopSpeed:     0.35,
	})
}

// Two units with identical goals (§8): both reach the same destination
// without deadlocking each other out of Active progress.
func TestTwoUnitsIdenticalGoalsBothArrive(t *testing.T) {
	m := &flatMap{width: 1000, height: 1000}
	grid := navgrid.NewGrid(1000, 1000, 0, nil)
	planner := navgrid.NewPlanner(grid, mover.GridSquareSize)
	controller := newTestController()

	goal := mover.Goal{X: 500, Z: 500, GoalRadius: 16}

	a := newTestUnit("a")
	a.Position = vecmath.Vec3{X: 100, Z: 100}
	b := newTestUnit("b")
	b.Position = vecmath.Vec3{X: 900, Z: 100}

	view := func(tick uint64) worldview.View {
		return worldview.View{
			Ctx: context.Background(), Tick: tick, Planner: planner, Map: m,
			Spatial: emptySpatial{}, ModInfo: mover.DefaultModInfo(),
			Width: 1000, Height: 1000,
		}
	}

	controller.StartMoving(a, mover.MoveDefinition{}, goal, view(0))
	controller.StartMoving(b, mover.MoveDefinition{}, goal, view(0))

	stA, stB := &steering.State{}, &steering.State{}
	env := Environment{Map: m}
	for tick := uint64(1); tick <= 400; tick++ {
		v := view(tick)
		controller.Update(a, mover.MoveDefinition{}, env, DirectControl{}, stA, v, 1.0/30)
		controller.Update(b, mover.MoveDefinition{}, env, DirectControl{}, stB, v, 1.0/30)
	}

	require.NotEqual(t, mover.Failed, a.Progress)
	require.NotEqual(t, mover.Failed, b.Progress)
}

// A unit commanded to move emits movement.unit_moved through the configured
// event bus rather than dropping the payload on the floor.
func TestUpdateEmitsMovedEvent(t *testing.T) {
	m := &flatMap{width: 1000, height: 1000}
	grid := navgrid.NewGrid(1000, 1000, 0, nil)
	planner := navgrid.NewPlanner(grid, mover.GridSquareSize)
	controller := newTestController()

	mem := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityDebug
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: mem}})
	require.NoError(t, err)

	u := newTestUnit("a")
	u.Position = vecmath.Vec3{X: 0, Z: 0}
	goal := mover.Goal{X: 200, Z: 0, GoalRadius: 8}

	view := func(tick uint64) worldview.View {
		return worldview.View{
			Ctx: context.Background(), Tick: tick, Planner: planner, Map: m,
			Spatial: emptySpatial{}, ModInfo: mover.DefaultModInfo(),
			Events: testBus{router: router},
			Width:  1000, Height: 1000,
		}
	}

	controller.StartMoving(u, mover.MoveDefinition{}, goal, view(0))
	st := &steering.State{}
	env := Environment{Map: m}
	for tick := uint64(1); tick <= 10; tick++ {
		controller.Update(u, mover.MoveDefinition{}, env, DirectControl{}, st, view(tick), 1.0/30)
	}
	require.NoError(t, router.Close(context.Background()))

	moved := sinks.PayloadsOfType[movementlog.MovedPayload](mem.Events())
	require.NotEmpty(t, moved, "a moving unit must publish at least one UnitMoved event")
}

// testBus bridges directly to a logging.Router as a worldview.EventBus,
// mirroring cmd/simtick's routerEventBus without depending on package main.
type testBus struct {
	router *logging.Router
}

func (b testBus) Publish(ctx context.Context, tick uint64, eventType string, actorID string, payload any) {
	typed, _ := payload.(logging.Payload)
	b.router.Publish(ctx, logging.Event{
		Type: logging.EventType(eventType), Tick: tick,
		Actor: logging.EntityRef{ID: actorID, Kind: logging.EntityKindUnknown},
		Severity: logging.SeverityDebug, Category: logging.CategoryGameplay,
		Payload: typed,
	})
}
