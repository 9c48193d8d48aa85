// Command simtick drives the locomotion core over a YAML boundary scenario
// (§8): it loads a flat map and a handful of units, runs a fixed number of
// ticks, and reports each unit's final position and progress state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rtscore/internal/locomotion"
	"rtscore/internal/mover"
	"rtscore/internal/navgrid"
	"rtscore/internal/steering"
	"rtscore/internal/telemetry"
	"rtscore/internal/worldview"
	"rtscore/logging"
	"rtscore/logging/sinks"
)

const tickDuration = 1.0 / 30.0 // 30 ticks/second, matching the engine's slow-update cadence below

func main() {
	path := flag.String("scenario", "", "path to a boundary scenario YAML file")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: simtick -scenario <path.yaml>")
		os.Exit(2)
	}

	sc, err := loadScenario(*path)
	if err != nil {
		log.Fatalf("simtick: %v", err)
	}

	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout, logging.ConsoleConfig{})},
	})
	if err != nil {
		log.Fatalf("simtick: logging: %v", err)
	}
	defer router.Close(context.Background())

	units := make([]*mover.Unit, 0, len(sc.Units))
	goals := make(map[string]mover.Goal, len(sc.Units))
	for _, spec := range sc.Units {
		u := spec.toUnit()
		units = append(units, u)
		goals[u.ID] = mover.Goal{X: spec.GoalX, Z: spec.GoalZ, GoalRadius: spec.GoalRadius}
	}

	m := &flatMap{width: sc.Width, height: sc.Height}
	spatial := &naiveSpatialIndex{units: units}
	grid := navgrid.NewGrid(sc.Width, sc.Height, 0, nil)
	planner := navgrid.NewPlanner(grid, mover.GridSquareSize)

	metrics := telemetry.NewPrometheusMetrics(prometheus.NewRegistry())

	controller := locomotion.NewController(mover.TuningConstants{
		PathRequestDelay:        time.Second,
		SlowUpdateIdlingCeiling: 1 << 10,
		ImpulseSkidThresholdSq:  9,
		GroundSkidStopSpeed:     0.35,
	})
	controller.Metrics = metrics

	view := func(tick uint64) worldview.View {
		return worldview.View{
			Ctx:      context.Background(),
			Tick:     tick,
			Planner:  planner,
			Map:      m,
			Spatial:  spatial,
			Commands: noopCommandQueue{},
			Events:   routerEventBus{router: router},
			ModInfo:  mover.DefaultModInfo(),
			Width:    sc.Width,
			Height:   sc.Height,
		}
	}

	for _, u := range units {
		moveDef := mover.MoveDefinition{Footprint: u.Footprint}
		controller.StartMoving(u, moveDef, goals[u.ID], view(0))
	}

	steeringStates := make(map[string]*steering.State, len(units))
	for _, u := range units {
		steeringStates[u.ID] = &steering.State{}
	}

	env := locomotion.Environment{Map: m}

	for tick := uint64(1); tick <= uint64(sc.Ticks); tick++ {
		v := view(tick)
		for _, u := range units {
			moveDef := mover.MoveDefinition{Footprint: u.Footprint}
			controller.Update(u, moveDef, env, locomotion.DirectControl{}, steeringStates[u.ID], v, tickDuration)
		}
		if tick%30 == 0 {
			for _, u := range units {
				moveDef := mover.MoveDefinition{Footprint: u.Footprint}
				controller.SlowUpdate(u, moveDef, v)
			}
			idling := uint64(0)
			for _, u := range units {
				if u.NumIdlingUpdates > 0 {
					idling++
				}
			}
			metrics.Store("locomotion.idling_units", idling)
			telemetry.ObserveRouter(router, metrics)
		}
	}

	for _, u := range units {
		fmt.Printf("%s: pos=(%.2f,%.2f,%.2f) progress=%d idling=%d\n",
			u.ID, u.Position.X, u.Position.Y, u.Position.Z, u.Progress, u.NumIdlingUpdates)
	}
}

// routerEventBus adapts a logging.Router into the worldview.EventBus shape.
type routerEventBus struct {
	router *logging.Router
}

func (b routerEventBus) Publish(ctx context.Context, tick uint64, eventType string, actorID string, payload any) {
	if b.router == nil {
		return
	}
	typed, _ := payload.(logging.Payload)
	b.router.Publish(ctx, logging.Event{
		Type:     logging.EventType(eventType),
		Tick:     tick,
		Time:     time.Now(),
		Actor:    logging.EntityRef{ID: actorID, Kind: logging.EntityKindUnknown},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  typed,
	})
}
