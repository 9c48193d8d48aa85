package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rtscore/internal/mover"
	"rtscore/internal/vecmath"
)

// scenario is the YAML fixture format for a boundary scenario (§8): a flat
// map populated with a handful of units and move orders, run for a fixed
// number of ticks.
type scenario struct {
	Name   string     `yaml:"name"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Ticks  int        `yaml:"ticks"`
	Units  []unitSpec `yaml:"units"`
}

type unitSpec struct {
	ID         string  `yaml:"id"`
	X          float64 `yaml:"x"`
	Z          float64 `yaml:"z"`
	GoalX      float64 `yaml:"goal_x"`
	GoalZ      float64 `yaml:"goal_z"`
	GoalRadius float64 `yaml:"goal_radius"`

	MaxSpeed        float64 `yaml:"max_speed"`
	MaxReverseSpeed float64 `yaml:"max_reverse_speed"`
	AccRate         float64 `yaml:"acc_rate"`
	DecRate         float64 `yaml:"dec_rate"`
	TurnRate        int32   `yaml:"turn_rate"`

	FootprintX int     `yaml:"footprint_x"`
	FootprintZ int     `yaml:"footprint_z"`
	Mass       float64 `yaml:"mass"`
	CanReverse bool    `yaml:"can_reverse"`
}

func loadScenario(path string) (scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var s scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Width <= 0 {
		s.Width = 512
	}
	if s.Height <= 0 {
		s.Height = 512
	}
	if s.Ticks <= 0 {
		s.Ticks = 200
	}
	return s, nil
}

func (s unitSpec) toUnit() *mover.Unit {
	if s.FootprintX <= 0 {
		s.FootprintX = 1
	}
	if s.FootprintZ <= 0 {
		s.FootprintZ = 1
	}
	if s.Mass <= 0 {
		s.Mass = 1
	}
	if s.MaxSpeed <= 0 {
		s.MaxSpeed = 3
	}
	if s.AccRate <= 0 {
		s.AccRate = 0.1
	}
	if s.DecRate <= 0 {
		s.DecRate = 0.2
	}
	if s.TurnRate <= 0 {
		s.TurnRate = 1 << 11
	}

	u := &mover.Unit{
		ID:        s.ID,
		Footprint: mover.Footprint{XSize: s.FootprintX, ZSize: s.FootprintZ},
		Mass:      s.Mass,
		Radius:    float64(s.FootprintX) * mover.GridSquareSize / 2,
		Bounds: mover.KinematicBounds{
			MaxSpeed:        s.MaxSpeed,
			MaxReverseSpeed: s.MaxReverseSpeed,
			AccRate:         s.AccRate,
			DecRate:         s.DecRate,
			TurnRate:        s.TurnRate,
		},
		Physics: mover.OnGround,
	}
	u.Flags.CanReverse = s.CanReverse
	u.Flags.Upright = true
	u.Position.X = s.X
	u.Position.Z = s.Z
	u.Basis = vecmath.DeriveBasis(u.Heading, vecmath.Vec3{Y: 1}, true)
	return u
}
