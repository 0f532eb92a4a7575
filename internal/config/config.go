package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/gears"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/motors"
	"github.com/san-kum/geartrain/internal/problem"
)

const (
	DefaultMotor      = "A"
	DefaultFillFactor = 1.0
	DefaultRScale     = 1.0
	DefaultProblem    = "ctsei5s2"
	DefaultOutputDir  = "runs"
	DefaultWorkers    = 0
)

var ErrNoConditions = errors.New("config: no operating conditions")

type Config struct {
	Motor      *MotorConfig                `json:"motor,omitempty" yaml:"motor,omitempty"`
	Stages     []StageConfig               `json:"stages" yaml:"stages"`
	Conditions []dynamo.OperatingCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	OpSet      string                      `json:"op_set" yaml:"op_set"`
	Problem    string                      `json:"problem" yaml:"problem"`
	Workers    int                         `json:"workers" yaml:"workers"`
	OutputDir  string                      `json:"output_dir" yaml:"output_dir"`
}

type MotorConfig struct {
	Name       string  `json:"name" yaml:"name"`
	FillFactor float64 `json:"fill_factor" yaml:"fill_factor"`
	RScale     float64 `json:"r_scale" yaml:"r_scale"`
}

// StageConfig describes one gear pair. Width is a multiple of the module.
type StageConfig struct {
	PinionTeeth float64 `json:"pinion_teeth" yaml:"pinion_teeth"`
	PinionShift float64 `json:"pinion_shift" yaml:"pinion_shift"`
	GearTeeth   float64 `json:"gear_teeth" yaml:"gear_teeth"`
	GearShift   float64 `json:"gear_shift" yaml:"gear_shift"`
	Module      float64 `json:"module" yaml:"module"`
	Width       float64 `json:"width" yaml:"width"`
	Disp        float64 `json:"disp" yaml:"disp"`
	Angle       float64 `json:"angle" yaml:"angle"`
	Material    string  `json:"material,omitempty" yaml:"material,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Motor: &MotorConfig{
			Name:       DefaultMotor,
			FillFactor: DefaultFillFactor,
			RScale:     DefaultRScale,
		},
		Stages: []StageConfig{
			{PinionTeeth: 17, PinionShift: 0.15, GearTeeth: 60, GearShift: -0.15, Module: 0.5, Width: 8, Disp: 10},
			{PinionTeeth: 17, PinionShift: 0.15, GearTeeth: 78, GearShift: -0.15, Module: 0.5, Width: 12, Disp: 10, Angle: -2.3},
		},
		OpSet:     problem.DefaultOpSet,
		Problem:   DefaultProblem,
		Workers:   DefaultWorkers,
		OutputDir: DefaultOutputDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// Stages replace rather than merge with the defaults.
	cfg.Stages = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OperatingConditions returns the explicit conditions or the named set.
func (c *Config) OperatingConditions() ([]dynamo.OperatingCondition, error) {
	if len(c.Conditions) > 0 {
		return c.Conditions, nil
	}
	if c.OpSet == "" {
		return nil, ErrNoConditions
	}
	conds, ok := problem.OpSets[c.OpSet]
	if !ok {
		return nil, fmt.Errorf("%w: unknown set %q", ErrNoConditions, c.OpSet)
	}
	return conds, nil
}

// Build constructs the actuator described by the configuration.
func (c *Config) Build() (*actuator.Actuator, error) {
	comps := make([]dynamo.Component, 0, len(c.Stages)+1)
	if c.Motor != nil {
		s, err := motors.Get(c.Motor.Name, c.Motor.FillFactor, c.Motor.RScale)
		if err != nil {
			return nil, err
		}
		comps = append(comps, s)
	}
	for i, st := range c.Stages {
		gp, err := st.Build()
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		comps = append(comps, gp)
	}
	return actuator.New(comps...)
}

// Build constructs the gear pair. An empty material selects steel.
func (s StageConfig) Build() (*gears.GearPair, error) {
	name := s.Material
	if name == "" {
		name = materials.Steel
	}
	mat, err := materials.Get(name)
	if err != nil {
		return nil, err
	}
	return gears.NewGearPair(
		gears.NewSpurGear(s.PinionTeeth, s.Module, s.PinionShift, s.Width, mat),
		gears.NewSpurGear(s.GearTeeth, s.Module, s.GearShift, s.Width, mat),
		s.Disp, s.Angle,
	)
}
