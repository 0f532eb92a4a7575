package config

import "sort"

// Presets are reference actuators. "broken" and "impossible" are
// deliberately colliding layouts.
var Presets = map[string]*Config{
	"linear": {
		Stages: []StageConfig{
			{PinionTeeth: 10, GearTeeth: 50, Module: 0.5, Width: 8},
			{PinionTeeth: 13, GearTeeth: 78, Module: 0.5, Width: 12, Disp: 10},
		},
		OpSet: "op_set_2", Problem: "ct1s2",
	},
	"motored": {
		Motor: &MotorConfig{Name: "A", FillFactor: 1, RScale: 1},
		Stages: []StageConfig{
			{PinionTeeth: 10, GearTeeth: 50, Module: 0.8, Width: 8, Disp: 10},
			{PinionTeeth: 13, GearTeeth: 78, Module: 0.5, Width: 12, Disp: 10, Angle: -2.3},
		},
		OpSet: "op_set_2", Problem: "ct2s2",
	},
	"good": {
		Motor: &MotorConfig{Name: "A", FillFactor: 1, RScale: 1},
		Stages: []StageConfig{
			{PinionTeeth: 17, PinionShift: 0.15, GearTeeth: 60, GearShift: -0.15, Module: 0.5, Width: 8, Disp: 10},
			{PinionTeeth: 17, PinionShift: 0.15, GearTeeth: 78, GearShift: -0.15, Module: 0.5, Width: 12, Disp: 10, Angle: -2.3},
		},
		OpSet: "op_set_2", Problem: "ctsei5s2",
	},
	"broken": {
		Motor: &MotorConfig{Name: "A", FillFactor: 1, RScale: 1},
		Stages: []StageConfig{
			{PinionTeeth: 10, GearTeeth: 50, Module: 0.8, Width: 8, Disp: 10},
			{PinionTeeth: 13, GearTeeth: 80, Module: 0.5, Width: 12, Disp: -3, Angle: -2.3},
		},
		OpSet: "op_set_2", Problem: "ct2s2",
	},
	"impossible": {
		Motor: &MotorConfig{Name: "B", FillFactor: 1, RScale: 1},
		Stages: []StageConfig{
			{PinionTeeth: 10, GearTeeth: 35, Module: 0.8, Width: 8, Disp: 10},
			{PinionTeeth: 25, GearTeeth: 80, Module: 0.5, Width: 12, Disp: -30, Angle: -2.3},
		},
		OpSet: "op_set_2", Problem: "ct2s2",
	},
	"plastic": {
		Motor: &MotorConfig{Name: "E", FillFactor: 0.8, RScale: 1.2},
		Stages: []StageConfig{
			{PinionTeeth: 12, GearTeeth: 48, Module: 0.6, Width: 10, Disp: 5, Material: "POM"},
			{PinionTeeth: 12, GearTeeth: 60, Module: 0.6, Width: 12, Disp: 5, Angle: 1.2, Material: "POM"},
		},
		OpSet: "op_set_1", Problem: "cts2s2",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Stages = append([]StageConfig(nil), p.Stages...)
	if p.Motor != nil {
		m := *p.Motor
		cfg.Motor = &m
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
