// Package design decodes optimizer design vectors into actuators.
//
// A vector starts with the motor gene (integer part selects the catalog
// motor, fractional part the fill factor) and the resistance scale,
// followed by one block per stage: pinion gene, gear gene (integer part
// tooth count, fractional part profile shift), module, width multiplier
// and, for spatial designs, axial displacement and rotation angle.
package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/gears"
	"github.com/san-kum/geartrain/internal/motors"
)

var ErrShortVector = errors.New("design: design vector too short")

const (
	MotorGenes   = 2
	PlanarGenes  = 4
	SpatialGenes = 6
)

// StageGenes is the number of genes per stage.
func StageGenes(with3D bool) int {
	if with3D {
		return SpatialGenes
	}
	return PlanarGenes
}

// Len is the design vector length for n stages.
func Len(nStages int, with3D bool) int {
	return MotorGenes + nStages*StageGenes(with3D)
}

// FillFactor maps the fractional motor gene to [0.3, 1.2).
func FillFactor(frac float64) float64 { return 0.3 + frac*0.9 }

// PinionShift maps the fractional pinion gene to [-0.1, 0.6).
func PinionShift(frac float64) float64 { return -0.1 + frac*0.7 }

// GearShift maps the fractional gear gene to [-0.6, 0.6).
func GearShift(frac float64) float64 { return -0.6 + frac*1.2 }

// NewActuator decodes a full design vector.
func NewActuator(x []float64, nStages int, with3D bool) (*actuator.Actuator, error) {
	if len(x) < Len(nStages, with3D) {
		return nil, fmt.Errorf("%d genes for %d stages, need %d: %w", len(x), nStages, Len(nStages, with3D), ErrShortVector)
	}

	sel, frac := math.Modf(x[0])
	stepper, err := motors.GetByIndex(int(sel), FillFactor(frac), x[1])
	if err != nil {
		return nil, err
	}

	pairs, err := NewGearPairs(x[MotorGenes:], nStages, with3D)
	if err != nil {
		return nil, err
	}

	comps := make([]dynamo.Component, 0, nStages+1)
	comps = append(comps, stepper)
	for _, gp := range pairs {
		comps = append(comps, gp)
	}
	return actuator.New(comps...)
}

// NewGearPairs decodes the stage blocks of a design vector. Planar designs
// have no displacement and no rotation.
func NewGearPairs(x []float64, nStages int, with3D bool) ([]*gears.GearPair, error) {
	step := StageGenes(with3D)
	if len(x) < step*nStages {
		return nil, fmt.Errorf("%d stage genes for %d stages, need %d: %w", len(x), nStages, step*nStages, ErrShortVector)
	}

	pairs := make([]*gears.GearPair, 0, nStages)
	for i := 0; i < step*nStages; i += step {
		z1, f1 := math.Modf(x[i])
		z2, f2 := math.Modf(x[i+1])
		m, b := x[i+2], x[i+3]

		var disp, angle float64
		if with3D {
			disp, angle = x[i+4], x[i+5]
		}

		gp, err := gears.MakeGearPair(z1, PinionShift(f1), z2, GearShift(f2), m, b, disp, angle)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i/step, err)
		}
		pairs = append(pairs, gp)
	}
	return pairs, nil
}

// Bounds returns the lower and upper gene bounds for a spatial design of
// nStages.
func Bounds(nStages int) (lower, upper []float64) {
	n := float64(len(motors.Names()))
	lower = []float64{0, 0.3}
	upper = []float64{n - 1e-6, 2.0}
	for i := 0; i < nStages; i++ {
		lower = append(lower, 9, 30, 0.3, 5, -20, -math.Pi)
		upper = append(upper, 41-1e-6, 81-1e-6, 1.0, 15, 20, math.Pi)
	}
	return lower, upper
}
