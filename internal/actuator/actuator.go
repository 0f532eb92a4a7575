// Package actuator composes a stepper and gear pairs into a reduction chain
// and evaluates it: speed and torque propagation, gear constraints, cost and
// the assembled geometry.
package actuator

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/gears"
	"github.com/san-kum/geartrain/internal/materials"
	"github.com/san-kum/geartrain/internal/mesh"
)

// ErrChainOrder indicates a component sequence that is not a single
// optional motor followed by gear pairs.
var ErrChainOrder = errors.New("actuator: invalid component order")

// MinTorque replaces non-positive torques during propagation.
const MinTorque = 1e-6

// HullThickness is the housing wall thickness in millimetres.
const HullThickness = 1.5

// Actuator is an immutable chain of components. Geometry is assembled on
// first use.
type Actuator struct {
	components []dynamo.Component

	ratio     float64
	gearRatio float64
	volume    float64

	meshOnce sync.Once
	assembly *mesh.Assembly

	hullOnce sync.Once
	hullArea float64
	hullErr  error
}

// New validates the chain order and fixes the aggregate ratios.
func New(components ...dynamo.Component) (*Actuator, error) {
	ratios := make([]float64, 0, len(components))
	gearRatios := make([]float64, 0, len(components))
	volumes := make([]float64, 0, len(components))

	for i, c := range components {
		switch c.Kind() {
		case dynamo.KindMotor:
			if i != 0 {
				return nil, fmt.Errorf("motor at position %d: %w", i, ErrChainOrder)
			}
		case dynamo.KindGearPair:
			if _, ok := c.(*gears.GearPair); !ok {
				return nil, fmt.Errorf("component %d is not a gear pair: %w", i, ErrChainOrder)
			}
			gearRatios = append(gearRatios, c.Ratio())
		default:
			return nil, fmt.Errorf("component %d has %s: %w", i, c.Kind(), ErrChainOrder)
		}
		ratios = append(ratios, c.Ratio())
		volumes = append(volumes, c.Volume())
	}

	return &Actuator{
		components: components,
		ratio:      floats.Prod(ratios),
		gearRatio:  floats.Prod(gearRatios),
		volume:     floats.Sum(volumes),
	}, nil
}

// Components returns the chain in order. The slice must not be modified.
func (a *Actuator) Components() []dynamo.Component { return a.components }

// Ratio is the product of every component ratio.
func (a *Actuator) Ratio() float64 { return a.ratio }

// GearRatio is the product of the gear pair ratios only.
func (a *Actuator) GearRatio() float64 { return a.gearRatio }

func (a *Actuator) Volume() float64 { return a.volume }

// GearPairs returns the gear stages with their chain index.
func (a *Actuator) GearPairs() ([]int, []*gears.GearPair) {
	var idx []int
	var pairs []*gears.GearPair
	for i, c := range a.components {
		if gp, ok := c.(*gears.GearPair); ok {
			idx = append(idx, i)
			pairs = append(pairs, gp)
		}
	}
	return idx, pairs
}

// MatchedSpeedControl returns the input conditions that produce the
// requested output speeds.
func (a *Actuator) MatchedSpeedControl(conds []dynamo.OperatingCondition) []dynamo.OperatingCondition {
	in := make([]dynamo.OperatingCondition, len(conds))
	for i, c := range conds {
		in[i] = dynamo.OperatingCondition{Speed: c.Speed * a.ratio, Torque: 0, V: c.V, IMax: c.IMax}
	}
	return in
}

// SpeedTorque propagates each input condition through the chain. history[j]
// holds the condition entering component j for every input. When target is
// non-nil and the chain delivers more torque than targeted, the output and
// the recorded torques of that condition are scaled down by the same factor.
func (a *Actuator) SpeedTorque(in, target []dynamo.OperatingCondition) (out []dynamo.OperatingCondition, history [][]dynamo.OperatingCondition, err error) {
	if target != nil && len(target) != len(in) {
		return nil, nil, fmt.Errorf("%d inputs, %d targets: %w", len(in), len(target), dynamo.ErrLengthMismatch)
	}

	history = make([][]dynamo.OperatingCondition, len(a.components))
	for j := range history {
		history[j] = make([]dynamo.OperatingCondition, len(in))
	}
	out = make([]dynamo.OperatingCondition, len(in))

	for i, op := range in {
		next := op
		for j, c := range a.components {
			history[j][i] = next
			next = c.SpeedTorque(next)
			if next.Torque <= 0 {
				next.Torque = MinTorque
			}
		}

		if target != nil && next.Torque > target[i].Torque {
			alpha := next.Torque / target[i].Torque
			next.Torque /= alpha
			for j := range history {
				history[j][i].Torque /= alpha
			}
		}
		out[i] = next
	}
	return out, history, nil
}

// Kinematic holds interference, contact ratio and both specific sliding
// speeds of one gear pair.
type Kinematic [4]float64

// Resistance holds flank safety of pinion and gear followed by root safety
// of pinion and gear.
type Resistance [4]float64

// GearConstraints evaluates every gear pair against the conditions recorded
// by SpeedTorque. resistance[g][c] belongs to gear pair g under condition c.
func (a *Actuator) GearConstraints(history [][]dynamo.OperatingCondition) ([]Kinematic, [][]Resistance, error) {
	idx, pairs := a.GearPairs()
	kinematic := make([]Kinematic, len(pairs))
	resistance := make([][]Resistance, len(pairs))
	if len(pairs) == 0 {
		return kinematic, resistance, nil
	}
	if len(history) != len(a.components) {
		return nil, nil, fmt.Errorf("history for %d components, chain has %d: %w", len(history), len(a.components), dynamo.ErrLengthMismatch)
	}

	for g, gp := range pairs {
		kinematic[g] = Kinematic{gp.Interference, gp.ContactRatio, gp.SpecificSliding[0], gp.SpecificSliding[1]}

		conds := history[idx[g]]
		resistance[g] = make([]Resistance, len(conds))
		for c, op := range conds {
			sh := gp.SecurityH(op)
			sf, err := gp.SecurityF(op)
			if err != nil {
				return nil, nil, &dynamo.ComponentError{Index: idx[g], Kind: dynamo.KindGearPair, Wrapped: err}
			}
			resistance[g][c] = Resistance{sh[0], sh[1], sf[0], sf[1]}
		}
	}
	return kinematic, resistance, nil
}

// Cost lists the cost of each component. withHull appends the cost of a POM
// housing wrapped around the convex hull of the assembly.
func (a *Actuator) Cost(withHull bool) ([]float64, error) {
	costs := make([]float64, 0, len(a.components)+1)
	for _, c := range a.components {
		costs = append(costs, c.Cost())
	}
	if !withHull {
		return costs, nil
	}

	area, err := a.HullArea()
	if err != nil {
		return nil, err
	}
	pom := materials.MustGet(materials.POM)
	costs = append(costs, area*HullThickness/1e9*pom.Rho*pom.Cost)
	return costs, nil
}

// HullArea is the surface of the convex hull of the assembly in mm2.
func (a *Actuator) HullArea() (float64, error) {
	a.hullOnce.Do(func() {
		a.hullArea, a.hullErr = a.Mesh().ConvexHullArea()
	})
	return a.hullArea, a.hullErr
}

// InternalCollisions is the number of intersecting solid pairs normalised by
// the face count of the assembly.
func (a *Actuator) InternalCollisions() float64 {
	space := a.Mesh()
	if len(space.Faces) == 0 {
		return 0
	}
	return float64(len(space.InternalCollisions())) / float64(len(space.Faces))
}

// Mesh assembles the chain geometry. The pose is threaded through the
// components, moving by half the previous component height before each
// one.
func (a *Actuator) Mesh() *mesh.Assembly {
	a.meshOnce.Do(func() {
		var solids []*mesh.Solid
		groups := [][]int{{}}

		pose := mesh.Identity()
		lastHeight := 0.
		for _, c := range a.components {
			pose = pose.Mul(mesh.Translation(0, 0, dynamo.Sign(c.Disp())*lastHeight/2))
			lastHeight = c.Height()

			pl := c.Place(pose)
			pose = pl.Pose
			for gi, group := range pl.Groups {
				if gi > 0 {
					groups = append(groups, []int{})
				}
				last := len(groups) - 1
				for _, s := range group {
					groups[last] = append(groups[last], len(solids))
					solids = append(solids, s)
				}
			}
		}
		a.assembly = mesh.Merge(solids, groups)
	})
	return a.assembly
}
