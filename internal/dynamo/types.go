package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/geartrain/internal/mesh"
)

// OperatingCondition is a point of operation at a component boundary.
// IMax is the current budget on the way in and the drive current reported by
// a motor on the way out. A non-positive IMax means no current cap.
type OperatingCondition struct {
	Speed  float64 `json:"speed" yaml:"speed"`
	Torque float64 `json:"torque" yaml:"torque"`
	V      float64 `json:"v" yaml:"v"`
	IMax   float64 `json:"imax" yaml:"imax"`
}

// Add sums speed and torque and keeps the larger current budget.
func (o OperatingCondition) Add(other OperatingCondition) (OperatingCondition, error) {
	if o.V != other.V {
		return OperatingCondition{}, fmt.Errorf("cannot sum conditions at %gV and %gV: %w", o.V, other.V, ErrVoltageMismatch)
	}
	return OperatingCondition{
		Speed:  o.Speed + other.Speed,
		Torque: o.Torque + other.Torque,
		V:      o.V,
		IMax:   math.Max(o.IMax, other.IMax),
	}, nil
}

// Sub subtracts speed and torque and keeps the smaller current budget.
func (o OperatingCondition) Sub(other OperatingCondition) (OperatingCondition, error) {
	if o.V != other.V {
		return OperatingCondition{}, fmt.Errorf("cannot subtract conditions at %gV and %gV: %w", o.V, other.V, ErrVoltageMismatch)
	}
	return OperatingCondition{
		Speed:  o.Speed - other.Speed,
		Torque: o.Torque - other.Torque,
		V:      o.V,
		IMax:   math.Min(o.IMax, other.IMax),
	}, nil
}

// Power is the mechanical output power.
func (o OperatingCondition) Power() float64 { return o.Speed * o.Torque }

// Efficiency relates mechanical power to electrical input, using IMax as the
// drive current. It is 0 when there is no supply voltage or current, so an
// efficiency objective ranks such conditions last.
func (o OperatingCondition) Efficiency() float64 {
	if o.IMax == 0 || o.V == 0 {
		return 0
	}
	return o.Power() / (o.IMax * o.V)
}

type Kind int

const (
	KindMotor Kind = iota
	KindGearPair
)

func (k Kind) String() string {
	switch k {
	case KindMotor:
		return "motor"
	case KindGearPair:
		return "gear pair"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Component is one stage of an actuator chain. The set of kinds is closed:
// chains hold one optional motor followed by gear pairs.
type Component interface {
	Kind() Kind
	// Ratio is the speed reduction across the component.
	Ratio() float64
	// Height is the axial footprint used to stack the next component.
	Height() float64
	// Disp is the requested axial displacement from the previous component.
	Disp() float64
	Cost() float64
	Volume() float64
	SpeedTorque(op OperatingCondition) OperatingCondition
	Place(at mesh.Transform) Placement
}

// Placement is the result of placing a component at a pose. Pose is the
// frame the next component starts from. Groups[0] continues the caller's
// current group; each further group starts a new one.
type Placement struct {
	Pose   mesh.Transform
	Groups [][]*mesh.Solid
}

// Solids flattens the groups in order.
func (p Placement) Solids() []*mesh.Solid {
	var out []*mesh.Solid
	for _, g := range p.Groups {
		out = append(out, g...)
	}
	return out
}

// Sign returns -1 for negative displacements and 1 otherwise.
func Sign(disp float64) float64 {
	if disp < 0 {
		return -1
	}
	return 1
}
