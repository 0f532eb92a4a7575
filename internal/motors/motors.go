// Package motors implements the stepper motor model and its catalog.
package motors

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/mesh"
)

var ErrUnknownMotor = errors.New("motors: unknown motor")

// MotorData is the nominal electromechanical description of a stepper.
type MotorData struct {
	L0     float64 `json:"l0" yaml:"l0"`
	Nm     float64 `json:"nm" yaml:"nm"`
	NwNom  float64 `json:"nw_nom" yaml:"nw_nom"`
	RNom   float64 `json:"r_nom" yaml:"r_nom"`
	Km0    float64 `json:"km0" yaml:"km0"`
	QFstat float64 `json:"q_fstat" yaml:"q_fstat"`
	QFdyn  float64 `json:"q_fdyn" yaml:"q_fdyn"`
	CA     float64 `json:"ca" yaml:"ca"`
	CB     float64 `json:"cb" yaml:"cb"`
	MeshR  float64 `json:"mesh_r" yaml:"mesh_r"`
	MeshH  float64 `json:"mesh_h" yaml:"mesh_h"`
}

var catalog = map[string]MotorData{
	"A": {L0: 162e-9, Nm: 5, NwNom: 550, RNom: 32, Km0: 68.5e-6,
		QFstat: 0.5e-3, QFdyn: 1e-5, CB: 0.0558285056, CA: 0.09696198,
		MeshR: 11, MeshH: 16.8},
	"B": {L0: 150e-9, Nm: 6, NwNom: 500, RNom: 21, Km0: 115.2e-6,
		QFstat: 1e-3, QFdyn: 3e-5, CB: 0.1557764096, CA: 0.17555808,
		MeshR: 16.1, MeshH: 16.4},
	"C": {L0: 234e-9, Nm: 6, NwNom: 300, RNom: 12, Km0: 96e-6,
		QFstat: 0.5e-3, QFdyn: 2e-5, CB: 0.061133184, CA: 0.2219547,
		MeshR: 12.5, MeshH: 16},
	"D": {L0: 316e-9, Nm: 6, NwNom: 240, RNom: 4.8, Km0: 144e-6,
		QFstat: 0.5e-3, QFdyn: 9e-5, CB: 0.20377728, CA: 0.40736514,
		MeshR: 17, MeshH: 22},
	"E": {L0: 23e-9, Nm: 5, NwNom: 1008, RNom: 52, Km0: 32.5e-6,
		QFstat: 0.8e-3, QFdyn: 0.5e-6, CB: 0.0189545216, CA: 0.09626514,
		MeshR: 14, MeshH: 8},
}

// Names returns the catalog names in sorted order. Index lookups refer to
// this order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Data returns the catalog entry for name.
func Data(name string) (MotorData, error) {
	d, ok := catalog[name]
	if !ok {
		return MotorData{}, fmt.Errorf("%w: %q", ErrUnknownMotor, name)
	}
	return d, nil
}

// Get returns a stepper from the catalog with the given coil adjustment.
func Get(name string, fillFactor, rScale float64) (*Stepper, error) {
	d, err := Data(name)
	if err != nil {
		return nil, err
	}
	s := NewStepper(name, d)
	s.AdjustCoil(fillFactor, rScale)
	return s, nil
}

// GetByIndex selects a stepper by its position in Names.
func GetByIndex(index int, fillFactor, rScale float64) (*Stepper, error) {
	names := Names()
	if index < 0 || index >= len(names) {
		return nil, fmt.Errorf("%w: index %d out of %d", ErrUnknownMotor, index, len(names))
	}
	return Get(names[index], fillFactor, rScale)
}

// Stepper is a two-phase stepper motor driven by a chopper at constant
// supply voltage.
type Stepper struct {
	Name       string
	Data       MotorData
	FillFactor float64
	RScale     float64

	R  float64
	Nw float64
}

func NewStepper(name string, data MotorData) *Stepper {
	s := &Stepper{Name: name, Data: data}
	s.AdjustCoil(1, 1)
	return s
}

// AdjustCoil rescales the winding: resistance by rScale and the turn count
// by sqrt(rScale * fillFactor).
func (s *Stepper) AdjustCoil(fillFactor, rScale float64) {
	s.FillFactor = fillFactor
	s.RScale = rScale
	s.R = s.Data.RNom * rScale
	s.Nw = s.Data.NwNom * math.Sqrt(rScale*fillFactor)
}

func (s *Stepper) Kind() dynamo.Kind { return dynamo.KindMotor }

// Ratio is the drive frequency over mechanical speed.
func (s *Stepper) Ratio() float64  { return s.Data.Nm }
func (s *Stepper) Height() float64 { return s.Data.MeshH }
func (s *Stepper) Disp() float64   { return 0 }

func (s *Stepper) Volume() float64 {
	return s.Data.MeshR * s.Data.MeshR * s.Data.MeshH * math.Pi
}

func (s *Stepper) Cost() float64 {
	return s.Data.CA + s.FillFactor*s.Data.CB
}

// SpeedTorque returns the shaft speed and available torque for a drive
// frequency op.Speed. The returned IMax carries the phase current.
func (s *Stepper) SpeedTorque(op dynamo.OperatingCondition) dynamo.OperatingCondition {
	vm := op.V - 0.1
	rtot := s.R + 1
	km := s.Data.Km0 * s.Nw
	l := s.Data.L0 * s.Nw * s.Nw

	imax := 4 / math.Pi * vm / rtot
	if op.IMax > 0 && op.IMax < imax {
		imax = op.IMax
	}

	omega := op.Speed / s.Data.Nm
	rl := rtot*rtot + op.Speed*op.Speed*l*l
	i := vm*4/math.Pi/math.Sqrt(rl) - km*omega*rtot/rl

	torque := math.Min(i, imax)*km - s.Data.QFstat - s.Data.QFdyn*omega
	torque = math.Max(torque, 0)

	out := op
	out.Speed = omega
	out.Torque = torque
	out.IMax = i
	return out
}

// Place stacks the motor body on the current pose.
func (s *Stepper) Place(at mesh.Transform) dynamo.Placement {
	at = at.Mul(mesh.Translation(0, 0, s.Disp()+dynamo.Sign(s.Disp())*s.Height()/2))
	body := mesh.NewCylinder(s.Data.MeshR, s.Data.MeshH, at)
	return dynamo.Placement{Pose: at, Groups: [][]*mesh.Solid{{body}}}
}

var _ dynamo.Component = (*Stepper)(nil)
