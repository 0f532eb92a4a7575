package problem

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoGears indicates a gear constraint evaluated on a chain without gear
// pairs.
var ErrNoGears = errors.New("problem: actuator has no gear pairs")

// Term is one named entry of an objective or constraint vector.
type Term struct {
	Name   string
	Weight float64
	Eval   func(e *Evaluation) (float64, error)
}

// Penalty is an ordered group of constraint terms. Constraint sets are
// concatenations of penalties.
type Penalty []Term

func concat(ps ...Penalty) []Term {
	var out []Term
	for _, p := range ps {
		out = append(out, p...)
	}
	return out
}

func totalCost(e *Evaluation) (float64, error) {
	c, err := e.Actuator.Cost(true)
	if err != nil {
		return 0, err
	}
	return floats.Sum(c), nil
}

func minTorqueError(e *Evaluation) (float64, error) {
	return floats.Min(e.TorqueError), nil
}

// rootSafety is the harmonic mean of every tooth root safety factor.
func rootSafety(e *Evaluation) (float64, error) {
	var xs []float64
	for _, perCond := range e.Resistance {
		for _, r := range perCond {
			xs = append(xs, r[2], r[3])
		}
	}
	if len(xs) == 0 {
		return 0, ErrNoGears
	}
	return stat.HarmonicMean(xs, nil), nil
}

func minEfficiency(e *Evaluation) (float64, error) {
	eff := make([]float64, len(e.Output))
	for i, op := range e.Output {
		eff[i] = op.Efficiency()
	}
	return floats.Min(eff), nil
}

func gearRatio(e *Evaluation) (float64, error) {
	return e.Actuator.GearRatio(), nil
}

var (
	costTerm       = Term{Name: "cost", Weight: -1, Eval: totalCost}
	torqueTerm     = Term{Name: "torque", Weight: 1, Eval: minTorqueError}
	safetyTerm     = Term{Name: "safety", Weight: 1, Eval: rootSafety}
	efficiencyTerm = Term{Name: "efficiency", Weight: 1, Eval: minEfficiency}
	ratioTerm      = Term{Name: "ratio", Weight: -1, Eval: gearRatio}
)

var objectiveSets = map[string][]Term{
	"CT":    {costTerm, torqueTerm},
	"CS":    {costTerm, safetyTerm},
	"CTS":   {costTerm, torqueTerm, safetyTerm},
	"CTSE":  {costTerm, torqueTerm, safetyTerm, efficiencyTerm},
	"CTSEI": {costTerm, torqueTerm, safetyTerm, efficiencyTerm, ratioTerm},
}

func kinematicColumn(e *Evaluation, col int) (float64, error) {
	if len(e.Kinematic) == 0 {
		return 0, ErrNoGears
	}
	m := math.Inf(1)
	for _, k := range e.Kinematic {
		m = math.Min(m, k[col])
	}
	return m, nil
}

func resistanceMin(e *Evaluation, from, to int) (float64, error) {
	m := math.Inf(1)
	found := false
	for _, perCond := range e.Resistance {
		for _, r := range perCond {
			for _, v := range r[from:to] {
				m = math.Min(m, v)
				found = true
			}
		}
	}
	if !found {
		return 0, ErrNoGears
	}
	return m, nil
}

// kinematicPenalty bounds interference, contact ratio and specific sliding.
var kinematicPenalty = Penalty{
	{Name: "interference", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
		return kinematicColumn(e, 0)
	}},
	{Name: "contact_ratio", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
		v, err := kinematicColumn(e, 1)
		return v/1.1 - 1, err
	}},
	{Name: "sliding_1", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
		v, err := kinematicColumn(e, 2)
		return v/5 + 1, err
	}},
	{Name: "sliding_2", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
		v, err := kinematicColumn(e, 3)
		return v/5 + 1, err
	}},
}

// resistancePenalty requires flank and root safety above one.
var resistancePenalty = Penalty{
	{Name: "flank_safety", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
		v, err := resistanceMin(e, 0, 2)
		return v - 1, err
	}},
	{Name: "root_safety", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
		v, err := resistanceMin(e, 2, 4)
		return v - 1, err
	}},
}

// torquePenalty requires the worst torque deficit to stay below minT.
func torquePenalty(minT float64) Penalty {
	return Penalty{
		{Name: "torque_error", Weight: -1, Eval: func(e *Evaluation) (float64, error) {
			return floats.Min(e.TorqueError) + minT, nil
		}},
	}
}

var collisionPenalty = Penalty{
	{Name: "collisions", Weight: 1, Eval: func(e *Evaluation) (float64, error) {
		return e.Actuator.InternalCollisions(), nil
	}},
}

// Housing envelope in millimetres.
const (
	EnvelopeY = 50.
	EnvelopeZ = 35.
)

var envelopePenalty = Penalty{
	{Name: "envelope_y", Weight: 1, Eval: func(e *Evaluation) (float64, error) {
		return e.Actuator.Mesh().Extents().Y/EnvelopeY - 1, nil
	}},
	{Name: "envelope_z", Weight: 1, Eval: func(e *Evaluation) (float64, error) {
		return e.Actuator.Mesh().Extents().Z/EnvelopeZ - 1, nil
	}},
}

// Required output shaft position and its tolerance in millimetres.
const (
	OutputX         = 40.
	OutputY         = 0.
	OutputTolerance = 0.5
)

var outputPenalty = Penalty{
	{Name: "output_position", Weight: 1, Eval: func(e *Evaluation) (float64, error) {
		solids := e.Actuator.Mesh().Solids
		if len(solids) == 0 {
			return 0, ErrNoGears
		}
		c := solids[len(solids)-1].Center()
		d := math.Hypot(c.X-OutputX, c.Y-OutputY)
		return math.Max(0, d-OutputTolerance) / 10, nil
	}},
}

func constraintSet(name string, minT float64) ([]Term, bool) {
	c1 := concat(kinematicPenalty, resistancePenalty, torquePenalty(minT))
	switch name {
	case "C1":
		return c1, true
	case "C2":
		return concat(c1, collisionPenalty), true
	case "C3":
		return concat(c1, collisionPenalty, envelopePenalty), true
	case "C4":
		return concat(c1, collisionPenalty, outputPenalty), true
	case "C5":
		return concat(c1, collisionPenalty, envelopePenalty, outputPenalty), true
	}
	return nil, false
}
