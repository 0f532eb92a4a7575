package problem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/design"
	"github.com/san-kum/geartrain/internal/dynamo"
)

var (
	ErrUnknownProblem = errors.New("problem: unknown problem")
	ErrNoTargets      = errors.New("problem: no target conditions")
)

// DefaultStages is used when a problem name has no stage suffix.
const DefaultStages = 3

// RefPoint is the hypervolume reference coordinate for every objective.
const RefPoint = 11.

var namePattern = regexp.MustCompile(`^(c(t|s)s?e?i?)([1-9])(s[1-9])?$`)

// Problem is a named design problem over spatial design vectors.
type Problem struct {
	Name        string
	Conditions  []dynamo.OperatingCondition
	Objectives  []Term
	Constraints []Term
	Stages      int
}

// Get parses a problem name. conds defaults to OpSet2 when nil.
func Get(name string, conds []dynamo.OperatingCondition) (*Problem, error) {
	if conds == nil {
		conds = OpSets[DefaultOpSet]
	}
	m := namePattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProblem, name)
	}

	oName := strings.ToUpper(m[1])
	objectives, ok := objectiveSets[oName]
	if !ok {
		return nil, fmt.Errorf("%w: no objective set %s", ErrUnknownProblem, oName)
	}

	minT := 0.001
	if oName != "CS" {
		minT = math.Inf(1)
		for _, c := range conds {
			minT = math.Min(minT, c.Torque)
		}
		minT -= 0.001
	}

	cName := "C" + m[3]
	constraints, ok := constraintSet(cName, minT)
	if !ok {
		return nil, fmt.Errorf("%w: no constraint set %s", ErrUnknownProblem, cName)
	}

	stages := DefaultStages
	if m[4] != "" {
		stages, _ = strconv.Atoi(m[4][1:])
	}

	return &Problem{
		Name:        strings.ToLower(name),
		Conditions:  conds,
		Objectives:  objectives,
		Constraints: constraints,
		Stages:      stages,
	}, nil
}

// ObjectiveSets lists the objective set names.
func ObjectiveSets() []string {
	names := make([]string, 0, len(objectiveSets))
	for n := range objectiveSets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ConstraintSets lists the constraint set names.
func ConstraintSets() []string {
	return []string{"C1", "C2", "C3", "C4", "C5"}
}

func weights(terms []Term) []float64 {
	w := make([]float64, len(terms))
	for i, t := range terms {
		w[i] = t.Weight
	}
	return w
}

func (p *Problem) Weights() []float64           { return weights(p.Objectives) }
func (p *Problem) ConstraintWeights() []float64 { return weights(p.Constraints) }

// Ref is the hypervolume reference point.
func (p *Problem) Ref() []float64 {
	r := make([]float64, len(p.Objectives))
	for i := range r {
		r[i] = RefPoint
	}
	return r
}

func (p *Problem) Bounds() (lower, upper []float64) { return design.Bounds(p.Stages) }

// Evaluation is the full assessment of one actuator under a condition set.
type Evaluation struct {
	Actuator *actuator.Actuator `json:"-"`

	Targets     []dynamo.OperatingCondition   `json:"targets"`
	Control     []dynamo.OperatingCondition   `json:"control"`
	Output      []dynamo.OperatingCondition   `json:"output"`
	History     [][]dynamo.OperatingCondition `json:"history"`
	TorqueError []float64                     `json:"torque_error"`
	Kinematic   []actuator.Kinematic          `json:"kinematic"`
	Resistance  [][]actuator.Resistance       `json:"resistance"`

	Objectives  []float64 `json:"objectives,omitempty"`
	Constraints []float64 `json:"constraints,omitempty"`
}

// Analyze runs an actuator at the speeds of targets and records the chain
// response and gear constraints.
func Analyze(a *actuator.Actuator, targets []dynamo.OperatingCondition) (*Evaluation, error) {
	control := a.MatchedSpeedControl(targets)
	out, history, err := a.SpeedTorque(control, nil)
	if err != nil {
		return nil, err
	}
	kinematic, resistance, err := a.GearConstraints(history)
	if err != nil {
		return nil, err
	}

	tErr := make([]float64, len(out))
	for i := range out {
		tErr[i] = out[i].Torque - targets[i].Torque
	}

	return &Evaluation{
		Actuator:    a,
		Targets:     targets,
		Control:     control,
		Output:      out,
		History:     history,
		TorqueError: tErr,
		Kinematic:   kinematic,
		Resistance:  resistance,
	}, nil
}

// CurveMargin stretches the sampled speed range past the fastest target.
const CurveMargin = 1.2

// Curve samples the speed-torque curve of the evaluated actuator up to
// CurveMargin times the fastest target speed, at the supply of the first
// target.
func (e *Evaluation) Curve(n int) ([]actuator.CurvePoint, error) {
	if len(e.Targets) == 0 {
		return nil, ErrNoTargets
	}
	maxSpeed := 0.
	for _, t := range e.Targets {
		maxSpeed = math.Max(maxSpeed, t.Speed)
	}
	return e.Actuator.Curve(CurveMargin*maxSpeed, e.Targets[0].V, e.Targets[0].IMax, n)
}

// Score fills the objective and constraint vectors of e.
func (p *Problem) Score(e *Evaluation) error {
	var err error
	if e.Objectives, err = evalTerms(p.Objectives, e); err != nil {
		return err
	}
	e.Constraints, err = evalTerms(p.Constraints, e)
	return err
}

func evalTerms(terms []Term, e *Evaluation) ([]float64, error) {
	out := make([]float64, len(terms))
	for i, t := range terms {
		v, err := t.Eval(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

// Prepare decodes x and analyses the resulting actuator.
func (p *Problem) Prepare(x []float64) (*Evaluation, error) {
	a, err := design.NewActuator(x, p.Stages, true)
	if err != nil {
		return nil, err
	}
	return Analyze(a, p.Conditions)
}

// Evaluate decodes, analyses and scores a design vector.
func (p *Problem) Evaluate(x []float64) (*Evaluation, error) {
	e, err := p.Prepare(x)
	if err != nil {
		return nil, err
	}
	if err := p.Score(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Minimized returns objectives oriented for minimisation and weighted
// constraints, feasible when every entry is non-positive.
func (p *Problem) Minimized(e *Evaluation) (f, g []float64) {
	f = make([]float64, len(e.Objectives))
	for i, v := range e.Objectives {
		f[i] = -v * p.Objectives[i].Weight
	}
	g = make([]float64, len(e.Constraints))
	for i, v := range e.Constraints {
		g[i] = v * p.Constraints[i].Weight
	}
	return f, g
}

// Feasible reports whether every weighted constraint is satisfied.
func (p *Problem) Feasible(e *Evaluation) bool {
	_, g := p.Minimized(e)
	for _, v := range g {
		if v > 0 {
			return false
		}
	}
	return true
}

// Result pairs a batch entry with its outcome.
type Result struct {
	Evaluation *Evaluation
	Err        error
}

// EvaluateBatch evaluates designs concurrently. Each design builds its own
// actuator. Entries not started before ctx is done report ctx.Err().
func (p *Problem) EvaluateBatch(ctx context.Context, xs [][]float64, workers int) []Result {
	results := make([]Result, len(xs))
	dynamo.ParallelFor(len(xs), workers, func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				continue
			}
			results[i].Evaluation, results[i].Err = p.Evaluate(xs[i])
		}
	})
	return results
}
