package actuator

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/geartrain/internal/dynamo"
)

// CurvePoint is the output of the chain when driven for one output speed.
type CurvePoint struct {
	Speed  float64 `json:"speed"`
	Torque float64 `json:"torque"`
	// Current is the phase current reported by the motor, zero for
	// unpowered chains.
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
}

// Curve samples n output speeds evenly over [0, maxSpeed] at supply v and
// current budget imax.
func (a *Actuator) Curve(maxSpeed, v, imax float64, n int) ([]CurvePoint, error) {
	if n < 2 {
		n = 2
	}
	speeds := floats.Span(make([]float64, n), 0, maxSpeed)
	conds := make([]dynamo.OperatingCondition, n)
	for i, s := range speeds {
		conds[i] = dynamo.OperatingCondition{Speed: s, V: v, IMax: imax}
	}

	out, _, err := a.SpeedTorque(a.MatchedSpeedControl(conds), nil)
	if err != nil {
		return nil, err
	}

	points := make([]CurvePoint, n)
	for i, op := range out {
		points[i] = CurvePoint{Speed: speeds[i], Torque: op.Torque, Power: speeds[i] * op.Torque}
		if len(a.components) > 0 && a.components[0].Kind() == dynamo.KindMotor {
			points[i].Current = op.IMax
		}
	}
	return points, nil
}
