package roots

import (
	"fmt"
	"math"
)

// Newton iterates x -= f(x)/df(x) from x0 until the step falls below
// XTol + RTol*|x|.
func Newton(f, df func(float64) float64, x0 float64, opts Options) (float64, error) {
	opts = opts.withDefaults()

	x := x0
	for i := 0; i < opts.MaxIter; i++ {
		fx := f(x)
		if fx == 0 {
			return x, nil
		}
		d := df(x)
		if d == 0 || math.IsNaN(d) || math.IsNaN(fx) {
			return 0, fmt.Errorf("%w: degenerate derivative at x=%g", ErrNoConvergence, x)
		}
		step := fx / d
		x -= step
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: diverged at iteration %d", ErrNoConvergence, i)
		}
		if math.Abs(step) <= opts.XTol+opts.RTol*math.Abs(x) {
			return x, nil
		}
	}
	return 0, fmt.Errorf("%w after %d iterations", ErrNoConvergence, opts.MaxIter)
}
