// Package roots provides scalar root finders used by the gear geometry
// solver.
//
//   - [Brent]: bracketed root finding (Brent-Dekker with inverse quadratic
//     extrapolation), the default for working pressure angles.
//   - [Newton]: derivative-based iteration from a fixed starting point,
//     used for the tooth-root auxiliary angle.
//
// Both solvers are bounded by an iteration limit and report failure with an
// error instead of returning the last iterate.
package roots
