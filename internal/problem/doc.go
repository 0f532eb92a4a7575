// Package problem defines the benchmark optimisation problems built on the
// actuator model.
//
// A problem name such as "cts2s3" selects an objective set (CT, CS, CTS,
// CTSE or CTSEI), a constraint set (C1 to C5) and optionally the number of
// stages (three when omitted). Raw objectives are multiplied by their
// weights and negated to give values to minimise; raw constraints
// multiplied by their weights must be non-positive for a feasible design.
package problem
