// Package dynamo provides the core primitives shared by every actuator
// component.
//
//   - [OperatingCondition]: speed, torque, supply voltage and current budget
//   - [Component]: capability interface implemented by motors and gear pairs
//   - [Placement]: result of placing a component along the chain axis
//   - [ParallelFor]: fan-out helper for independent evaluations
//
// # Example
//
//	op := dynamo.OperatingCondition{Speed: 1.35, Torque: 0.6, V: 9, IMax: 2}
//	out := stepper.SpeedTorque(op)
//	out = pair.SpeedTorque(out)
//
// # Thread Safety
//
// Components are immutable once built and may be read from several
// goroutines. Independent designs should still be evaluated on separate
// component instances.
package dynamo
