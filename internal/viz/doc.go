// Package viz renders evaluated actuators in the terminal.
//
// [Inspector] is a Bubble Tea program with four views:
//
//	summary   components, ratios, per-condition output, objectives, constraints
//	gears     per-stage kinematics and safety factors
//	geometry  braille top view of the assembly
//	curve     output speed-torque and power curves
//
// Keys: tab or ←/→ switch view, 1-4 jump, t cycles themes, q quits.
//
// [Canvas] is a braille dot matrix and [TopView] projects a mesh assembly
// onto it. [CurvePlot] and [PowerPlot] are asciigraph renderings usable
// outside the inspector.
package viz
