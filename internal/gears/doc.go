// Package gears models external spur gears and meshed gear pairs: working
// pressure angle, path of contact, ISO 6336 contact and bending stresses and
// the geometry each pair contributes to an actuator assembly.
//
// Lengths are millimetres, torques newton metres and stresses pascals.
package gears
