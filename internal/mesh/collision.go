package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ContactTolerance is the penetration depth below which touching solids do
// not count as colliding.
const ContactTolerance = 1e-9

// Collide reports whether two cylinders overlap with positive volume.
// Parallel axes are tested exactly; other orientations fall back to a
// bounding box overlap.
func Collide(a, b *Solid) bool {
	axis := a.Axis()
	if r3.Norm(r3.Cross(axis, b.Axis())) > 1e-9 {
		return boxesOverlap(a.Bounds(), b.Bounds())
	}

	d := r3.Sub(b.Center(), a.Center())
	along := r3.Dot(d, axis)
	radial := r3.Norm(r3.Sub(d, r3.Scale(along, axis)))

	axialOverlap := (a.Height+b.Height)/2 - math.Abs(along)
	radialOverlap := a.Radius + b.Radius - radial
	return axialOverlap > ContactTolerance && radialOverlap > ContactTolerance
}

func boxesOverlap(a, b r3.Box) bool {
	return a.Min.X < b.Max.X-ContactTolerance && b.Min.X < a.Max.X-ContactTolerance &&
		a.Min.Y < b.Max.Y-ContactTolerance && b.Min.Y < a.Max.Y-ContactTolerance &&
		a.Min.Z < b.Max.Z-ContactTolerance && b.Min.Z < a.Max.Z-ContactTolerance
}
