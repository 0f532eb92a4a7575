package mesh

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an immutable 4x4 homogeneous rigid transform.
type Transform struct {
	m *mat.Dense
}

func Identity() Transform {
	return Transform{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})}
}

func Translation(x, y, z float64) Transform {
	return Transform{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	})}
}

// RotationZ rotates by angle radians about the z axis.
func RotationZ(angle float64) Transform {
	s, c := math.Sincos(angle)
	return Transform{m: mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})}
}

func (t Transform) dense() *mat.Dense {
	if t.m == nil {
		return Identity().m
	}
	return t.m
}

// Mul returns t*o: o is applied first, in t's frame.
func (t Transform) Mul(o Transform) Transform {
	var r mat.Dense
	r.Mul(t.dense(), o.dense())
	return Transform{m: &r}
}

func (t Transform) Apply(p r3.Vec) r3.Vec {
	m := t.dense()
	return r3.Vec{
		X: m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)*p.Z + m.At(0, 3),
		Y: m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)*p.Z + m.At(1, 3),
		Z: m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)*p.Z + m.At(2, 3),
	}
}

// ApplyDir transforms a direction, ignoring translation.
func (t Transform) ApplyDir(d r3.Vec) r3.Vec {
	m := t.dense()
	return r3.Vec{
		X: m.At(0, 0)*d.X + m.At(0, 1)*d.Y + m.At(0, 2)*d.Z,
		Y: m.At(1, 0)*d.X + m.At(1, 1)*d.Y + m.At(1, 2)*d.Z,
		Z: m.At(2, 0)*d.X + m.At(2, 1)*d.Y + m.At(2, 2)*d.Z,
	}
}

func (t Transform) Origin() r3.Vec {
	m := t.dense()
	return r3.Vec{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}
}

func (t Transform) Equal(o Transform, tol float64) bool {
	return mat.EqualApprox(t.dense(), o.dense(), tol)
}
