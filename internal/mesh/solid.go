package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultSections is the number of segments around a cylinder.
const DefaultSections = 32

type Face [3]int

// Solid is a closed triangulated cylinder centred on its pose origin with
// its axis along the pose z axis.
type Solid struct {
	Radius   float64
	Height   float64
	Pose     Transform
	Vertices []r3.Vec
	Faces    []Face
}

func NewCylinder(radius, height float64, pose Transform) *Solid {
	return NewCylinderSections(radius, height, pose, DefaultSections)
}

func NewCylinderSections(radius, height float64, pose Transform, sections int) *Solid {
	if sections < 3 {
		sections = 3
	}
	s := &Solid{
		Radius:   radius,
		Height:   height,
		Pose:     pose,
		Vertices: make([]r3.Vec, 0, 2*sections+2),
		Faces:    make([]Face, 0, 4*sections),
	}

	half := height / 2
	for _, z := range []float64{-half, half} {
		for k := 0; k < sections; k++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(k) / float64(sections))
			s.Vertices = append(s.Vertices, pose.Apply(r3.Vec{X: radius * cos, Y: radius * sin, Z: z}))
		}
	}
	bottom := len(s.Vertices)
	s.Vertices = append(s.Vertices, pose.Apply(r3.Vec{Z: -half}))
	top := len(s.Vertices)
	s.Vertices = append(s.Vertices, pose.Apply(r3.Vec{Z: half}))

	for k := 0; k < sections; k++ {
		n := (k + 1) % sections
		lo0, lo1 := k, n
		hi0, hi1 := sections+k, sections+n
		s.Faces = append(s.Faces,
			Face{bottom, lo1, lo0},
			Face{top, hi0, hi1},
			Face{lo0, lo1, hi1},
			Face{lo0, hi1, hi0},
		)
	}
	return s
}

func (s *Solid) Center() r3.Vec { return s.Pose.Origin() }

func (s *Solid) Axis() r3.Vec { return r3.Unit(s.Pose.ApplyDir(r3.Vec{Z: 1})) }

func (s *Solid) Volume() float64 { return math.Pi * s.Radius * s.Radius * s.Height }

func (s *Solid) Bounds() r3.Box { return boundsOf(s.Vertices) }

func boundsOf(points []r3.Vec) r3.Box {
	if len(points) == 0 {
		return r3.Box{}
	}
	b := r3.Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Min.Z = math.Min(b.Min.Z, p.Z)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
		b.Max.Z = math.Max(b.Max.Z, p.Z)
	}
	return b
}
