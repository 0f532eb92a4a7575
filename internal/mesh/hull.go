package mesh

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrDegenerateHull = errors.New("mesh: points do not span a volume")

// Hull is a closed convex polyhedron. Faces are wound counter-clockwise seen
// from outside and index into Points.
type Hull struct {
	Points []r3.Vec
	Faces  []Face
}

type hullFace struct {
	v      Face
	normal r3.Vec
	offset float64
}

func newHullFace(pts []r3.Vec, a, b, c int) hullFace {
	n := r3.Cross(r3.Sub(pts[b], pts[a]), r3.Sub(pts[c], pts[a]))
	if l := r3.Norm(n); l > 0 {
		n = r3.Scale(1/l, n)
	}
	return hullFace{v: Face{a, b, c}, normal: n, offset: r3.Dot(n, pts[a])}
}

func (f hullFace) dist(p r3.Vec) float64 { return r3.Dot(f.normal, p) - f.offset }

// ConvexHull builds the hull incrementally: each point outside the current
// hull removes the faces it can see and is joined to the horizon.
func ConvexHull(points []r3.Vec) (*Hull, error) {
	if len(points) < 4 {
		return nil, ErrDegenerateHull
	}
	box := boundsOf(points)
	diag := r3.Norm(r3.Sub(box.Max, box.Min))
	if diag == 0 {
		return nil, ErrDegenerateHull
	}
	eps := 1e-10 * diag

	seed, err := initialSimplex(points, eps)
	if err != nil {
		return nil, err
	}

	centroid := r3.Scale(0.25, r3.Add(r3.Add(points[seed[0]], points[seed[1]]), r3.Add(points[seed[2]], points[seed[3]])))
	outward := func(a, b, c int) hullFace {
		f := newHullFace(points, a, b, c)
		if f.dist(centroid) > 0 {
			f = newHullFace(points, a, c, b)
		}
		return f
	}
	faces := []hullFace{
		outward(seed[0], seed[1], seed[2]),
		outward(seed[0], seed[1], seed[3]),
		outward(seed[0], seed[2], seed[3]),
		outward(seed[1], seed[2], seed[3]),
	}

	used := map[int]bool{seed[0]: true, seed[1]: true, seed[2]: true, seed[3]: true}
	for idx, p := range points {
		if used[idx] {
			continue
		}

		visible := make([]bool, len(faces))
		seen := false
		for fi, f := range faces {
			if f.dist(p) > eps {
				visible[fi] = true
				seen = true
			}
		}
		if !seen {
			continue
		}

		edges := make(map[[2]int]bool)
		for fi, f := range faces {
			if visible[fi] {
				for k := 0; k < 3; k++ {
					edges[[2]int{f.v[k], f.v[(k+1)%3]}] = true
				}
			}
		}

		next := make([]hullFace, 0, len(faces)+8)
		for fi, f := range faces {
			if !visible[fi] {
				next = append(next, f)
			}
		}
		for fi, f := range faces {
			if !visible[fi] {
				continue
			}
			for k := 0; k < 3; k++ {
				a, b := f.v[k], f.v[(k+1)%3]
				if !edges[[2]int{b, a}] {
					next = append(next, newHullFace(points, a, b, idx))
				}
			}
		}
		faces = next
	}

	h := &Hull{Points: points, Faces: make([]Face, len(faces))}
	for i, f := range faces {
		h.Faces[i] = f.v
	}
	return h, nil
}

func initialSimplex(points []r3.Vec, eps float64) ([4]int, error) {
	var seed [4]int

	for i, p := range points {
		if p.X < points[seed[0]].X {
			seed[0] = i
		}
	}
	p0 := points[seed[0]]

	best := -1.0
	for i, p := range points {
		if d := r3.Norm(r3.Sub(p, p0)); d > best {
			best, seed[1] = d, i
		}
	}
	if best <= eps {
		return seed, ErrDegenerateHull
	}
	dir := r3.Unit(r3.Sub(points[seed[1]], p0))

	best = -1.0
	for i, p := range points {
		if d := r3.Norm(r3.Cross(r3.Sub(p, p0), dir)); d > best {
			best, seed[2] = d, i
		}
	}
	if best <= eps {
		return seed, ErrDegenerateHull
	}

	plane := newHullFace(points, seed[0], seed[1], seed[2])
	best = -1.0
	for i, p := range points {
		if d := math.Abs(plane.dist(p)); d > best {
			best, seed[3] = d, i
		}
	}
	if best <= eps {
		return seed, ErrDegenerateHull
	}
	return seed, nil
}

func (h *Hull) Area() float64 {
	area := 0.0
	for _, f := range h.Faces {
		a, b, c := h.Points[f[0]], h.Points[f[1]], h.Points[f[2]]
		area += 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	}
	return area
}

// Volume uses the divergence theorem over the outward-wound faces.
func (h *Hull) Volume() float64 {
	vol := 0.0
	for _, f := range h.Faces {
		a, b, c := h.Points[f[0]], h.Points[f[1]], h.Points[f[2]]
		vol += r3.Dot(a, r3.Cross(b, c)) / 6
	}
	return vol
}
