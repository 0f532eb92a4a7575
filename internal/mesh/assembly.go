package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Assembly is the concatenation of several solids into one face list. Each
// face remembers the solid it came from.
type Assembly struct {
	Solids      []*Solid
	Groups      [][]int
	Vertices    []r3.Vec
	Faces       []Face
	FaceSources []int

	hullArea float64
	hullErr  error
	hullDone bool
}

// Merge concatenates solids. groups holds indices into solids and is kept
// as given.
func Merge(solids []*Solid, groups [][]int) *Assembly {
	a := &Assembly{Solids: solids, Groups: groups}

	nv, nf := 0, 0
	for _, s := range solids {
		nv += len(s.Vertices)
		nf += len(s.Faces)
	}
	a.Vertices = make([]r3.Vec, 0, nv)
	a.Faces = make([]Face, 0, nf)
	a.FaceSources = make([]int, 0, nf)

	for i, s := range solids {
		offset := len(a.Vertices)
		a.Vertices = append(a.Vertices, s.Vertices...)
		for _, f := range s.Faces {
			a.Faces = append(a.Faces, Face{f[0] + offset, f[1] + offset, f[2] + offset})
			a.FaceSources = append(a.FaceSources, i)
		}
	}
	return a
}

func (a *Assembly) Bounds() r3.Box { return boundsOf(a.Vertices) }

// Extents returns the side lengths of the axis-aligned bounding box.
func (a *Assembly) Extents() r3.Vec {
	b := a.Bounds()
	return r3.Sub(b.Max, b.Min)
}

// ConvexHullArea returns the surface area of the convex hull of all
// vertices. The result is computed once; an Assembly is not safe for
// concurrent first calls.
func (a *Assembly) ConvexHullArea() (float64, error) {
	if !a.hullDone {
		var h *Hull
		h, a.hullErr = ConvexHull(a.Vertices)
		if a.hullErr == nil {
			a.hullArea = h.Area()
		}
		a.hullDone = true
	}
	return a.hullArea, a.hullErr
}

// InternalCollisions returns every colliding pair of solids, i < j.
func (a *Assembly) InternalCollisions() [][2]int {
	var pairs [][2]int
	for i := 0; i < len(a.Solids); i++ {
		for j := i + 1; j < len(a.Solids); j++ {
			if Collide(a.Solids[i], a.Solids[j]) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
