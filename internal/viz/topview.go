package viz

import (
	"github.com/san-kum/geartrain/internal/mesh"
)

// TopView draws the axial projection of every solid of an assembly as a
// circle, plus a line joining consecutive gear centers.
func TopView(space *mesh.Assembly, width, height int) *Canvas {
	c := NewCanvas(width, height)
	if space == nil || len(space.Solids) == 0 {
		return c
	}

	b := space.Bounds()
	vp := Fit(c, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)

	for i, s := range space.Solids {
		ctr := s.Center()
		x, y := vp.Dot(ctr.X, ctr.Y)
		c.DrawCircle(x, y, int(s.Radius*vp.Scale+0.5))
		c.Set(x, y)

		if i > 0 {
			prev := space.Solids[i-1].Center()
			px, py := vp.Dot(prev.X, prev.Y)
			c.DrawLine(px, py, x, y)
		}
	}
	return c
}
