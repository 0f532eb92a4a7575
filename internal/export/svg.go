package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/geartrain/internal/mesh"
	"github.com/san-kum/geartrain/internal/viz"
)

// CanvasToSVG converts a braille canvas to an SVG of dots.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.DotsX()) * scale
	height := float64(canvas.DotsY()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#4fc3f7">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.DotsY(); y++ {
		for x := 0; x < canvas.DotsX(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// AssemblySVG draws the axial projection of an assembly to scale, one
// circle per solid, in millimetres. Mesh groups alternate fill colours.
func AssemblySVG(space *mesh.Assembly) string {
	if space == nil || len(space.Solids) == 0 {
		return ""
	}

	const margin = 2.0
	b := space.Bounds()
	minX, minY := b.Min.X-margin, b.Min.Y-margin
	w := b.Max.X - b.Min.X + 2*margin
	h := b.Max.Y - b.Min.Y + 2*margin

	group := make([]int, len(space.Solids))
	for g, members := range space.Groups {
		for _, i := range members {
			group[i] = g
		}
	}
	fills := []string{"#90caf9", "#ffcc80", "#a5d6a7", "#ce93d8"}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.1fmm" height="%.1fmm" viewBox="0 0 %.3f %.3f">
<rect width="100%%" height="100%%" fill="#fafafa"/>
<g stroke="#263238" stroke-width="0.2" fill-opacity="0.6">
`, w, h, w, h)

	for i, s := range space.Solids {
		c := s.Center()
		// SVG y points down.
		fmt.Fprintf(&sb, "<circle cx=\"%.3f\" cy=\"%.3f\" r=\"%.3f\" fill=\"%s\"/>\n",
			c.X-minX, h-(c.Y-minY), s.Radius, fills[group[i]%len(fills)])
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
