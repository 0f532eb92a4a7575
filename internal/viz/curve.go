package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/geartrain/internal/actuator"
)

// CurvePlot renders output torque against output speed.
func CurvePlot(points []actuator.CurvePoint, width, height int, caption string) string {
	if len(points) == 0 {
		return ""
	}
	torque := make([]float64, len(points))
	for i, p := range points {
		torque[i] = p.Torque
	}
	return asciigraph.Plot(torque,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PowerPlot renders output power and motor current on one chart.
func PowerPlot(points []actuator.CurvePoint, width, height int, caption string) string {
	if len(points) == 0 {
		return ""
	}
	power := make([]float64, len(points))
	current := make([]float64, len(points))
	for i, p := range points {
		power[i] = p.Power
		current[i] = p.Current
	}
	return asciigraph.PlotMany([][]float64{power, current},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.Caption(caption),
	)
}
