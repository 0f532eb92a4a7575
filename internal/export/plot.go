package export

import (
	"errors"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/geartrain/internal/actuator"
)

var ErrEmptyCurve = errors.New("empty speed-torque curve")

const (
	plotWidth  = 16 * vg.Centimeter
	plotHeight = 10 * vg.Centimeter
)

// CurvePlot draws output torque and power against output speed.
func CurvePlot(curve []actuator.CurvePoint, title string) (*plot.Plot, error) {
	if len(curve) == 0 {
		return nil, ErrEmptyCurve
	}

	torque := make(plotter.XYs, len(curve))
	power := make(plotter.XYs, len(curve))
	for i, pt := range curve {
		torque[i].X, torque[i].Y = pt.Speed, pt.Torque
		power[i].X, power[i].Y = pt.Speed, pt.Power
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "output speed [rad/s]"
	p.Y.Label.Text = "torque [Nm] / power [W]"
	p.Add(plotter.NewGrid())

	tl, err := plotter.NewLine(torque)
	if err != nil {
		return nil, err
	}
	tl.Width = vg.Points(1.5)
	pl, err := plotter.NewLine(power)
	if err != nil {
		return nil, err
	}
	pl.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(tl, pl)
	p.Legend.Add("torque", tl)
	p.Legend.Add("power", pl)
	p.Legend.Top = true
	return p, nil
}

// WriteCurveImage renders the curve plot as png, svg or pdf.
func WriteCurveImage(w io.Writer, curve []actuator.CurvePoint, format string) error {
	p, err := CurvePlot(curve, "speed-torque curve")
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
