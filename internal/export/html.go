package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// WriteHTML renders an interactive page with the speed-torque curve and the
// per-stage safety factors.
func WriteHTML(w io.Writer, r *Report) error {
	page := components.NewPage()
	page.PageTitle = "geartrain " + r.Name
	if len(r.Curve) > 0 {
		page.AddCharts(curveChart(r))
	}
	if len(r.Eval.Resistance) > 0 {
		page.AddCharts(safetyChart(r))
	}
	page.AddCharts(conditionChart(r))
	return page.Render(w)
}

func globalOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	}
}

func curveChart(r *Report) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts("Speed-torque curve", r.Name)...)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Name: "rad/s"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	x := make([]string, len(r.Curve))
	torque := make([]opts.LineData, len(r.Curve))
	power := make([]opts.LineData, len(r.Curve))
	current := make([]opts.LineData, len(r.Curve))
	for i, pt := range r.Curve {
		x[i] = fmt.Sprintf("%.3g", pt.Speed)
		torque[i] = opts.LineData{Value: pt.Torque}
		power[i] = opts.LineData{Value: pt.Power}
		current[i] = opts.LineData{Value: pt.Current}
	}
	line.SetXAxis(x).
		AddSeries("torque [Nm]", torque).
		AddSeries("power [W]", power).
		AddSeries("current [A]", current)
	return line
}

// safetyChart shows the weakest flank and root safety of every stage over
// all conditions.
func safetyChart(r *Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts("Stage safety", "minimum over operating conditions")...)

	idx, _ := r.Eval.Actuator.GearPairs()
	x := make([]string, len(r.Eval.Resistance))
	flank := make([]opts.BarData, len(r.Eval.Resistance))
	root := make([]opts.BarData, len(r.Eval.Resistance))
	for g, perCond := range r.Eval.Resistance {
		x[g] = fmt.Sprintf("stage %d", idx[g])
		sh, sf := minSafety(perCond)
		flank[g] = opts.BarData{Value: sh}
		root[g] = opts.BarData{Value: sf}
	}
	bar.SetXAxis(x).
		AddSeries("flank SH", flank).
		AddSeries("root SF", root)
	return bar
}

func conditionChart(r *Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOpts("Operating conditions", "target against delivered torque")...)

	x := make([]string, len(r.Eval.Output))
	target := make([]opts.BarData, len(r.Eval.Output))
	output := make([]opts.BarData, len(r.Eval.Output))
	for i, out := range r.Eval.Output {
		x[i] = fmt.Sprintf("%.3g rad/s", out.Speed)
		target[i] = opts.BarData{Value: r.Eval.Targets[i].Torque}
		output[i] = opts.BarData{Value: out.Torque}
	}
	bar.SetXAxis(x).
		AddSeries("target [Nm]", target).
		AddSeries("output [Nm]", output)
	return bar
}
