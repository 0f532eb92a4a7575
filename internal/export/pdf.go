package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/viz"
)

// WritePDF writes a one-page A4 design report.
func WritePDF(w io.Writer, r *Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Actuator report: "+r.Name)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	if r.Problem != nil {
		verdict := "infeasible"
		if r.Problem.Feasible(r.Eval) {
			verdict = "feasible"
		}
		pdf.Cell(0, 6, fmt.Sprintf("Problem: %s (%s)", r.Problem.Name, verdict))
		pdf.Ln(6)
	}
	for _, line := range viz.SummaryLines(r.Eval) {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	componentTable(pdf, r)
	if len(r.Eval.Resistance) > 0 {
		pdf.Ln(4)
		stageTable(pdf, r)
	}
	if r.Problem != nil && len(r.Eval.Objectives) > 0 {
		pdf.Ln(4)
		termTable(pdf, r)
	}

	if len(r.Curve) > 0 {
		var img bytes.Buffer
		if err := WriteCurveImage(&img, r.Curve, "png"); err != nil {
			return err
		}
		pdf.Ln(4)
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("curve", opt, &img)
		pdf.ImageOptions("curve", 15, pdf.GetY(), 160, 0, true, opt, 0, "")
	}

	return pdf.Output(w)
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(225, 230, 240)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 6, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells ...string) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], 5, c, "1", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)
}

func componentTable(pdf *gofpdf.Fpdf, r *Report) {
	widths := []float64{15, 30, 30, 30, 35, 35}
	tableHeader(pdf, widths, "#", "kind", "ratio", "height", "cost", "volume")
	for i, c := range r.Eval.Actuator.Components() {
		tableRow(pdf, widths,
			fmt.Sprint(i), c.Kind().String(),
			fmt.Sprintf("%.3f", c.Ratio()), fmt.Sprintf("%.2f", c.Height()),
			fmt.Sprintf("%.4g", c.Cost()), fmt.Sprintf("%.4g", c.Volume()))
	}
}

func stageTable(pdf *gofpdf.Fpdf, r *Report) {
	idx, pairs := r.Eval.Actuator.GearPairs()
	widths := []float64{20, 25, 25, 30, 30, 25, 25}
	tableHeader(pdf, widths, "stage", "teeth", "module", "interference", "contact ratio", "min SH", "min SF")
	for g, gp := range pairs {
		k := r.Eval.Kinematic[g]
		sh, sf := minSafety(r.Eval.Resistance[g])
		tableRow(pdf, widths,
			fmt.Sprint(idx[g]),
			fmt.Sprintf("%g/%g", gp.Pinion.Z, gp.Gear.Z),
			fmt.Sprintf("%g", gp.Pinion.M),
			fmt.Sprintf("%.4g", k[0]), fmt.Sprintf("%.3f", k[1]),
			fmt.Sprintf("%.2f", sh), fmt.Sprintf("%.2f", sf))
	}
}

func termTable(pdf *gofpdf.Fpdf, r *Report) {
	widths := []float64{60, 35, 30}
	tableHeader(pdf, widths, "term", "value", "weight")
	for i, t := range r.Problem.Objectives {
		tableRow(pdf, widths, "objective "+t.Name, fmt.Sprintf("%.5g", r.Eval.Objectives[i]), fmt.Sprintf("%g", t.Weight))
	}
	for i, t := range r.Problem.Constraints {
		tableRow(pdf, widths, "constraint "+t.Name, fmt.Sprintf("%.5g", r.Eval.Constraints[i]), fmt.Sprintf("%g", t.Weight))
	}
}

// minSafety returns the lowest flank and root safety over all conditions.
func minSafety(perCond []actuator.Resistance) (flank, root float64) {
	flank, root = math.Inf(1), math.Inf(1)
	for _, res := range perCond {
		flank = math.Min(flank, math.Min(res[0], res[1]))
		root = math.Min(root, math.Min(res[2], res[3]))
	}
	return flank, root
}
