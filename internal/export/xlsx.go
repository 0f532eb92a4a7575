package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/geartrain/internal/storage"
)

const (
	sheetConditions = "Conditions"
	sheetComponents = "Components"
	sheetCurve      = "Curve"
)

// WriteXLSX writes a workbook with a conditions sheet, a components sheet
// and, when sampled, a curve sheet.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetConditions); err != nil {
		return err
	}
	header := storage.ConditionHeader(len(r.Eval.Resistance))
	rows := storage.ConditionRows(r.Eval)
	if err := writeSheet(f, sheetConditions, header, len(rows), func(i int) []interface{} {
		return floatRow(rows[i])
	}); err != nil {
		return err
	}

	components := r.Eval.Actuator.Components()
	if _, err := f.NewSheet(sheetComponents); err != nil {
		return err
	}
	if err := writeSheet(f, sheetComponents, []string{"index", "kind", "ratio", "height", "cost", "volume"}, len(components), func(i int) []interface{} {
		c := components[i]
		return []interface{}{i, c.Kind().String(), c.Ratio(), c.Height(), c.Cost(), c.Volume()}
	}); err != nil {
		return err
	}

	if len(r.Curve) > 0 {
		if _, err := f.NewSheet(sheetCurve); err != nil {
			return err
		}
		if err := writeSheet(f, sheetCurve, []string{"speed", "torque", "current", "power"}, len(r.Curve), func(i int) []interface{} {
			pt := r.Curve[i]
			return []interface{}{pt.Speed, pt.Torque, pt.Current, pt.Power}
		}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, n int, row func(int) []interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row(i)); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func floatRow(vals []float64) []interface{} {
	row := make([]interface{}, len(vals))
	for i, v := range vals {
		row[i] = v
	}
	return row
}
