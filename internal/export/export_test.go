package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/san-kum/geartrain/internal/config"
	"github.com/san-kum/geartrain/internal/problem"
	"github.com/san-kum/geartrain/internal/viz"
)

func goodReport(t *testing.T) *Report {
	t.Helper()
	cfg := config.GetPreset("good")
	a, err := cfg.Build()
	require.NoError(t, err)
	conds, err := cfg.OperatingConditions()
	require.NoError(t, err)
	p, err := problem.Get(cfg.Problem, conds)
	require.NoError(t, err)
	e, err := problem.Analyze(a, conds)
	require.NoError(t, err)
	require.NoError(t, p.Score(e))
	curve, err := a.Curve(2, 12, 2, 25)
	require.NoError(t, err)
	return &Report{Name: "good", Problem: p, Eval: e, Curve: curve}
}

func TestWriteJSON(t *testing.T) {
	r := goodReport(t)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "good", doc["name"])
	assert.Equal(t, r.Problem.Name, doc["problem"])
	assert.Len(t, doc["components"], 3)
	assert.Len(t, doc["curve"], 25)

	terms, ok := doc["objective_terms"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, terms, len(r.Problem.Objectives))
}

func TestNewDocument_NoProblem(t *testing.T) {
	r := goodReport(t)
	r.Problem = nil
	doc := NewDocument(r)
	assert.Empty(t, doc.Problem)
	assert.Nil(t, doc.Feasible)
	assert.Nil(t, doc.Objectives)
}

func TestWriteXLSX(t *testing.T) {
	r := goodReport(t)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetConditions, sheetComponents, sheetCurve}, f.GetSheetList())

	rows, err := f.GetRows(sheetConditions)
	require.NoError(t, err)
	require.Len(t, rows, len(r.Eval.Output)+1)
	assert.Equal(t, "target_speed", rows[0][0])
	assert.Len(t, rows[0], 8+4*len(r.Eval.Resistance))

	rows, err = f.GetRows(sheetComponents)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "motor", rows[1][1])
	assert.Equal(t, "gear pair", rows[2][1])

	rows, err = f.GetRows(sheetCurve)
	require.NoError(t, err)
	assert.Len(t, rows, 26)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, goodReport(t)))

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Speed-torque curve")
	assert.Contains(t, html, "Stage safety")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, goodReport(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteCurveImage(t *testing.T) {
	r := goodReport(t)

	var png bytes.Buffer
	require.NoError(t, WriteCurveImage(&png, r.Curve, "png"))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, WriteCurveImage(&svg, r.Curve, "svg"))
	assert.Contains(t, svg.String(), "<svg")

	err := WriteCurveImage(&png, nil, "png")
	assert.True(t, errors.Is(err, ErrEmptyCurve))
}

func TestAssemblySVG(t *testing.T) {
	r := goodReport(t)
	space := r.Eval.Actuator.Mesh()
	svg := AssemblySVG(space)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, len(space.Solids), strings.Count(svg, "<circle"))
	assert.Empty(t, AssemblySVG(nil))
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)

	svg := CanvasToSVG(c, 3)
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `width="24" height="24"`)
	assert.Empty(t, CanvasToSVG(nil, 1))
}

func TestSave(t *testing.T) {
	r := goodReport(t)
	dir := t.TempDir()

	for _, format := range Formats {
		path := filepath.Join(dir, "report."+format)
		require.NoError(t, Save(path, r), format)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), format)
	}

	err := Save(filepath.Join(dir, "report.docx"), r)
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	err = Write(&bytes.Buffer{}, "gif", r)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}
