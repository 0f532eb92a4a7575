// Package export writes an evaluated actuator to files: a JSON document, an
// XLSX workbook, an HTML chart page, a PDF report, and PNG or SVG images.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/problem"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the accepted format names, which are also file extensions.
var Formats = []string{"json", "xlsx", "html", "pdf", "png", "svg"}

// Report is one evaluated design. Problem and Curve may be nil.
type Report struct {
	Name    string
	Problem *problem.Problem
	Eval    *problem.Evaluation
	Curve   []actuator.CurvePoint
}

// Write encodes r to w in the given format.
func Write(w io.Writer, format string, r *Report) error {
	switch strings.ToLower(format) {
	case "json":
		return WriteJSON(w, r)
	case "xlsx":
		return WriteXLSX(w, r)
	case "html":
		return WriteHTML(w, r)
	case "pdf":
		return WritePDF(w, r)
	case "png":
		return WriteCurveImage(w, r.Curve, "png")
	case "svg":
		_, err := io.WriteString(w, AssemblySVG(r.Eval.Actuator.Mesh()))
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Save writes r to path, choosing the format from its extension.
func Save(path string, r *Report) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if !known(format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, format, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func known(format string) bool {
	for _, f := range Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}
