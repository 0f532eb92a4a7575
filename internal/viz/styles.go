package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SafetyBar renders a safety factor as a bar filled to v/max, colored by
// margin over one.
func (s Styles) SafetyBar(v, max float64, width int) string {
	frac := v / max
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return s.Verdict(v, 1, 1.2).Render(bar)
}

// Verdict picks Bad below lo, Warn below hi and Good otherwise.
func (s Styles) Verdict(v, lo, hi float64) lipgloss.Style {
	switch {
	case v < lo:
		return s.Bad
	case v < hi:
		return s.Warn
	default:
		return s.Good
	}
}

// Row renders a label and a value padded to labelWidth.
func (s Styles) Row(label, value string, labelWidth int) string {
	pad := labelWidth - len(label)
	if pad < 1 {
		pad = 1
	}
	return s.Label.Render(label+strings.Repeat(" ", pad)) + s.Value.Render(value)
}
