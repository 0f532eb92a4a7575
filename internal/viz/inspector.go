package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/geartrain/internal/actuator"
	"github.com/san-kum/geartrain/internal/dynamo"
	"github.com/san-kum/geartrain/internal/problem"
)

const (
	tabSummary = iota
	tabGears
	tabGeometry
	tabCurve
	tabCount
)

var tabNames = [tabCount]string{"summary", "gears", "geometry", "curve"}

// Inspector is a read-only terminal browser for one evaluated actuator.
type Inspector struct {
	name   string
	prob   *problem.Problem
	eval   *problem.Evaluation
	curve  []actuator.CurvePoint
	tab    int
	theme  int
	styles Styles
	width  int
	height int
}

// NewInspector builds the inspector. prob and curve may be nil.
func NewInspector(name string, prob *problem.Problem, eval *problem.Evaluation, curve []actuator.CurvePoint) Inspector {
	return Inspector{
		name:   name,
		prob:   prob,
		eval:   eval,
		curve:  curve,
		styles: Themes[0].Styles(),
		width:  100,
		height: 30,
	}
}

// WithTheme selects a theme by name. Unknown names keep the current theme.
func (m Inspector) WithTheme(name string) Inspector {
	for i, t := range Themes {
		if t.Name == name {
			m.theme = i
			m.styles = t.Styles()
		}
	}
	return m
}

// RunInspector blocks until the user quits.
func RunInspector(m Inspector) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Inspector) Tab() string { return tabNames[m.tab] }

func (m Inspector) Init() tea.Cmd { return nil }

func (m Inspector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.tab = (m.tab + 1) % tabCount
		case "shift+tab", "left", "h":
			m.tab = (m.tab + tabCount - 1) % tabCount
		case "1", "2", "3", "4":
			m.tab = int(msg.String()[0] - '1')
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = Themes[m.theme].Styles()
		}
	}
	return m, nil
}

func (m Inspector) View() string {
	s := m.styles
	var tabs []string
	for i, n := range tabNames {
		if i == m.tab {
			tabs = append(tabs, s.TabOn.Render(n))
		} else {
			tabs = append(tabs, s.Tab.Render(n))
		}
	}

	var body string
	switch m.tab {
	case tabSummary:
		body = m.summaryView()
	case tabGears:
		body = m.gearsView()
	case tabGeometry:
		body = m.geometryView()
	case tabCurve:
		body = m.curveView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("geartrain  "+m.name),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		body,
		"",
		s.KeyHint.Render("tab/←→ switch view  1-4 jump  t theme  q quit"),
	)
}

func (m Inspector) summaryView() string {
	s := m.styles
	a := m.eval.Actuator
	var b strings.Builder

	for i, c := range a.Components() {
		fmt.Fprintf(&b, "%s\n", s.Row(fmt.Sprintf("%d %s", i, c.Kind()),
			fmt.Sprintf("ratio %-8.3f cost %-8.4f volume %.3g", c.Ratio(), c.Cost(), c.Volume()), 14))
	}
	b.WriteString("\n")
	b.WriteString(s.Row("total ratio", fmt.Sprintf("%.3f", a.Ratio()), 14) + "\n")
	b.WriteString(s.Row("gear ratio", fmt.Sprintf("%.3f", a.GearRatio()), 14) + "\n")

	coll := a.InternalCollisions()
	b.WriteString(s.Label.Render("collisions    ") + s.Verdict(-coll, 0, 0).Render(fmt.Sprintf("%.4g", coll)) + "\n")

	b.WriteString("\n")
	for i, out := range m.eval.Output {
		tErr := m.eval.TorqueError[i]
		fmt.Fprintf(&b, "%s %s\n",
			s.Row(fmt.Sprintf("cond %d", i), fmt.Sprintf("%.3f rad/s  %.3f Nm  eff %.1f%%", out.Speed, out.Torque, 100*out.Efficiency()), 14),
			s.Verdict(tErr, 0, 0).Render(fmt.Sprintf("Δ %+.3f Nm", tErr)))
	}

	if m.prob != nil && len(m.eval.Objectives) > 0 {
		b.WriteString("\n")
		for i, t := range m.prob.Objectives {
			b.WriteString(s.Row(t.Name, fmt.Sprintf("%.5g", m.eval.Objectives[i]), 18) + "\n")
		}
		_, g := m.prob.Minimized(m.eval)
		for i, t := range m.prob.Constraints {
			b.WriteString(s.Label.Render(fmt.Sprintf("%-18s", t.Name)) + s.Verdict(-g[i], 0, 0).Render(fmt.Sprintf("%.4g", m.eval.Constraints[i])) + "\n")
		}
	}
	return s.Panel.Render(b.String())
}

func (m Inspector) gearsView() string {
	s := m.styles
	if len(m.eval.Kinematic) == 0 {
		return s.Subtle.Render("no gear pairs")
	}
	idx, pairs := m.eval.Actuator.GearPairs()

	var b strings.Builder
	for g, gp := range pairs {
		k := m.eval.Kinematic[g]
		fmt.Fprintf(&b, "%s\n", s.Value.Render(fmt.Sprintf("stage %d  %g/%g teeth  m %g  a' %.3f mm  α' %.2f°",
			idx[g], gp.Pinion.Z, gp.Gear.Z, gp.Pinion.M, gp.APrime, gp.AlphaPrime*180/math.Pi)))
		fmt.Fprintf(&b, "  %s %s  %s %s  %s %.3f / %.3f\n",
			s.Label.Render("interference"), s.Verdict(k[0], 0, 0).Render(fmt.Sprintf("%.4g", k[0])),
			s.Label.Render("contact ratio"), s.Verdict(k[1], 1.1, 1.2).Render(fmt.Sprintf("%.3f", k[1])),
			s.Label.Render("sliding"), k[2], k[3])
		for c, r := range m.eval.Resistance[g] {
			fmt.Fprintf(&b, "  %s  SH %s %.2f/%.2f  SF %s %.2f/%.2f\n",
				s.Label.Render(fmt.Sprintf("cond %d", c)),
				s.SafetyBar(min(r[0], r[1]), 3, 12), r[0], r[1],
				s.SafetyBar(min(r[2], r[3]), 3, 12), r[2], r[3])
		}
		b.WriteString("\n")
	}
	return s.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Inspector) geometryView() string {
	s := m.styles
	space := m.eval.Actuator.Mesh()
	w, h := m.width-6, m.height-12
	if w < 20 {
		w = 20
	}
	if h < 8 {
		h = 8
	}
	canvas := TopView(space, w, h)
	ext := space.Extents()
	area, err := m.eval.Actuator.HullArea()
	info := fmt.Sprintf("extents %.1f × %.1f × %.1f mm", ext.X, ext.Y, ext.Z)
	if err == nil {
		info += fmt.Sprintf("  hull %.0f mm²", area)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Good.Render(canvas.String()),
		s.Subtle.Render(info),
	)
}

func (m Inspector) curveView() string {
	s := m.styles
	if len(m.curve) == 0 {
		return s.Subtle.Render("no curve sampled")
	}
	w := m.width - 14
	if w < 20 {
		w = 20
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		CurvePlot(m.curve, w, 8, "output torque [Nm] vs speed"),
		"",
		PowerPlot(m.curve, w, 6, "power [W] (green) and current [A] (yellow)"),
	)
}

// SummaryLines is a plain text digest used by non-interactive output.
func SummaryLines(e *problem.Evaluation) []string {
	lines := []string{
		fmt.Sprintf("ratio %.3f (gears %.3f), volume %.4g", e.Actuator.Ratio(), e.Actuator.GearRatio(), e.Actuator.Volume()),
	}
	for i, op := range e.Output {
		lines = append(lines, fmt.Sprintf("cond %d: %s", i, formatCondition(op)))
	}
	return lines
}

func formatCondition(op dynamo.OperatingCondition) string {
	return fmt.Sprintf("speed %.4g rad/s, torque %.4g Nm, %gV, %.3g A", op.Speed, op.Torque, op.V, op.IMax)
}
