package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/geartrain/internal/config"
	"github.com/san-kum/geartrain/internal/problem"
)

func TestCanvas_SetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("expected dot (3, 5) set")
	}
	if c.Grid[1][1] != brailleBase|0x10 {
		t.Errorf("cell = %U, want %U", c.Grid[1][1], brailleBase|0x10)
	}

	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	if c.IsSet(3, 5) {
		t.Error("dot survived Clear")
	}
	if lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n"); len(lines) != 2 {
		t.Errorf("expected 2 rows, got %d", len(lines))
	}
}

func TestCanvas_DrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8)

	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected circle through %v", p)
		}
	}
	if c.IsSet(20, 20) {
		t.Error("circle outline should not fill its center")
	}
}

func TestViewport(t *testing.T) {
	c := NewCanvas(20, 10)
	vp := Fit(c, -10, -10, 10, 10)

	x0, y0 := vp.Dot(-10, -10)
	x1, y1 := vp.Dot(10, 10)
	if x0 >= x1 {
		t.Errorf("x not increasing: %d >= %d", x0, x1)
	}
	if y0 <= y1 {
		t.Errorf("world y should point up: %d <= %d", y0, y1)
	}
	for _, v := range []int{x0, y0, x1, y1} {
		if v < 0 || v >= c.DotsY() {
			t.Errorf("dot %d outside canvas", v)
		}
	}
}

func TestTopView(t *testing.T) {
	a, err := config.GetPreset("motored").Build()
	if err != nil {
		t.Fatal(err)
	}
	c := TopView(a.Mesh(), 40, 20)
	lit := 0
	for y := 0; y < c.DotsY(); y++ {
		for x := 0; x < c.DotsX(); x++ {
			if c.IsSet(x, y) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("top view is empty")
	}

	if empty := TopView(nil, 10, 5); strings.Trim(empty.String(), "⠀\n") != "" {
		t.Error("nil assembly should render an empty canvas")
	}
}

func newInspector(t *testing.T) Inspector {
	t.Helper()
	cfg := config.GetPreset("good")
	a, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	conds, _ := cfg.OperatingConditions()
	p, err := problem.Get(cfg.Problem, conds)
	if err != nil {
		t.Fatal(err)
	}
	e, err := problem.Analyze(a, conds)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Score(e); err != nil {
		t.Fatal(err)
	}
	curve, err := a.Curve(2, 12, 2, 30)
	if err != nil {
		t.Fatal(err)
	}
	return NewInspector("good", p, e, curve)
}

func TestInspector_Navigation(t *testing.T) {
	var m tea.Model = newInspector(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.(Inspector).Tab(); got != "gears" {
		t.Errorf("after tab: %s, want gears", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.(Inspector).Tab(); got != "curve" {
		t.Errorf("after two lefts: %s, want curve", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if got := m.(Inspector).Tab(); got != "geometry" {
		t.Errorf("after 3: %s, want geometry", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestInspector_Views(t *testing.T) {
	var m tea.Model = newInspector(t)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	wants := []string{"total ratio", "stage 1", "extents", "output torque"}
	for i, want := range wants {
		if i > 0 {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
		}
		if v := m.View(); !strings.Contains(v, want) {
			t.Errorf("%s view missing %q", m.(Inspector).Tab(), want)
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.(Inspector).theme != 1 {
		t.Error("t did not change theme")
	}
}

func TestInspector_WithTheme(t *testing.T) {
	m := newInspector(t).WithTheme("minimal")
	if m.theme != 2 {
		t.Errorf("theme = %d, want 2", m.theme)
	}
	if m.WithTheme("nope").theme != 2 {
		t.Error("unknown theme changed the selection")
	}
	if GetTheme("workshop").Name != "workshop" || GetTheme("nope").Name != Themes[0].Name {
		t.Error("GetTheme lookup")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length")
	}
}
