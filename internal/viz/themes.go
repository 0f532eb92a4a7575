package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the inspector.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeBlueprint = Theme{
		Name:    "blueprint",
		Primary: lipgloss.Color("#4fc3f7"),
		Accent:  lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeWorkshop = Theme{
		Name:    "workshop",
		Primary: lipgloss.Color("#ffa726"),
		Accent:  lipgloss.Color("#ffe082"),
		Text:    lipgloss.Color("#f5f5f5"),
		Muted:   lipgloss.Color("#8d6e63"),
		Success: lipgloss.Color("#9ccc65"),
		Warning: lipgloss.Color("#ffca28"),
		Error:   lipgloss.Color("#ef5350"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeBlueprint, ThemeWorkshop, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Panel   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Subtle  lipgloss.Style
	Good    lipgloss.Style
	Warn    lipgloss.Style
	Bad     lipgloss.Style
	Tab     lipgloss.Style
	TabOn   lipgloss.Style
	KeyHint lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(t.Muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Label:   lipgloss.NewStyle().Foreground(t.Muted),
		Value:   lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Subtle:  lipgloss.NewStyle().Foreground(t.Muted),
		Good:    lipgloss.NewStyle().Foreground(t.Success),
		Warn:    lipgloss.NewStyle().Foreground(t.Warning),
		Bad:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Tab:     lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1),
		TabOn:   lipgloss.NewStyle().Foreground(t.Accent).Background(t.Muted).Bold(true).Padding(0, 1),
		KeyHint: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
	}
}
