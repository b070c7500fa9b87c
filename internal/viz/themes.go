package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeCopper = Theme{
		Name:    "copper",
		Primary: lipgloss.Color("#d98c5f"),
		Accent:  lipgloss.Color("#ffd28a"),
		Text:    lipgloss.Color("#f2e6dc"),
		Muted:   lipgloss.Color("#7a6a60"),
		Error:   lipgloss.Color("#ff5555"),
	}

	ThemeSteel = Theme{
		Name:    "steel",
		Primary: lipgloss.Color("#7fb2d9"),
		Accent:  lipgloss.Color("#c7e3f7"),
		Text:    lipgloss.Color("#e6edf3"),
		Muted:   lipgloss.Color("#5f6b75"),
		Error:   lipgloss.Color("#ff6b6b"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#bbbbbb"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#777777"),
		Error:   lipgloss.Color("#ffffff"),
	}
)

var themes = []Theme{ThemeCopper, ThemeSteel, ThemeMono}

// CurrentTheme is the active color scheme
var CurrentTheme = ThemeCopper

// ThemeNames returns all available theme names
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// SetTheme changes the current theme by name
func SetTheme(name string) bool {
	for _, t := range themes {
		if t.Name == name {
			CurrentTheme = t
			return true
		}
	}
	return false
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = themes[(i+1)%len(themes)]
			return
		}
	}
	CurrentTheme = themes[0]
}
