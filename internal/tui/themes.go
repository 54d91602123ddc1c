package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the visual token set used by the dashboard.
type Theme struct {
	Name string

	Base     lipgloss.Color
	Surface  lipgloss.Color
	Text     lipgloss.Color
	Subtext  lipgloss.Color
	Dim      lipgloss.Color
	Accent   lipgloss.Color
	Blue     lipgloss.Color
	Green    lipgloss.Color
	Yellow   lipgloss.Color
	Red      lipgloss.Color
	Lavender lipgloss.Color
}

var (
	themeMu        sync.RWMutex
	themes         = builtinThemes()
	activeThemeIdx = 0
)

func init() {
	applyTheme(themes[activeThemeIdx])
}

func builtinThemes() []Theme {
	return []Theme{
		{
			Name:     "Catppuccin Mocha",
			Base:     "#1E1E2E",
			Surface:  "#45475A",
			Text:     "#CDD6F4",
			Subtext:  "#A6ADC8",
			Dim:      "#585B70",
			Accent:   "#CBA6F7",
			Blue:     "#89B4FA",
			Green:    "#A6E3A1",
			Yellow:   "#F9E2AF",
			Red:      "#F38BA8",
			Lavender: "#B4BEFE",
		},
		{
			Name:     "Nord",
			Base:     "#2E3440",
			Surface:  "#434C5E",
			Text:     "#ECEFF4",
			Subtext:  "#D8DEE9",
			Dim:      "#4C566A",
			Accent:   "#88C0D0",
			Blue:     "#81A1C1",
			Green:    "#A3BE8C",
			Yellow:   "#EBCB8B",
			Red:      "#BF616A",
			Lavender: "#B48EAD",
		},
		{
			Name:     "Dracula",
			Base:     "#282A36",
			Surface:  "#44475A",
			Text:     "#F8F8F2",
			Subtext:  "#BFBFBF",
			Dim:      "#6272A4",
			Accent:   "#BD93F9",
			Blue:     "#8BE9FD",
			Green:    "#50FA7B",
			Yellow:   "#F1FA8C",
			Red:      "#FF5555",
			Lavender: "#FF79C6",
		},
	}
}

// ThemeNames lists the built-in themes in cycle order.
func ThemeNames() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// ActiveThemeName returns the name of the theme currently applied.
func ActiveThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return themes[activeThemeIdx].Name
}

// SetTheme applies the named theme. Unknown names are ignored so a stale
// config value cannot break startup.
func SetTheme(name string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	for i, t := range themes {
		if t.Name == name {
			activeThemeIdx = i
			applyTheme(t)
			return
		}
	}
}

// CycleTheme advances to the next built-in theme and returns its name.
func CycleTheme() string {
	themeMu.Lock()
	defer themeMu.Unlock()
	activeThemeIdx = (activeThemeIdx + 1) % len(themes)
	applyTheme(themes[activeThemeIdx])
	return themes[activeThemeIdx].Name
}

func applyTheme(t Theme) {
	colorBase = t.Base
	colorSurface = t.Surface
	colorText = t.Text
	colorSubtext = t.Subtext
	colorDim = t.Dim
	colorAccent = t.Accent
	colorBlue = t.Blue
	colorGreen = t.Green
	colorYellow = t.Yellow
	colorRed = t.Red
	colorLavender = t.Lavender
	rebuildStyles()
}
