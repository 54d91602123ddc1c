package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBase     lipgloss.Color
	colorSurface  lipgloss.Color
	colorText     lipgloss.Color
	colorSubtext  lipgloss.Color
	colorDim      lipgloss.Color
	colorAccent   lipgloss.Color
	colorBlue     lipgloss.Color
	colorGreen    lipgloss.Color
	colorYellow   lipgloss.Color
	colorRed      lipgloss.Color
	colorLavender lipgloss.Color
)

var (
	headerStyle      lipgloss.Style
	headerBrandStyle lipgloss.Style
	labelStyle       lipgloss.Style
	valueStyle       lipgloss.Style
	dimStyle         lipgloss.Style
	helpStyle        lipgloss.Style
	helpKeyStyle     lipgloss.Style
	upStyle          lipgloss.Style
	downStyle        lipgloss.Style
	offlineStyle     lipgloss.Style
	liveStyle        lipgloss.Style
	errorStyle       lipgloss.Style

	tileStyle         lipgloss.Style
	tileSelectedStyle lipgloss.Style
)

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLavender)
	headerBrandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	valueStyle = lipgloss.NewStyle().Foreground(colorText)
	dimStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpStyle = lipgloss.NewStyle().Foreground(colorDim)
	helpKeyStyle = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	upStyle = lipgloss.NewStyle().Foreground(colorGreen)
	downStyle = lipgloss.NewStyle().Foreground(colorRed)
	offlineStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	liveStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(colorRed)

	tileStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Padding(0, 1)
	tileSelectedStyle = tileStyle.
		BorderForeground(colorAccent)
}
