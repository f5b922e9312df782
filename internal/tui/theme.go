package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, as used by the rest of the terminal UI.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	statusStyle = lipgloss.NewStyle().Foreground(colorOverlay1)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText)
	columnStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 2)
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	pingStyles  = map[int]lipgloss.Style{
		5: lipgloss.NewStyle().Foreground(colorGreen),
		4: lipgloss.NewStyle().Foreground(colorGreen),
		3: lipgloss.NewStyle().Foreground(colorYellow),
		2: lipgloss.NewStyle().Foreground(colorYellow),
		1: lipgloss.NewStyle().Foreground(colorRed),
	}
	avatarStyle = lipgloss.NewStyle().Foreground(colorTeal)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorLavender).Faint(true)
)

// legacyColors maps the sixteen colour codes to terminal colours.
var legacyColors = map[rune]lipgloss.Color{
	'0': "#000000", '1': "#0000aa", '2': "#00aa00", '3': "#00aaaa",
	'4': "#aa0000", '5': "#aa00aa", '6': "#ffaa00", '7': "#aaaaaa",
	'8': "#555555", '9': "#5555ff", 'a': "#55ff55", 'b': "#55ffff",
	'c': "#ff5555", 'd': "#ff55ff", 'e': "#ffff55", 'f': "#ffffff",
}
