// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import "github.com/charmbracelet/lipgloss"

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	// Presenter styles.
	BellStyle         lipgloss.Style
	BadgeStyle        lipgloss.Style
	ItemTitleStyle    lipgloss.Style
	ItemReadStyle     lipgloss.Style
	ItemSelectedStyle lipgloss.Style
	ItemMetaStyle     lipgloss.Style
	DropdownStyle     lipgloss.Style
	StatusLineStyle   lipgloss.Style
	HelpStyle         lipgloss.Style

	// Native notification toast.
	ToastStyle      lipgloss.Style
	ToastTitleStyle lipgloss.Style
)

func init() {
	SetTheme(themes[DefaultTheme])
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	BellStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	BadgeStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Error).
		Bold(true).
		Padding(0, 1)
	ItemTitleStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	ItemReadStyle = lipgloss.NewStyle().Foreground(p.Muted)
	ItemSelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Background(p.Surface).
		Bold(true)
	ItemMetaStyle = lipgloss.NewStyle().Foreground(p.Muted).Italic(true)
	DropdownStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)
	StatusLineStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted)

	ToastStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1).
		MaxWidth(60)
	ToastTitleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
}

// ForLevel returns the status style for a severity name (info, warning, error).
func ForLevel(level string) lipgloss.Style {
	switch level {
	case "error":
		return ErrorStyle
	case "warning":
		return WarningStyle
	default:
		return StatusLineStyle
	}
}
