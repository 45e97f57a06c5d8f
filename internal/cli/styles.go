// Package cli renders claims reports for the terminal: styled text, tables,
// and machine-readable output.
package cli

import (
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// Command output shares the browser's default palette.
var palette = themes.Default

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(palette.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(palette.Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(palette.Error)
	InfoStyle    = lipgloss.NewStyle().Foreground(palette.Info)
	SubtleStyle  = lipgloss.NewStyle().Foreground(palette.Muted)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(palette.Primary)
	promptStyle = titleStyle
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Border).
			Padding(0, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ClaimIcon   = "📋"
	FilterIcon  = "⏷"
)

// StatusStyle returns the style used for a partition's label.
func StatusStyle(status model.Status) lipgloss.Style {
	switch status {
	case model.StatusApproved:
		return SuccessStyle
	case model.StatusRejected:
		return ErrorStyle
	default:
		return WarningStyle
	}
}

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError formats an error message with icon.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return titleStyle.MarginBottom(1).Render(ClaimIcon + " " + title)
}

// FormatPrompt formats a question put to the operator.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox renders content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}
