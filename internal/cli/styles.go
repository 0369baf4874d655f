// Package cli renders kuota's terminal output and reads its prompts.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan   = lipgloss.Color("#00E5FF")
	green  = lipgloss.Color("#39FF14")
	yellow = lipgloss.Color("#FFE66D")
	red    = lipgloss.Color("#FF6B6B")
	pink   = lipgloss.Color("#FF2E97")
	gray   = lipgloss.Color("#666666")
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(cyan)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(pink)
	keyStyle       = lipgloss.NewStyle().Foreground(cyan).Align(lipgloss.Right)
	valueStyle     = lipgloss.NewStyle().Bold(true)
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(cyan)
	successStyle   = lipgloss.NewStyle().Foreground(green)
	warningStyle   = lipgloss.NewStyle().Foreground(yellow)
	errorStyle     = lipgloss.NewStyle().Foreground(red)
	infoStyle      = lipgloss.NewStyle().Foreground(cyan)
	subtleStyle    = lipgloss.NewStyle().Foreground(gray)
	highlightStyle = lipgloss.NewStyle().Foreground(yellow)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyan).
			Padding(0, 1)
)

// SignalIcon prefixes titles and the greeting.
const SignalIcon = "📶"

const (
	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "⚠️"
	infoIcon    = "ℹ️"
	chartIcon   = "📊"
	starIcon    = "⭐"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return successStyle.Render(successIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return errorStyle.Render(errorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return warningStyle.Render(warningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return infoStyle.Render(infoIcon + " " + message)
}

func formatTitle(title string) string {
	return titleStyle.Render(SignalIcon + " " + title)
}

func formatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox draws content in a rounded panel headed by title.
func RenderBox(title, content string) string {
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}
