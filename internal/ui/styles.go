// Package ui provides the visual styling for the coursecast terminal
// interface: lipgloss styles for status output and the course picker.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors, shared across the interface.
var (
	ColorSuccess = lipgloss.Color("#8BC34A") // green
	ColorError   = lipgloss.Color("#e53935") // red
	ColorWarning = lipgloss.Color("#FFC107") // yellow
	ColorInfo    = lipgloss.Color("#2196F3") // blue
	ColorMuted   = lipgloss.Color("#808080")
	ColorAccent  = lipgloss.Color("#0374B5") // Canvas blue
)

// Styles holds the styled components used across the CLI.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Badge   lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1),

		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(ColorAccent).
			Padding(0, 2).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(ColorMuted),

		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(ColorInfo),

		Badge: lipgloss.NewStyle().
			Background(ColorAccent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),
	}
}

// RenderDivider returns a horizontal divider of the given width.
func (s Styles) RenderDivider(width int) string {
	return s.Muted.Render(strings.Repeat("─", width))
}
