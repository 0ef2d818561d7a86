package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the terminal styles. A renderer without a terminal uses the
// ASCII profile, so Render adds no escape codes.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusPending lipgloss.Style
}

// NewStyles builds styles bound to lr's color profile.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	green := lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	yellow := lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}
	red := lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}
	grey := lipgloss.AdaptiveColor{Light: "#57606a", Dark: "#8b949e"}
	blue := lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}

	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(blue).MarginBottom(1),
		Header2: lr.NewStyle().Bold(true).Underline(true),
		Muted:   lr.NewStyle().Foreground(grey),
		Bold:    lr.NewStyle().Bold(true),
		Success: lr.NewStyle().Foreground(green),
		Warning: lr.NewStyle().Foreground(yellow),
		Error:   lr.NewStyle().Foreground(red),

		StatusSuccess: lr.NewStyle().Foreground(green).SetString("✓"),
		StatusWarning: lr.NewStyle().Foreground(yellow).SetString("!"),
		StatusFailed:  lr.NewStyle().Foreground(red).SetString("✗"),
		StatusPending: lr.NewStyle().Foreground(grey).SetString("·"),
	}
}
