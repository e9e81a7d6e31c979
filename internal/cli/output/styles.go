package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style

	// Region highlights region names; Number right-aligns figures.
	Region lipgloss.Style
	Number lipgloss.Style
	Label  lipgloss.Style
}

// NewStyles builds styles bound to w. Non-terminal writers get the ASCII
// profile so no escape codes reach pipes or files.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	lr := lipgloss.NewRenderer(w)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}

	var (
		primary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
		muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
		green   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
		yellow  = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}
		red     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	)

	return &Styles{
		Header1:       lr.NewStyle().Bold(true).Foreground(primary).Underline(true),
		Header2:       lr.NewStyle().Bold(true).Foreground(primary),
		Bold:          lr.NewStyle().Bold(true),
		Muted:         lr.NewStyle().Foreground(muted),
		Info:          lr.NewStyle().Foreground(primary),
		Success:       lr.NewStyle().Foreground(green),
		Warning:       lr.NewStyle().Foreground(yellow),
		Error:         lr.NewStyle().Foreground(red),
		StatusSuccess: lr.NewStyle().Foreground(green).Bold(true),
		StatusFailed:  lr.NewStyle().Foreground(red).Bold(true),
		Region:        lr.NewStyle().Foreground(primary),
		Number:        lr.NewStyle().Bold(true).Align(lipgloss.Right),
		Label:         lr.NewStyle().Foreground(muted).Width(22),
	}
}
