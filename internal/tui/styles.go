package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Panel        lipgloss.Style
	PanelActive  lipgloss.Style // while a drag is in flight
	Title        lipgloss.Style
	Header       lipgloss.Style // folder header; colors come from the folder
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Dragged      lipgloss.Style
	Marker       lipgloss.Style
	Count        lipgloss.Style
	Empty        lipgloss.Style
	Filter       lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Grayscale with a single desaturated teal accent; folder headers carry their own color.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PanelActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(2),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(2).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Dragged: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(subtle).
			Italic(true),

		Marker: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Count: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true).
			PaddingLeft(2),

		Filter: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}

// headerStyle returns the header style painted with the folder's colors.
func (s Styles) headerStyle(bg, fg string) lipgloss.Style {
	return s.Header.
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg))
}
