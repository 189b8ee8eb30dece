package layout

import (
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// VisibleWidth returns the terminal cell width of s, excluding ANSI codes.
func VisibleWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

// TruncateText truncates text to maxWidth terminal cells with ellipsis.
// Wide runes count as two cells. Returns the truncated text and whether
// truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", text != ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text, false
	}
	if maxWidth <= runewidth.StringWidth(cfg.Ellipsis) {
		return runewidth.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return runewidth.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// PadRight pads text with spaces to width terminal cells.
func PadRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// FitLeftRight lays out left and right on one line of width cells,
// truncating left so right always fits.
func FitLeftRight(left, right string, width int, cfg TextConfig) string {
	rw := VisibleWidth(right)
	avail := width - rw - 1
	if avail < 1 {
		t, _ := TruncateText(left, width, cfg)
		return t
	}
	l, _ := TruncateText(left, avail, cfg)
	return runewidth.FillRight(l, avail) + " " + right
}
