package layout

// Width returns the modal width for a terminal: WidthPercent of it, kept
// between MinWidth and MaxWidth and inside a two-cell margin.
func (c ModalConfig) Width(termWidth int) int {
	width := min(max(termWidth*c.WidthPercent/100, c.MinWidth), c.MaxWidth)
	return max(min(width, termWidth-4), 1)
}

// Window returns the range [start, end) of total list items to draw in
// height slots. The list scrolls only once cursor would leave the window.
func Window(cursor, total, height int) (start, end int) {
	height = max(height, 1)
	if total <= height {
		return 0, total
	}
	if cursor >= height {
		start = cursor - height + 1
	}
	return start, min(start+height, total)
}
