package layout

// PanelSize is the folder panel measured for one terminal size.
type PanelSize struct {
	Width     int // outer width given to the panel style
	Rows      int // content lines shown at once
	TextWidth int // room for row text inside borders and gutter
}

// Measure sizes the panel for a terminal of termWidth by termHeight cells.
func (c PanelConfig) Measure(termWidth, termHeight int) PanelSize {
	width := max(min(termWidth-4, c.MaxWidth), c.MinWidth)
	return PanelSize{
		Width:     width,
		Rows:      max(termHeight-c.HeightReduction, c.MinHeight),
		TextWidth: max(width-c.ContentPadding, 1),
	}
}

// ScrollOffset returns the first of total lines to draw in a viewport of
// rows lines so that line cursor stays roughly centered.
func ScrollOffset(cursor, total, rows int) int {
	if total <= rows {
		return 0
	}
	return min(max(cursor-rows/2, 0), total-rows)
}
