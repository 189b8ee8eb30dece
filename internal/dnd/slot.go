package dnd

// Candidate is one rendered item of a drop surface, in visible order.
type Candidate struct {
	Top       float64
	Height    float64
	Canonical int  // index in the unfiltered sequence
	Dragging  bool // the picked-up item itself
}

// Mid returns the vertical midpoint of the candidate.
func (c Candidate) Mid() float64 {
	return c.Top + c.Height/2
}

// InsertionSlot returns the visible slot for a pointer at y: the position of
// the first non-dragging candidate whose midpoint lies below y, or the number
// of non-dragging candidates when there is none.
func InsertionSlot(cands []Candidate, y float64) int {
	slot := 0
	for _, c := range cands {
		if c.Dragging {
			continue
		}
		if y < c.Mid() {
			return slot
		}
		slot++
	}
	return slot
}

// ToCanonical maps a visible slot to the canonical index of the next visible
// item. A slot at or past the last visible item means append.
func ToCanonical(cands []Candidate, slot int) (index int, appendEnd bool) {
	visible := 0
	for _, c := range cands {
		if c.Dragging {
			continue
		}
		if visible == slot {
			return c.Canonical, false
		}
		visible++
	}
	return -1, true
}

// Rows builds candidates for a list laid out as fixed-height rows.
// canonical[i] is the unfiltered index of row i; dragging is the canonical
// index of the picked-up item or -1.
func Rows(canonical []int, dragging int) []Candidate {
	cands := make([]Candidate, len(canonical))
	for i, idx := range canonical {
		cands[i] = Candidate{
			Top:       float64(i),
			Height:    1,
			Canonical: idx,
			Dragging:  idx == dragging,
		}
	}
	return cands
}
