// Package filter computes the visible subset of a folder for a search needle.
package filter

import (
	"strings"

	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/model"
)

// View is the filtered projection of one folder.
// Canonical[i] is the index in the folder of Visible[i].
type View struct {
	Visible   []model.Entry
	Canonical []int
}

// Len returns the number of visible entries.
func (v View) Len() int {
	return len(v.Visible)
}

// ToCanonical maps a visible position to its folder index.
// It returns -1 when i is out of range.
func (v View) ToCanonical(i int) int {
	if i < 0 || i >= len(v.Canonical) {
		return -1
	}
	return v.Canonical[i]
}

// Filter keeps entries whose display text contains needle, ignoring case.
// A blank needle keeps every entry.
func Filter(entries []model.Entry, needle string) View {
	q := strings.ToLower(strings.TrimSpace(needle))
	view := View{
		Visible:   make([]model.Entry, 0, len(entries)),
		Canonical: make([]int, 0, len(entries)),
	}
	for i, e := range entries {
		if q != "" && !strings.Contains(strings.ToLower(e.DisplayText()), q) {
			continue
		}
		view.Visible = append(view.Visible, e)
		view.Canonical = append(view.Canonical, i)
	}
	return view
}

// Active reports whether needle narrows the view.
func Active(needle string) bool {
	return strings.TrimSpace(needle) != ""
}

// Candidates filters harvested sidebar chats by title or description.
func Candidates(cands []harvest.Candidate, needle string) []harvest.Candidate {
	q := strings.ToLower(strings.TrimSpace(needle))
	if q == "" {
		return cands
	}
	var out []harvest.Candidate
	for _, c := range cands {
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return out
}
