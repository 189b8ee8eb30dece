package tui

import (
	"strings"

	"github.com/nikbrunner/chatfolders/internal/organizer"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "drop")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Edit   []Hint
	Action []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar.
func (a App) renderHints(hints HintSet) string {
	all := hints.All()
	if len(all) == 0 {
		return ""
	}

	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	if !a.panelOpen {
		return HintSet{System: []Hint{{Key: "p", Desc: "show"}, {Key: "q", Desc: "quit"}}}
	}

	switch a.mode {
	case ModeNormal:
		return a.getNormalModeHints()
	case ModeFilter:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "keep"}},
			System: []Hint{{Key: "Esc", Desc: "clear"}},
		}
	case ModeDrag:
		return HintSet{
			Nav:    []Hint{{Key: "j/k", Desc: "choose spot"}},
			Action: []Hint{{Key: "Enter", Desc: "drop"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeNewFolder, ModeRename, ModeColor:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "save"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeConfirm:
		return HintSet{
			Action: []Hint{{Key: "y", Desc: "confirm"}},
			System: []Hint{{Key: "n/Esc", Desc: "cancel"}},
		}
	}
	return HintSet{}
}

// getNormalModeHints adapts to the row under the cursor.
func (a App) getNormalModeHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "/", Desc: "filter"},
		},
		System: []Hint{
			{Key: "p", Desc: "hide"},
			{Key: "q", Desc: "quit"},
		},
	}

	row, ok := a.currentRow()
	if !ok {
		hints.Edit = []Hint{{Key: "n", Desc: "new folder"}}
		return hints
	}

	fv, _ := a.vm.Folder(row.Folder)
	actionDesc := "delete"
	if fv.Action == organizer.ActionClear {
		actionDesc = "clear"
	}

	switch row.Kind {
	case RowHeader:
		hints.Action = []Hint{
			{Key: "m", Desc: "move folder"},
			{Key: "space", Desc: "collapse"},
			{Key: "a", Desc: "add chat"},
		}
		hints.Edit = []Hint{
			{Key: "n", Desc: "new"},
			{Key: "r", Desc: "rename"},
			{Key: "c", Desc: "color"},
			{Key: "d", Desc: actionDesc},
		}
	case RowEntry:
		hints.Action = []Hint{
			{Key: "m", Desc: "move chat"},
			{Key: "y", Desc: "yank URL"},
			{Key: "a", Desc: "add chat"},
		}
		hints.Edit = []Hint{
			{Key: "x", Desc: "remove"},
			{Key: "d", Desc: actionDesc},
		}
	case RowEmpty:
		hints.Action = []Hint{{Key: "a", Desc: "add chat"}}
		hints.Edit = []Hint{{Key: "d", Desc: actionDesc}}
	}
	return hints
}
