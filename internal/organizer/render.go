package organizer

import (
	"github.com/nikbrunner/chatfolders/internal/filter"
	"github.com/nikbrunner/chatfolders/internal/model"
)

// Folder actions offered on the header, depending on emptiness.
const (
	ActionClear  = "Clear"
	ActionDelete = "Delete"
)

// ViewModel is everything a front end needs to draw the panel.
type ViewModel struct {
	Filter  string
	Folders []FolderView
}

// FolderView is one folder section.
type FolderView struct {
	Name      string
	Color     string
	TextColor string
	Collapsed bool
	Count     int    // entries in the folder, ignoring the filter
	Action    string // ActionClear or ActionDelete
	Items     []ItemView
	// Empty marks an expanded folder with nothing visible, shown as a drop area.
	Empty bool
}

// ItemView is one visible chat.
type ItemView struct {
	Title     string
	URL       string
	NURL      string
	TS        int64
	Canonical int
}

// Canonical returns the unfiltered indexes of the visible items.
func (f FolderView) Canonical() []int {
	out := make([]int, len(f.Items))
	for i, it := range f.Items {
		out[i] = it.Canonical
	}
	return out
}

// Folder returns the view of the named folder.
func (vm ViewModel) Folder(name string) (FolderView, bool) {
	for _, f := range vm.Folders {
		if f.Name == name {
			return f, true
		}
	}
	return FolderView{}, false
}

// Render projects state through the filter. It does not modify state.
func Render(state *model.State, filterText string) ViewModel {
	vm := ViewModel{Filter: filterText}
	for _, name := range state.Order {
		entries := state.Entries(name)
		color := state.Color(name)
		fv := FolderView{
			Name:      name,
			Color:     color,
			TextColor: model.ContrastColor(color),
			Collapsed: state.IsCollapsed(name),
			Count:     len(entries),
			Action:    ActionDelete,
		}
		if len(entries) > 0 {
			fv.Action = ActionClear
		}

		if !fv.Collapsed {
			view := filter.Filter(entries, filterText)
			fv.Items = make([]ItemView, view.Len())
			for i, e := range view.Visible {
				fv.Items[i] = ItemView{
					Title:     e.DisplayText(),
					URL:       e.Href(),
					NURL:      e.Key(),
					TS:        e.TS,
					Canonical: view.ToCanonical(i),
				}
			}
			fv.Empty = view.Len() == 0
		}
		vm.Folders = append(vm.Folders, fv)
	}
	return vm
}
