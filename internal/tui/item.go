package tui

import "github.com/nikbrunner/chatfolders/internal/organizer"

// RowKind distinguishes the lines of the folder panel.
type RowKind int

const (
	RowHeader RowKind = iota
	RowEntry
	RowEmpty // drop area of an expanded folder with nothing visible
)

// Row is one selectable line of the panel.
type Row struct {
	Kind        RowKind
	Folder      string
	FolderIndex int // position of Folder in the order
	Position    int // visible position within the folder, RowEntry only
	Item        organizer.ItemView
}

// Title returns the display text for the row.
func (r Row) Title() string {
	switch r.Kind {
	case RowHeader:
		return r.Folder
	case RowEntry:
		return r.Item.Title
	}
	return "Drop chats here"
}

// buildRows flattens the view model into panel rows.
func buildRows(vm organizer.ViewModel) []Row {
	var rows []Row
	for fi, f := range vm.Folders {
		rows = append(rows, Row{Kind: RowHeader, Folder: f.Name, FolderIndex: fi})
		if f.Collapsed {
			continue
		}
		for pos, it := range f.Items {
			rows = append(rows, Row{Kind: RowEntry, Folder: f.Name, FolderIndex: fi, Position: pos, Item: it})
		}
		if f.Empty {
			rows = append(rows, Row{Kind: RowEmpty, Folder: f.Name, FolderIndex: fi})
		}
	}
	return rows
}
