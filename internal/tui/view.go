package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/chatfolders/internal/dnd"
	"github.com/nikbrunner/chatfolders/internal/organizer"
	"github.com/nikbrunner/chatfolders/internal/tui/layout"
)

const markerText = "── drop here ──"

// renderView creates the complete panel view.
func (a App) renderView() string {
	if a.mode == ModePicker {
		return a.place(a.styles.App.Render(a.picker.View()))
	}
	if a.mode == ModeNewFolder || a.mode == ModeRename || a.mode == ModeColor || a.mode == ModeConfirm {
		return a.place(a.renderModal())
	}

	parts := []string{a.renderTitle()}
	if line := a.renderFilterLine(); line != "" {
		parts = append(parts, line)
	}
	parts = append(parts, a.renderPanel(), a.renderHelpBar())

	return a.place(a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)))
}

// place pins content to the terminal size to prevent overflow.
func (a App) place(content string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) renderTitle() string {
	chats := 0
	for _, f := range a.vm.Folders {
		chats += f.Count
	}
	return a.styles.Title.Render("Chat folders") +
		a.styles.Count.Render(fmt.Sprintf("  %d folders, %d chats", len(a.vm.Folders), chats))
}

func (a App) renderFilterLine() string {
	if a.mode == ModeFilter {
		return "/" + a.form.Filter.View()
	}
	if q := a.form.Filter.Value(); q != "" {
		return a.styles.Filter.Render(fmt.Sprintf("filter: %s  (esc to clear)", q))
	}
	return ""
}

func (a App) renderPanel() string {
	size := a.layoutConfig.Panel.Measure(a.width, a.height)
	itemWidth := size.TextWidth

	style := a.styles.Panel
	if a.mode == ModeDrag {
		style = a.styles.PanelActive
	}
	style = style.Width(size.Width)

	if !a.panelOpen {
		return style.Render(a.styles.Empty.Render("Folders hidden (p to show)"))
	}
	if len(a.rows) == 0 {
		return style.Render(a.styles.Empty.Render("No folders yet (n to create one)"))
	}

	markerAt, showMarker := a.markerRow()
	var lines []string
	cursorLine := 0
	for i, row := range a.rows {
		if showMarker && markerAt == i {
			lines = append(lines, a.renderMarker(itemWidth))
		}
		if i == a.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, a.renderRow(row, i == a.cursor, itemWidth))
	}
	if showMarker && markerAt == len(a.rows) {
		lines = append(lines, a.renderMarker(itemWidth))
	}

	offset := layout.ScrollOffset(cursorLine, len(lines), size.Rows)
	end := min(offset+size.Rows, len(lines))
	return style.Render(strings.Join(lines[offset:end], "\n"))
}

func (a App) renderRow(row Row, selected bool, width int) string {
	gutter := "  "
	if selected {
		gutter = "> "
	}
	drag := a.org.Engine().Active()

	switch row.Kind {
	case RowHeader:
		fv, _ := a.vm.Folder(row.Folder)
		arrow := "▾"
		if fv.Collapsed {
			arrow = "▸"
		}
		right := layout.PadRight(fmt.Sprintf("%d · %s", fv.Count, fv.Action), a.layoutConfig.Panel.CountWidth)
		text := layout.FitLeftRight(arrow+" "+fv.Name, right, width-4, a.layoutConfig.Text)
		if drag.Mode == dnd.ModeDraggingFolder && drag.SourceFolder == row.Folder {
			return gutter + a.styles.Dragged.Render(text)
		}
		return gutter + a.styles.headerStyle(fv.Color, fv.TextColor).Render(text)

	case RowEntry:
		title, _ := layout.TruncateText(row.Item.Title, width-4, a.layoutConfig.Text)
		title = layout.PadRight(title, width-4)
		switch {
		case drag.Mode == dnd.ModeDraggingEntry && drag.SourceFolder == row.Folder && drag.SourceIndex == row.Item.Canonical:
			return gutter + a.styles.Dragged.Render(title)
		case selected:
			return gutter + a.styles.ItemSelected.Render(title)
		}
		return gutter + a.styles.Item.Render(title)
	}

	return gutter + a.styles.Empty.Render(row.Title())
}

func (a App) renderMarker(width int) string {
	text, _ := layout.TruncateText(markerText, width, a.layoutConfig.Text)
	return "  " + a.styles.Marker.Render(text)
}

// markerRow returns the row index the insertion marker is drawn before;
// len(rows) draws it after the last row.
func (a App) markerRow() (int, bool) {
	if a.mode != ModeDrag || a.marker == nil {
		return 0, false
	}
	m := *a.marker

	if m.Folder == "" {
		if m.Append || m.Index >= len(a.vm.Folders) {
			return len(a.rows), true
		}
		name := a.vm.Folders[m.Index].Name
		for i, r := range a.rows {
			if r.Kind == RowHeader && r.Folder == name {
				return i, true
			}
		}
		return 0, false
	}

	last := -1
	for i, r := range a.rows {
		if r.Folder != m.Folder {
			continue
		}
		last = i
		if !m.Append && r.Kind == RowEntry && r.Item.Canonical == m.Index {
			return i, true
		}
	}
	if last < 0 {
		return 0, false
	}
	// Append lands after the folder's last row, before any empty placeholder.
	if a.rows[last].Kind == RowEmpty {
		return last, true
	}
	return last + 1, true
}

func (a App) renderModal() string {
	var title, content strings.Builder

	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	modalWidth := a.layoutConfig.Modal.Width(a.width)
	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(modalWidth)

	switch a.mode {
	case ModeNewFolder:
		title.WriteString("New Folder\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.form.Name.View())

	case ModeRename:
		title.WriteString("Rename Folder\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.form.Name.View())

	case ModeColor:
		title.WriteString("Folder Color\n\n")
		content.WriteString(a.form.Target + ":\n")
		content.WriteString(a.form.Color.View())

	case ModeConfirm:
		if a.confirm.Action == organizer.ActionClear {
			title.WriteString("Clear Folder\n\n")
			fmt.Fprintf(&content, "Remove all %d chats from %s?", a.confirm.Count, a.confirm.Folder)
		} else {
			title.WriteString("Delete Folder\n\n")
			fmt.Fprintf(&content, "Delete the empty folder %s?", a.confirm.Folder)
		}
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render(title.String()))
	b.WriteString(content.String())
	if a.messageText != "" {
		b.WriteString("\n\n")
		b.WriteString(a.renderMessageLine())
	}
	b.WriteString("\n\n")
	b.WriteString(a.renderHints(a.getContextualHints()))

	return modalStyle.Render(b.String())
}

// renderHelpBar renders the status line and the contextual hints.
func (a App) renderHelpBar() string {
	lines := []string{""}
	if a.messageText != "" {
		lines[0] = a.renderMessageLine()
	}
	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default: // MessageInfo
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
	}

	return msgStyle.Render(prefix + a.messageText)
}
