package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nikbrunner/chatfolders/internal/dnd"
	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/organizer"
	"github.com/nikbrunner/chatfolders/internal/picker"
	"github.com/nikbrunner/chatfolders/internal/tui/layout"
)

// ReloadMsg asks the panel to re-read the stored state, for example after
// a sidebar sweep removed chats.
type ReloadMsg struct{}

// App is the bubbletea model of the folder panel.
type App struct {
	org          *organizer.Organizer
	ctx          context.Context
	logger       *log.Logger
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	copyURL      func(string) error

	mode    Mode
	form    FormState
	confirm ConfirmState
	picker  picker.Picker
	// pickerFolder receives the chat chosen in the picker.
	pickerFolder string

	vm        organizer.ViewModel
	rows      []Row
	cursor    int
	marker    *dnd.Marker
	panelOpen bool

	messageText string
	messageType MessageType

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Organizer    *organizer.Organizer
	Context      context.Context     // optional, defaults to Background
	Logger       *log.Logger         // optional
	Keys         *KeyMap             // optional, uses default if nil
	Styles       *Styles             // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Clipboard    func(string) error  // optional, uses the system clipboard
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	app := App{
		org:          params.Organizer,
		ctx:          params.Context,
		logger:       params.Logger,
		keys:         keys,
		styles:       styles,
		layoutConfig: cfg,
		copyURL:      params.Clipboard,
		form:         NewFormState(cfg),
		width:        80,
		height:       24,
	}
	if app.ctx == nil {
		app.ctx = context.Background()
	}
	if app.logger == nil {
		app.logger = log.New(io.Discard)
	}
	if app.copyURL == nil {
		app.copyURL = clipboard.WriteAll
	}

	open, err := app.org.PanelOpen(app.ctx)
	if err != nil {
		app.logger.Warn("panel flag unreadable", "err", err)
		open = true
	}
	app.panelOpen = open
	app.refresh()
	return app
}

// WithDimensions returns a copy of the app sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Rows returns the current panel rows.
func (a App) Rows() []Row {
	return a.rows
}

// Mode returns the current input mode.
func (a App) Mode() Mode {
	return a.mode
}

// Message returns the status line text.
func (a App) Message() string {
	return a.messageText
}

// PanelOpen reports whether the folder panel is shown.
func (a App) PanelOpen() bool {
	return a.panelOpen
}

// refresh re-renders the view model from the confirmed state.
func (a *App) refresh() {
	a.vm = a.org.Render(a.form.Filter.Value())
	a.rows = buildRows(a.vm)
	if a.cursor >= len(a.rows) {
		a.cursor = len(a.rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) currentRow() (Row, bool) {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return Row{}, false
	}
	return a.rows[a.cursor], true
}

func (a *App) setMessage(t MessageType, format string, args ...any) {
	a.messageType = t
	a.messageText = fmt.Sprintf(format, args...)
}

func (a *App) setError(op string, err error) {
	a.logger.Error("panel operation failed", "op", op, "err", err)
	a.setMessage(MessageError, "%s", err)
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.mode == ModePicker {
			m, _ := a.picker.Update(msg)
			a.picker = m.(picker.Picker)
		}
		return a, nil

	case ReloadMsg:
		if err := a.org.Reload(a.ctx); err != nil {
			a.setError("reload", err)
		}
		a.refresh()
		return a, nil

	case picker.DoneMsg:
		return a.handlePickerDone(msg), nil

	case tea.KeyMsg:
		switch a.mode {
		case ModePicker:
			m, cmd := a.picker.Update(msg)
			a.picker = m.(picker.Picker)
			return a, cmd
		case ModeFilter:
			return a.updateFilter(msg)
		case ModeNewFolder, ModeRename, ModeColor:
			return a.updateForm(msg)
		case ModeConfirm:
			return a.updateConfirm(msg), nil
		case ModeDrag:
			return a.updateDrag(msg), nil
		}
		return a.updateNormal(msg)
	}

	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}
	if key.Matches(msg, a.keys.Panel) {
		a.togglePanel()
		return a, nil
	}
	if !a.panelOpen {
		return a, nil
	}

	// Any key clears the previous message
	a.messageText = ""

	switch {
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Top):
		a.cursor = 0

	case key.Matches(msg, a.keys.Bottom):
		if len(a.rows) > 0 {
			a.cursor = len(a.rows) - 1
		}

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		return a, a.form.Filter.Focus()

	case key.Matches(msg, a.keys.Cancel):
		if a.form.Filter.Value() != "" {
			a.form.Filter.Reset()
			a.refresh()
		}

	case key.Matches(msg, a.keys.Select):
		if row, ok := a.currentRow(); ok && row.Kind == RowHeader {
			a.toggleCollapsed(row.Folder)
		}

	case key.Matches(msg, a.keys.Collapse):
		if row, ok := a.currentRow(); ok {
			a.toggleCollapsed(row.Folder)
		}

	case key.Matches(msg, a.keys.Move):
		a.pickUp()

	case key.Matches(msg, a.keys.NewFolder):
		a.form.Name.Reset()
		a.mode = ModeNewFolder
		return a, a.form.Name.Focus()

	case key.Matches(msg, a.keys.Rename):
		if row, ok := a.currentRow(); ok {
			a.form.Target = row.Folder
			a.form.Name.SetValue(row.Folder)
			a.form.Name.CursorEnd()
			a.mode = ModeRename
			return a, a.form.Name.Focus()
		}

	case key.Matches(msg, a.keys.Color):
		if row, ok := a.currentRow(); ok {
			fv, _ := a.vm.Folder(row.Folder)
			a.form.Target = row.Folder
			a.form.Color.SetValue(fv.Color)
			a.form.Color.CursorEnd()
			a.mode = ModeColor
			return a, a.form.Color.Focus()
		}

	case key.Matches(msg, a.keys.Delete):
		if row, ok := a.currentRow(); ok {
			fv, _ := a.vm.Folder(row.Folder)
			a.confirm = ConfirmState{Folder: fv.Name, Action: fv.Action, Count: fv.Count}
			a.mode = ModeConfirm
		}

	case key.Matches(msg, a.keys.Remove):
		a.removeEntry()

	case key.Matches(msg, a.keys.YankURL):
		if row, ok := a.currentRow(); ok && row.Kind == RowEntry {
			if err := a.copyURL(row.Item.URL); err != nil {
				a.setError("yank", err)
			} else {
				a.setMessage(MessageSuccess, "Copied %s", row.Item.URL)
			}
		}

	case key.Matches(msg, a.keys.AddChat):
		return a.openPicker()
	}

	return a, nil
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.form.Filter.Reset()
		a.form.Filter.Blur()
		a.mode = ModeNormal
		a.refresh()
		return a, nil
	case tea.KeyEnter:
		a.form.Filter.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.form.Filter, cmd = a.form.Filter.Update(msg)
	a.refresh()
	return a, cmd
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.form.Name.Blur()
		a.form.Color.Blur()
		a.mode = ModeNormal
		return a, nil
	case tea.KeyEnter:
		a.submitForm()
		return a, nil
	}

	var cmd tea.Cmd
	if a.mode == ModeColor {
		a.form.Color, cmd = a.form.Color.Update(msg)
	} else {
		a.form.Name, cmd = a.form.Name.Update(msg)
	}
	return a, cmd
}

func (a *App) submitForm() {
	switch a.mode {
	case ModeNewFolder:
		name, err := a.org.CreateFolder(a.ctx, a.form.Name.Value(), "")
		if err != nil {
			a.setError("create-folder", err)
			return
		}
		a.setMessage(MessageSuccess, "Created %s", name)
		a.refresh()
		a.focusFolder(name)

	case ModeRename:
		name, err := a.org.RenameFolder(a.ctx, a.form.Target, a.form.Name.Value(), "")
		if err != nil {
			a.setError("rename-folder", err)
			return
		}
		a.setMessage(MessageSuccess, "Renamed to %s", name)
		a.refresh()
		a.focusFolder(name)

	case ModeColor:
		value := a.form.Color.Value()
		if !model.ValidColor(value) {
			a.setMessage(MessageWarning, "%q is not a hex color", value)
			return
		}
		color, err := a.org.SetFolderColor(a.ctx, a.form.Target, value)
		if err != nil {
			a.setError("set-color", err)
			return
		}
		a.setMessage(MessageSuccess, "%s is now %s", a.form.Target, color)
		a.refresh()
	}
	a.form.Name.Blur()
	a.form.Color.Blur()
	a.mode = ModeNormal
}

func (a App) updateConfirm(msg tea.KeyMsg) App {
	switch msg.String() {
	case "y", "Y", "enter":
		action, err := a.org.ClearOrDelete(a.ctx, a.confirm.Folder)
		if err != nil {
			a.setError("clear-or-delete", err)
		} else if action == organizer.ActionClear {
			a.setMessage(MessageSuccess, "Cleared %s", a.confirm.Folder)
		} else {
			a.setMessage(MessageSuccess, "Deleted %s", a.confirm.Folder)
		}
		a.refresh()
	case "n", "N", "esc", "q":
		a.messageText = ""
	default:
		return a
	}
	a.confirm = ConfirmState{}
	a.mode = ModeNormal
	return a
}

func (a *App) toggleCollapsed(folder string) {
	if _, err := a.org.ToggleCollapsed(a.ctx, folder); err != nil {
		a.setError("toggle-collapsed", err)
		return
	}
	a.refresh()
	a.focusFolder(folder)
}

func (a *App) togglePanel() {
	open := !a.panelOpen
	if err := a.org.SetPanelOpen(a.ctx, open); err != nil {
		a.setError("panel", err)
		return
	}
	a.panelOpen = open
}

func (a *App) removeEntry() {
	row, ok := a.currentRow()
	if !ok || row.Kind != RowEntry {
		return
	}
	removed, err := a.org.RemoveEntry(a.ctx, row.Folder, row.Item.Canonical)
	if err != nil {
		a.setError("remove-entry", err)
		return
	}
	a.setMessage(MessageSuccess, "Removed %s", removed.DisplayText())
	a.refresh()
}

func (a *App) focusFolder(name string) {
	for i, r := range a.rows {
		if r.Kind == RowHeader && r.Folder == name {
			a.cursor = i
			return
		}
	}
}

func (a App) openPicker() (tea.Model, tea.Cmd) {
	row, ok := a.currentRow()
	if !ok {
		return a, nil
	}
	opts, err := a.org.PickerOptions(a.ctx, row.Folder, "")
	if errors.Is(err, organizer.ErrNoBridge) {
		a.setMessage(MessageWarning, "No sidebar snapshot configured")
		return a, nil
	}
	if err != nil {
		a.setError("picker", err)
		return a, nil
	}

	a.pickerFolder = row.Folder
	a.picker = picker.New(picker.Params{
		Title:      "Add chat to " + row.Folder,
		Options:    picker.FromPickerOptions(opts),
		Embedded:   true,
		MaxVisible: a.layoutConfig.Modal.PickerMaxVisible,
	})
	m, _ := a.picker.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	a.picker = m.(picker.Picker)
	a.mode = ModePicker
	return a, a.picker.Init()
}

func (a App) handlePickerDone(msg picker.DoneMsg) App {
	a.mode = ModeNormal
	if msg.Cancelled || msg.Selected == nil {
		return a
	}
	r, err := a.org.AddChat(a.ctx, a.pickerFolder, msg.Selected.URL, msg.Selected.Title)
	if err != nil {
		a.setError("add-chat", err)
		return a
	}
	a.reportResult(r, msg.Selected.Title)
	a.refresh()
	return a
}

// pickUp starts a keyboard drag of the row under the cursor: a chat row
// drags the chat, a header drags the folder.
func (a *App) pickUp() {
	row, ok := a.currentRow()
	if !ok {
		return
	}
	var started bool
	switch row.Kind {
	case RowEntry:
		started = a.org.PickUpEntry(row.Folder, row.Item.Canonical)
	case RowHeader:
		started = a.org.PickUpFolder(row.FolderIndex)
	}
	if !started {
		return
	}
	a.mode = ModeDrag
	a.hover()
}

func (a App) updateDrag(msg tea.KeyMsg) App {
	switch {
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}
		a.hover()

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		a.hover()

	case key.Matches(msg, a.keys.Select), key.Matches(msg, a.keys.Move):
		a.drop()

	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Quit):
		a.org.Cancel()
		a.marker = nil
		a.mode = ModeNormal
		a.setMessage(MessageInfo, "Move cancelled")
	}
	return a
}

func (a *App) hover() {
	s, cands, y := a.pointer()
	if m, ok := a.org.Hover(s, cands, y, harvest.Payload{}); ok {
		a.marker = &m
	} else {
		a.marker = nil
	}
}

func (a *App) drop() {
	drag := a.org.Engine().Active()
	s, cands, y := a.pointer()
	r, err := a.org.Drop(a.ctx, s, cands, y, harvest.Payload{})
	a.marker = nil
	a.mode = ModeNormal
	if err != nil {
		a.setError("drop", err)
		return
	}

	label := drag.SourceFolder
	if drag.Mode == dnd.ModeDraggingEntry {
		label = "chat"
	}
	a.reportResult(r, label)
	a.refresh()
	if r.Outcome == dnd.OutcomeMoved {
		if drag.Mode == dnd.ModeDraggingFolder {
			a.focusFolder(drag.SourceFolder)
		} else {
			a.focusEntry(r.Folder, r.Index)
		}
	}
}

func (a *App) focusEntry(folder string, canonical int) {
	for i, r := range a.rows {
		if r.Kind == RowEntry && r.Folder == folder && r.Item.Canonical == canonical {
			a.cursor = i
			return
		}
	}
}

// pointer translates the cursor row into a drop surface, its candidates and
// a pointer position. Rows are laid out with unit height, so the cursor row
// points at its top edge and the insertion slot falls before it.
func (a App) pointer() (dnd.Surface, []dnd.Candidate, float64) {
	row, ok := a.currentRow()
	if !ok {
		return dnd.Surface{}, nil, 0
	}
	drag := a.org.Engine().Active()

	if drag.Mode == dnd.ModeDraggingFolder {
		order := make([]int, len(a.vm.Folders))
		for i := range order {
			order[i] = i
		}
		y := float64(row.FolderIndex)
		if row.Kind != RowHeader {
			// Rows below a header point past that folder's midpoint.
			y += 0.75
		}
		return dnd.Panel(), dnd.Rows(order, drag.SourceIndex), y
	}

	switch row.Kind {
	case RowHeader:
		return dnd.Header(row.Folder), nil, 0
	case RowEmpty:
		return dnd.List(row.Folder), nil, 0
	}
	fv, _ := a.vm.Folder(row.Folder)
	dragging := -1
	if drag.SourceFolder == row.Folder {
		dragging = drag.SourceIndex
	}
	return dnd.List(row.Folder), dnd.Rows(fv.Canonical(), dragging), float64(row.Position)
}

func (a *App) reportResult(r dnd.Result, label string) {
	switch r.Outcome {
	case dnd.OutcomeMoved:
		a.setMessage(MessageSuccess, "Moved %s", label)
	case dnd.OutcomeCreated:
		a.setMessage(MessageSuccess, "Added %s to %s", label, r.Folder)
	case dnd.OutcomeDuplicate:
		a.setMessage(MessageWarning, "Already in %s", r.Folder)
	case dnd.OutcomeRejected:
		a.setMessage(MessageWarning, "%s does not accept drops", r.Folder)
	case dnd.OutcomeUnresolvable:
		a.setMessage(MessageWarning, "No chat link found")
	case dnd.OutcomeNoop, dnd.OutcomeNone:
		a.messageText = ""
	}
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
