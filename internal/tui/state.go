package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/chatfolders/internal/tui/layout"
)

// Mode is the input mode of the panel.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeDrag
	ModeNewFolder
	ModeRename
	ModeColor
	ModeConfirm
	ModePicker
)

// MessageType selects the styling of the status line.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// FormState holds the single-line inputs of the panel.
type FormState struct {
	Filter textinput.Model
	Name   textinput.Model
	Color  textinput.Model
	Target string // folder being renamed or recolored
}

// NewFormState creates the inputs with the configured limits.
func NewFormState(cfg layout.LayoutConfig) FormState {
	filter := textinput.New()
	filter.Placeholder = "Filter..."
	filter.CharLimit = cfg.Input.FilterCharLimit
	filter.Width = cfg.Input.FilterWidth

	name := textinput.New()
	name.Placeholder = "Folder name"
	name.CharLimit = cfg.Input.NameCharLimit
	name.Width = cfg.Input.StandardWidth

	color := textinput.New()
	color.Placeholder = "#rrggbb"
	color.CharLimit = cfg.Input.ColorCharLimit
	color.Width = cfg.Input.StandardWidth

	return FormState{Filter: filter, Name: name, Color: color}
}

// ConfirmState holds a pending clear or delete.
type ConfirmState struct {
	Folder string
	Action string // organizer.ActionClear or organizer.ActionDelete
	Count  int
}
