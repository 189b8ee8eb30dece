package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nikbrunner/chatfolders/internal/organizer"
	"github.com/nikbrunner/chatfolders/internal/search"
	"github.com/nikbrunner/chatfolders/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)
)

// Annotations shown next to add-chat options.
const (
	NoteAlreadyHere = "[already here]"
	noteInGroup     = "(in group: %s)"
)

// Option is one selectable row.
type Option struct {
	Title    string
	Subtitle string // secondary line, usually the URL
	Note     string // annotation after the title
	URL      string
	Folder   string // folder holding the option, if any
	Index    int    // canonical index in Folder
	Disabled bool
}

// DoneMsg is sent when an embedded picker closes.
type DoneMsg struct {
	Selected  *Option
	Cancelled bool
}

// Params configures a Picker.
type Params struct {
	Title   string
	Options []Option
	Query   string
	// Embedded pickers report DoneMsg instead of quitting the program.
	Embedded bool
	// MaxVisible caps the options drawn at once (default: layout default).
	MaxVisible int
}

// Picker is a TUI for choosing one option with a live substring filter.
type Picker struct {
	title     string
	options   []Option
	visible   []int // indexes into options
	input     textinput.Model
	cursor    int
	selected  bool
	cancelled bool
	embedded  bool
	maxShown  int
	width     int
	height    int
}

// New creates a Picker.
func New(p Params) Picker {
	input := textinput.New()
	input.Placeholder = "Filter..."
	input.CharLimit = 100
	input.Width = 40
	input.SetValue(p.Query)
	input.Focus()

	pk := Picker{
		title:    p.Title,
		options:  p.Options,
		input:    input,
		embedded: p.Embedded,
		maxShown: p.MaxVisible,
		width:    80,
		height:   24,
	}
	if pk.maxShown <= 0 {
		pk.maxShown = layout.DefaultConfig().Modal.PickerMaxVisible
	}
	pk.applyFilter()
	return pk
}

// FromPickerOptions converts annotated sidebar chats into options.
func FromPickerOptions(opts []organizer.PickerOption) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		opt := Option{Title: o.Title, Subtitle: o.URL, URL: o.URL}
		switch {
		case o.AlreadyHere:
			opt.Note = NoteAlreadyHere
			opt.Disabled = true
		case o.InFolder != "":
			opt.Note = fmt.Sprintf(noteInGroup, o.InFolder)
			opt.Folder = o.InFolder
		}
		if opt.Title == "" {
			opt.Title = "Untitled"
		}
		out[i] = opt
	}
	return out
}

// FromSearchResults converts fuzzy search results into options.
func FromSearchResults(results []search.Result) []Option {
	out := make([]Option, len(results))
	for i, r := range results {
		out[i] = Option{
			Title:    r.Entry.DisplayText(),
			Subtitle: r.Entry.Href(),
			Note:     "(" + r.Folder + ")",
			URL:      r.Entry.Href(),
			Folder:   r.Folder,
			Index:    r.Index,
		}
	}
	return out
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, p.finish()

		case tea.KeyEnter:
			opt := p.current()
			if opt == nil || opt.Disabled {
				return p, nil
			}
			p.selected = true
			return p, p.finish()

		case tea.KeyDown, tea.KeyCtrlJ, tea.KeyCtrlN:
			if p.cursor < len(p.visible)-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp, tea.KeyCtrlK, tea.KeyCtrlP:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.applyFilter()
	}
	return p, cmd
}

func (p Picker) finish() tea.Cmd {
	if !p.embedded {
		return tea.Quit
	}
	done := DoneMsg{Selected: p.Selected(), Cancelled: p.cancelled}
	return func() tea.Msg { return done }
}

func (p *Picker) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(p.input.Value()))
	p.visible = nil
	for i, o := range p.options {
		if q == "" ||
			strings.Contains(strings.ToLower(o.Title), q) ||
			strings.Contains(strings.ToLower(o.Subtitle), q) {
			p.visible = append(p.visible, i)
		}
	}
	if p.cursor >= len(p.visible) {
		p.cursor = max(len(p.visible)-1, 0)
	}
}

func (p Picker) current() *Option {
	if p.cursor < 0 || p.cursor >= len(p.visible) {
		return nil
	}
	return &p.options[p.visible[p.cursor]]
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d/%d)", p.title, len(p.visible), len(p.options))))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.visible) == 0 {
		b.WriteString(disabledStyle.Render("  No chats found"))
		b.WriteString("\n")
	}

	maxWidth := max(p.width-6, 10)
	start, end := layout.Window(p.cursor, len(p.visible), p.pageSize())
	for i := start; i < end; i++ {
		opt := p.options[p.visible[i]]
		cursor := "  "
		style := normalStyle
		if opt.Disabled {
			style = disabledStyle
		}
		if i == p.cursor {
			cursor = "> "
			if !opt.Disabled {
				style = selectedStyle
			}
		}

		line := style.Render(runewidth.Truncate(opt.Title, maxWidth, "..."))
		if opt.Note != "" {
			line += " " + noteStyle.Render(opt.Note)
		}
		b.WriteString(cursor + line + "\n")
		if opt.Subtitle != "" {
			b.WriteString("   " + urlStyle.Render(runewidth.Truncate(opt.Subtitle, maxWidth, "...")) + "\n")
		}
	}
	if hidden := len(p.visible) - (end - start); hidden > 0 {
		b.WriteString(disabledStyle.Render(fmt.Sprintf("  %d more", hidden)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("type: filter  up/down: move  Enter: select  Esc: cancel"))

	return b.String()
}

// pageSize is how many options fit: each takes two lines below a
// four-line header and above the hint line.
func (p Picker) pageSize() int {
	return max(min(p.maxShown, (p.height-6)/2), 1)
}

// Selected returns the chosen option, or nil if cancelled.
func (p Picker) Selected() *Option {
	if p.cancelled || !p.selected {
		return nil
	}
	return p.current()
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Query returns the current filter text.
func (p Picker) Query() string {
	return p.input.Value()
}
