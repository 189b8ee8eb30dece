// Package dnd implements the drag-and-drop state machine that moves chats
// between folders and reorders folders.
package dnd

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/urlnorm"
)

// Mode is the kind of the active drag.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDraggingEntry
	ModeDraggingFolder
	ModeDraggingExternal
)

func (m Mode) String() string {
	switch m {
	case ModeDraggingEntry:
		return "entry"
	case ModeDraggingFolder:
		return "folder"
	case ModeDraggingExternal:
		return "external"
	default:
		return "idle"
	}
}

// Drag describes the gesture in flight.
type Drag struct {
	ID           string
	Mode         Mode
	SourceFolder string // entry drags: owning folder; folder drags: the folder itself
	SourceIndex  int    // canonical entry index or folder position
	SourceNURL   string // entry drags only
	URL          string // external drags only
}

// SurfaceKind names the area under the pointer.
type SurfaceKind int

const (
	SurfaceNone SurfaceKind = iota
	SurfaceList
	SurfaceHeader
	SurfacePanel
)

// Surface is a drop target. Folder is empty for the panel body.
type Surface struct {
	Kind   SurfaceKind
	Folder string
}

// List returns the entry list surface of folder.
func List(folder string) Surface { return Surface{Kind: SurfaceList, Folder: folder} }

// Header returns the header surface of folder.
func Header(folder string) Surface { return Surface{Kind: SurfaceHeader, Folder: folder} }

// Panel returns the panel body surface.
func Panel() Surface { return Surface{Kind: SurfacePanel} }

// Marker is the pending drop position shown while hovering.
type Marker struct {
	Folder string // target folder; empty for folder drags
	Slot   int    // visible slot
	Index  int    // canonical insertion index, -1 with Append
	Append bool
}

// Outcome classifies what a drop did.
type Outcome int

const (
	OutcomeNone         Outcome = iota // no drag or no valid target
	OutcomeNoop                        // identity move
	OutcomeMoved                       // existing entry or folder moved
	OutcomeCreated                     // new entry inserted
	OutcomeDuplicate                   // target folder already holds the URL
	OutcomeUnresolvable                // payload had no usable URL
	OutcomeRejected                    // target not accepting drops or stale source
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomeMoved:
		return "moved"
	case OutcomeCreated:
		return "created"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeUnresolvable:
		return "unresolvable"
	case OutcomeRejected:
		return "rejected"
	default:
		return "none"
	}
}

// Result reports the single mutation of a drop.
type Result struct {
	Outcome Outcome
	Folder  string
	Index   int
	Err     error
}

// Changed reports whether the state was mutated.
func (r Result) Changed() bool {
	return r.Outcome == OutcomeMoved || r.Outcome == OutcomeCreated
}

// Params holds the collaborators of an Engine.
type Params struct {
	// Now is the clock used for entry timestamps.
	Now func() time.Time
	// Title resolves the display title for an external URL.
	Title  func(rawURL string) string
	Logger *log.Logger
}

// Engine owns the single active drag of a panel.
type Engine struct {
	now    func() time.Time
	title  func(string) string
	logger *log.Logger

	mu     sync.Mutex
	drag   Drag
	marker *Marker
}

// New creates an idle Engine.
func New(p Params) *Engine {
	e := &Engine{now: p.Now, title: p.Title, logger: p.Logger}
	if e.now == nil {
		e.now = time.Now
	}
	if e.title == nil {
		e.title = func(string) string { return "Untitled" }
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Active returns the drag in flight; Mode is ModeIdle when there is none.
func (e *Engine) Active() Drag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag
}

// Marker returns the current insertion marker, if any.
func (e *Engine) Marker() (Marker, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.marker == nil {
		return Marker{}, false
	}
	return *e.marker, true
}

// PickUpEntry starts dragging the entry at a canonical index of folder.
// It is ignored while another internal drag is active; an external drag is
// replaced.
func (e *Engine) PickUpEntry(state *model.State, folder string, index int) bool {
	entries := state.Entries(folder)
	if index < 0 || index >= len(entries) {
		return false
	}
	return e.start(Drag{
		Mode:         ModeDraggingEntry,
		SourceFolder: folder,
		SourceIndex:  index,
		SourceNURL:   entries[index].Key(),
	})
}

// PickUpFolder starts dragging the folder at position index of the order.
// It is ignored while another internal drag is active; an external drag is
// replaced.
func (e *Engine) PickUpFolder(state *model.State, index int) bool {
	if index < 0 || index >= len(state.Order) {
		return false
	}
	return e.start(Drag{
		Mode:         ModeDraggingFolder,
		SourceFolder: state.Order[index],
		SourceIndex:  index,
	})
}

func (e *Engine) start(d Drag) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.drag.Mode {
	case ModeIdle:
	case ModeDraggingExternal:
		// foreign drags that leave the panel send no end event
		e.logger.Debug("external drag replaced", "drag", e.drag.ID)
	default:
		e.logger.Debug("pick-up ignored, drag in flight", "drag", e.drag.ID)
		return false
	}
	d.ID = uuid.NewString()
	e.drag = d
	e.marker = nil
	e.logger.Debug("drag started", "drag", d.ID, "mode", d.Mode, "folder", d.SourceFolder, "index", d.SourceIndex)
	return true
}

// Cancel ends the drag without a mutation.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag.Mode != ModeIdle {
		e.logger.Debug("drag cancelled", "drag", e.drag.ID)
	}
	e.reset()
}

func (e *Engine) reset() {
	e.drag = Drag{}
	e.marker = nil
}

// Hover computes the insertion marker for the pointer at y over surface. It
// never mutates state. An idle engine receiving a payload with a usable URL
// enters ModeDraggingExternal; in that mode every non-empty payload replaces
// the URL, so a drag abandoned outside the panel leaves nothing behind. cands must be the surface's entries for entry
// and external drags and the folder headers for folder drags.
func (e *Engine) Hover(state *model.State, s Surface, cands []Candidate, y float64, p harvest.Payload) (Marker, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.external() && !p.Empty() {
		if !e.enterExternal(p) {
			e.reset()
			return Marker{}, false
		}
	}
	if e.drag.Mode == ModeIdle {
		return Marker{}, false
	}

	m, ok := e.target(state, s, cands, y)
	if !ok {
		e.marker = nil
		return Marker{}, false
	}
	e.marker = &m
	return m, true
}

// Drop commits the drag at the pointer position. It performs at most one
// mutation on state and always leaves the engine idle.
func (e *Engine) Drop(state *model.State, s Surface, cands []Candidate, y float64, p harvest.Payload) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.reset()

	if e.external() && !p.Empty() && !e.enterExternal(p) {
		return Result{Outcome: OutcomeUnresolvable}
	}
	if e.drag.Mode == ModeIdle {
		return Result{Outcome: OutcomeNone}
	}

	m, ok := e.target(state, s, cands, y)
	if !ok {
		if s.Kind == SurfaceList && state.IsCollapsed(s.Folder) {
			return e.finish(Result{Outcome: OutcomeRejected, Folder: s.Folder})
		}
		return e.finish(Result{Outcome: OutcomeNone})
	}

	var r Result
	switch e.drag.Mode {
	case ModeDraggingEntry:
		r = e.dropEntry(state, m)
	case ModeDraggingFolder:
		r = e.dropFolder(state, m)
	case ModeDraggingExternal:
		r = e.place(state, m.Folder, e.drag.URL, "", m.Index)
	}
	return e.finish(r)
}

// Place files rawURL into folder at a canonical index (-1 appends) following
// the external drop policy: a URL already in folder is rejected, one found in
// another folder is moved, anything else is created with title or, when
// title is blank, the resolved title.
func (e *Engine) Place(state *model.State, folder, rawURL, title string, index int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.place(state, folder, rawURL, title, index)
}

// external reports whether the next payload decides the drag: the engine is
// idle or already following an external drag.
func (e *Engine) external() bool {
	return e.drag.Mode == ModeIdle || e.drag.Mode == ModeDraggingExternal
}

// enterExternal switches to an external drag of the payload's URL. A drag
// already following the same URL keeps its ID.
func (e *Engine) enterExternal(p harvest.Payload) bool {
	u := harvest.ExtractURL(p)
	if u == "" {
		return false
	}
	if e.drag.Mode == ModeDraggingExternal && e.drag.URL == u {
		return true
	}
	e.drag = Drag{ID: uuid.NewString(), Mode: ModeDraggingExternal, URL: u}
	e.logger.Debug("external drag entered", "drag", e.drag.ID, "url", u)
	return true
}

// target resolves the drop position for the active drag without mutating.
func (e *Engine) target(state *model.State, s Surface, cands []Candidate, y float64) (Marker, bool) {
	switch e.drag.Mode {
	case ModeDraggingFolder:
		if s.Kind == SurfaceNone {
			return Marker{}, false
		}
		slot := InsertionSlot(cands, y)
		idx, appendEnd := ToCanonical(cands, slot)
		if appendEnd {
			idx = len(state.Order)
		}
		return Marker{Slot: slot, Index: idx, Append: appendEnd}, true

	case ModeDraggingEntry, ModeDraggingExternal:
		if !state.HasFolder(s.Folder) {
			return Marker{}, false
		}
		switch s.Kind {
		case SurfaceHeader:
			return Marker{Folder: s.Folder, Slot: -1, Index: -1, Append: true}, true
		case SurfaceList:
			if state.IsCollapsed(s.Folder) {
				return Marker{}, false
			}
			slot := InsertionSlot(cands, y)
			idx, appendEnd := ToCanonical(cands, slot)
			return Marker{Folder: s.Folder, Slot: slot, Index: idx, Append: appendEnd}, true
		}
	}
	return Marker{}, false
}

func (e *Engine) dropEntry(state *model.State, m Marker) Result {
	src, ok := e.locateSource(state)
	if !ok {
		return Result{Outcome: OutcomeRejected, Folder: m.Folder, Err: errors.New("dragged chat is no longer in its folder")}
	}
	idx := m.Index
	if m.Append {
		idx = len(state.Entries(m.Folder))
	}

	got, err := state.InsertOrMoveEntry(m.Folder, &src, model.Entry{}, idx, e.now())
	switch {
	case errors.Is(err, model.ErrDuplicateEntry):
		return Result{Outcome: OutcomeDuplicate, Folder: m.Folder}
	case err != nil:
		return Result{Outcome: OutcomeRejected, Folder: m.Folder, Err: err}
	case got < 0:
		return Result{Outcome: OutcomeNoop, Folder: m.Folder, Index: src.Index}
	}
	return Result{Outcome: OutcomeMoved, Folder: m.Folder, Index: got}
}

// locateSource re-checks the captured source against the state being
// mutated, following the entry if it shifted within its folder.
func (e *Engine) locateSource(state *model.State) (model.Location, bool) {
	entries := state.Entries(e.drag.SourceFolder)
	i := e.drag.SourceIndex
	if i >= 0 && i < len(entries) && entries[i].Key() == e.drag.SourceNURL {
		return model.Location{Folder: e.drag.SourceFolder, Index: i}, true
	}
	for j, entry := range entries {
		if entry.Key() == e.drag.SourceNURL {
			return model.Location{Folder: e.drag.SourceFolder, Index: j}, true
		}
	}
	return model.Location{}, false
}

func (e *Engine) dropFolder(state *model.State, m Marker) Result {
	from := state.FolderIndex(e.drag.SourceFolder)
	if from < 0 {
		return Result{Outcome: OutcomeRejected, Err: model.ErrFolderNotFound}
	}
	changed, err := state.MoveFolder(from, m.Index)
	if err != nil {
		return Result{Outcome: OutcomeRejected, Folder: e.drag.SourceFolder, Err: err}
	}
	if !changed {
		return Result{Outcome: OutcomeNoop, Folder: e.drag.SourceFolder, Index: from}
	}
	return Result{Outcome: OutcomeMoved, Folder: e.drag.SourceFolder, Index: state.FolderIndex(e.drag.SourceFolder)}
}

func (e *Engine) place(state *model.State, folder, rawURL, title string, index int) Result {
	if !state.HasFolder(folder) {
		return Result{Outcome: OutcomeRejected, Folder: folder, Err: model.ErrFolderNotFound}
	}
	nurl := urlnorm.Normalize(rawURL)
	if nurl == "" {
		return Result{Outcome: OutcomeUnresolvable, Folder: folder}
	}
	if state.Contains(folder, nurl) {
		return Result{Outcome: OutcomeDuplicate, Folder: folder}
	}
	if index < 0 {
		index = len(state.Entries(folder))
	}

	if loc, found := state.FindEntryLocation(rawURL); found {
		got, err := state.InsertOrMoveEntry(folder, &loc, model.Entry{}, index, e.now())
		if err != nil {
			return Result{Outcome: OutcomeRejected, Folder: folder, Err: err}
		}
		return Result{Outcome: OutcomeMoved, Folder: folder, Index: got}
	}

	if title == "" {
		title = e.title(rawURL)
	}
	got, err := state.InsertOrMoveEntry(folder, nil, model.NewEntry(title, rawURL, e.now()), index, e.now())
	if err != nil {
		return Result{Outcome: OutcomeRejected, Folder: folder, Err: err}
	}
	return Result{Outcome: OutcomeCreated, Folder: folder, Index: got}
}

func (e *Engine) finish(r Result) Result {
	e.logger.Debug("drag dropped", "drag", e.drag.ID, "mode", e.drag.Mode, "outcome", r.Outcome, "folder", r.Folder, "index", r.Index)
	return r
}
