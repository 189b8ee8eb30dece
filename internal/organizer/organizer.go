// Package organizer serializes every change to the grouping document and
// exposes the operations the front ends call.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nikbrunner/chatfolders/internal/dnd"
	"github.com/nikbrunner/chatfolders/internal/exporter"
	"github.com/nikbrunner/chatfolders/internal/filter"
	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/importer"
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/storage"
)

// ErrNoBridge is returned by operations that need sidebar data when none is
// configured.
var ErrNoBridge = errors.New("no sidebar source configured")

// Params holds the dependencies of an Organizer.
type Params struct {
	Repo   *storage.Repository
	Bridge harvest.Bridge // optional
	Logger *log.Logger
	Now    func() time.Time
	// DefaultColor is used for new folders created without a color. Empty
	// picks a random pastel.
	DefaultColor string
}

// Organizer owns the confirmed state and the drag engine.
type Organizer struct {
	repo         *storage.Repository
	bridge       harvest.Bridge
	logger       *log.Logger
	now          func() time.Time
	defaultColor string
	engine       *dnd.Engine

	// mu serializes mutations: load, apply, save, re-read.
	mu sync.Mutex

	stateMu   sync.RWMutex
	confirmed *model.State
}

// New loads the persisted state and returns a ready Organizer.
func New(ctx context.Context, p Params) (*Organizer, error) {
	o := &Organizer{
		repo:         p.Repo,
		bridge:       p.Bridge,
		logger:       p.Logger,
		now:          p.Now,
		defaultColor: p.DefaultColor,
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.engine = dnd.New(dnd.Params{
		Now:    o.now,
		Title:  o.resolveTitle,
		Logger: o.logger,
	})

	if err := o.Reload(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// State returns a copy of the last confirmed state.
func (o *Organizer) State() *model.State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.confirmed.Clone()
}

// Engine returns the drag engine.
func (o *Organizer) Engine() *dnd.Engine {
	return o.engine
}

// Reload replaces the confirmed state with the stored one.
func (o *Organizer) Reload(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reload(ctx)
}

func (o *Organizer) reload(ctx context.Context) error {
	state, err := o.repo.LoadState(ctx)
	if err != nil {
		return err
	}
	o.stateMu.Lock()
	o.confirmed = state
	o.stateMu.Unlock()
	return nil
}

// Render draws the confirmed state through the filter.
func (o *Organizer) Render(filterText string) ViewModel {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return Render(o.confirmed, filterText)
}

// mutate runs fn on a freshly loaded state and persists the result when fn
// reports a change. The confirmed state is only replaced by what storage
// returns after the write.
func (o *Organizer) mutate(ctx context.Context, op string, fn func(*model.State) (bool, error)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	state, err := o.repo.LoadState(ctx)
	if err != nil {
		o.logger.Error("mutation load failed", "op", op, "err", err)
		return err
	}

	changed, err := fn(state)
	if err != nil {
		o.logger.Debug("mutation rejected", "op", op, "err", err)
		return err
	}
	if !changed {
		o.logger.Debug("mutation unchanged", "op", op)
		return nil
	}

	if err := o.repo.SaveState(ctx, state); err != nil {
		o.logger.Error("mutation save failed", "op", op, "err", err)
		return err
	}
	if err := o.reload(ctx); err != nil {
		o.logger.Error("mutation reload failed", "op", op, "err", err)
		return err
	}
	o.logger.Debug("mutation committed", "op", op)
	return nil
}

// CreateFolder appends a folder. A blank color uses the configured default.
func (o *Organizer) CreateFolder(ctx context.Context, name, color string) (string, error) {
	if color == "" {
		color = o.defaultColor
	}
	if color == "" {
		color = model.RandomPastelColor(nil)
	}
	var created string
	err := o.mutate(ctx, "create-folder", func(s *model.State) (bool, error) {
		var err error
		created, err = s.CreateFolder(name, color)
		return err == nil, err
	})
	return created, err
}

// RenameFolder renames a folder in place. A blank or invalid color keeps the
// current one.
func (o *Organizer) RenameFolder(ctx context.Context, oldName, newName, color string) (string, error) {
	var renamed string
	err := o.mutate(ctx, "rename-folder", func(s *model.State) (bool, error) {
		var err error
		renamed, err = s.RenameFolder(oldName, newName, color)
		return err == nil, err
	})
	return renamed, err
}

// DeleteFolder removes an empty folder.
func (o *Organizer) DeleteFolder(ctx context.Context, name string) error {
	return o.mutate(ctx, "delete-folder", func(s *model.State) (bool, error) {
		return true, s.DeleteFolder(name)
	})
}

// ClearFolder empties a folder.
func (o *Organizer) ClearFolder(ctx context.Context, name string) error {
	return o.mutate(ctx, "clear-folder", func(s *model.State) (bool, error) {
		if !s.HasFolder(name) {
			return false, fmt.Errorf("%w: %s", model.ErrFolderNotFound, name)
		}
		if len(s.Entries(name)) == 0 {
			return false, nil
		}
		return true, s.ClearFolder(name)
	})
}

// ClearOrDelete clears a non-empty folder and deletes an empty one. It returns
// the action taken.
func (o *Organizer) ClearOrDelete(ctx context.Context, name string) (string, error) {
	var action string
	err := o.mutate(ctx, "clear-or-delete", func(s *model.State) (bool, error) {
		if !s.HasFolder(name) {
			return false, fmt.Errorf("%w: %s", model.ErrFolderNotFound, name)
		}
		if len(s.Entries(name)) > 0 {
			action = ActionClear
			return true, s.ClearFolder(name)
		}
		action = ActionDelete
		return true, s.DeleteFolder(name)
	})
	return action, err
}

// ToggleCollapsed flips a folder's collapse flag.
func (o *Organizer) ToggleCollapsed(ctx context.Context, name string) (bool, error) {
	var collapsed bool
	err := o.mutate(ctx, "toggle-collapsed", func(s *model.State) (bool, error) {
		var err error
		collapsed, err = s.ToggleCollapsed(name)
		return err == nil, err
	})
	return collapsed, err
}

// SetCollapsed sets a folder's collapse flag.
func (o *Organizer) SetCollapsed(ctx context.Context, name string, collapsed bool) error {
	return o.mutate(ctx, "set-collapsed", func(s *model.State) (bool, error) {
		if !s.HasFolder(name) {
			return false, fmt.Errorf("%w: %s", model.ErrFolderNotFound, name)
		}
		if s.IsCollapsed(name) == collapsed {
			return false, nil
		}
		_, err := s.ToggleCollapsed(name)
		return err == nil, err
	})
}

// SetFolderColor recolors a folder and returns the stored color.
func (o *Organizer) SetFolderColor(ctx context.Context, name, color string) (string, error) {
	var stored string
	err := o.mutate(ctx, "set-color", func(s *model.State) (bool, error) {
		var err error
		stored, err = s.SetFolderColor(name, color)
		return err == nil, err
	})
	return stored, err
}

// MoveFolder moves the folder at from to the slot before position to.
func (o *Organizer) MoveFolder(ctx context.Context, from, to int) (bool, error) {
	var moved bool
	err := o.mutate(ctx, "move-folder", func(s *model.State) (bool, error) {
		var err error
		moved, err = s.MoveFolder(from, to)
		return moved, err
	})
	return moved, err
}

// RemoveEntry deletes one chat from a folder.
func (o *Organizer) RemoveEntry(ctx context.Context, folder string, index int) (model.Entry, error) {
	var removed model.Entry
	err := o.mutate(ctx, "remove-entry", func(s *model.State) (bool, error) {
		var err error
		removed, err = s.RemoveEntry(folder, index)
		return err == nil, err
	})
	return removed, err
}

// MoveEntry moves the chat at index of from into to, before canonical
// position at (-1 appends).
func (o *Organizer) MoveEntry(ctx context.Context, from string, index int, to string, at int) (dnd.Result, error) {
	var r dnd.Result
	err := o.mutate(ctx, "move-entry", func(s *model.State) (bool, error) {
		if at < 0 {
			at = len(s.Entries(to))
		}
		got, err := s.InsertOrMoveEntry(to, &model.Location{Folder: from, Index: index}, model.Entry{}, at, o.now())
		switch {
		case errors.Is(err, model.ErrDuplicateEntry):
			r = dnd.Result{Outcome: dnd.OutcomeDuplicate, Folder: to}
			return false, nil
		case err != nil:
			return false, err
		case got < 0:
			r = dnd.Result{Outcome: dnd.OutcomeNoop, Folder: to, Index: index}
			return false, nil
		}
		r = dnd.Result{Outcome: dnd.OutcomeMoved, Folder: to, Index: got}
		return true, nil
	})
	return r, err
}

// AddChat files a chat at the end of folder, moving it there when it is
// filed elsewhere. A blank title is resolved from the sidebar.
func (o *Organizer) AddChat(ctx context.Context, folder, rawURL, title string) (dnd.Result, error) {
	return o.Place(ctx, folder, rawURL, title, -1)
}

// Place files a chat at canonical index of folder (-1 appends) using the
// external drop policy.
func (o *Organizer) Place(ctx context.Context, folder, rawURL, title string, index int) (dnd.Result, error) {
	var r dnd.Result
	err := o.mutate(ctx, "place", func(s *model.State) (bool, error) {
		r = o.engine.Place(s, folder, rawURL, title, index)
		return r.Changed(), r.Err
	})
	return r, err
}

// PickUpEntry starts dragging a chat of the confirmed state.
func (o *Organizer) PickUpEntry(folder string, index int) bool {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.engine.PickUpEntry(o.confirmed, folder, index)
}

// PickUpFolder starts dragging a folder of the confirmed state.
func (o *Organizer) PickUpFolder(index int) bool {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.engine.PickUpFolder(o.confirmed, index)
}

// Hover updates the insertion marker against the confirmed state.
func (o *Organizer) Hover(s dnd.Surface, cands []dnd.Candidate, y float64, p harvest.Payload) (dnd.Marker, bool) {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.engine.Hover(o.confirmed, s, cands, y, p)
}

// Drop commits the active drag through the mutation queue.
func (o *Organizer) Drop(ctx context.Context, s dnd.Surface, cands []dnd.Candidate, y float64, p harvest.Payload) (dnd.Result, error) {
	var r dnd.Result
	err := o.mutate(ctx, "drop", func(state *model.State) (bool, error) {
		r = o.engine.Drop(state, s, cands, y, p)
		return r.Changed(), nil
	})
	if err != nil {
		o.engine.Cancel()
	}
	return r, err
}

// Cancel aborts the active drag.
func (o *Organizer) Cancel() {
	o.engine.Cancel()
}

// RemoveURLs drops every entry whose normalized URL is in nurls. When a
// sidebar source is configured, URLs that are still listed there are kept.
func (o *Organizer) RemoveURLs(ctx context.Context, nurls []string) (int, error) {
	gone := make(map[string]struct{}, len(nurls))
	for _, n := range nurls {
		gone[n] = struct{}{}
	}
	if o.bridge != nil {
		if cands, err := o.bridge.ListCandidates(ctx); err == nil {
			for _, c := range cands {
				delete(gone, c.NURL)
			}
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}

	removed := 0
	err := o.mutate(ctx, "sweep", func(s *model.State) (bool, error) {
		removed = s.RemoveURLs(gone)
		return removed > 0, nil
	})
	return removed, err
}

// Import replaces the whole state with a JSON export. A malformed document
// leaves the state untouched.
func (o *Organizer) Import(ctx context.Context, r io.Reader) error {
	imported, err := importer.ParseState(r)
	if err != nil {
		return err
	}
	return o.mutate(ctx, "import", func(s *model.State) (bool, error) {
		*s = *imported
		return true, nil
	})
}

// ImportHTML merges a Netscape bookmark file into the state.
func (o *Organizer) ImportHTML(ctx context.Context, r io.Reader) (added, skipped int, err error) {
	folders, err := importer.ParseHTMLBookmarks(r)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", importer.ErrMalformedImport, err)
	}
	err = o.mutate(ctx, "import-html", func(s *model.State) (bool, error) {
		color := o.defaultColor
		if color == "" {
			color = model.DefaultFolderColor
		}
		added, skipped = importer.MergeHTML(s, folders, color)
		return added > 0 || len(folders) > 0, nil
	})
	return added, skipped, err
}

// Export writes the confirmed state as JSON.
func (o *Organizer) Export(w io.Writer) error {
	return exporter.ExportJSON(w, o.State())
}

// ClearAll removes every folder.
func (o *Organizer) ClearAll(ctx context.Context) error {
	return o.mutate(ctx, "clear-all", func(s *model.State) (bool, error) {
		*s = *model.NewState()
		return true, nil
	})
}

// PanelOpen reports the stored panel visibility.
func (o *Organizer) PanelOpen(ctx context.Context) (bool, error) {
	return o.repo.PanelOpen(ctx)
}

// SetPanelOpen stores the panel visibility.
func (o *Organizer) SetPanelOpen(ctx context.Context, open bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.repo.SetPanelOpen(ctx, open)
}

// Candidates lists the sidebar conversations.
func (o *Organizer) Candidates(ctx context.Context) ([]harvest.Candidate, error) {
	if o.bridge == nil {
		return nil, ErrNoBridge
	}
	return o.bridge.ListCandidates(ctx)
}

// PickerOption is a sidebar conversation annotated for one target folder.
type PickerOption struct {
	harvest.Candidate
	AlreadyHere bool   // the target folder holds it
	InFolder    string // first other folder holding it
}

// PickerOptions lists the sidebar conversations matching needle, annotated
// for the target folder.
func (o *Organizer) PickerOptions(ctx context.Context, folder, needle string) ([]PickerOption, error) {
	cands, err := o.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	state := o.State()
	var out []PickerOption
	for _, c := range filter.Candidates(cands, needle) {
		opt := PickerOption{Candidate: c, AlreadyHere: state.Contains(folder, c.NURL)}
		if !opt.AlreadyHere {
			if loc, ok := state.FindEntryLocation(c.URL); ok {
				opt.InFolder = loc.Folder
			}
		}
		out = append(out, opt)
	}
	return out, nil
}

// Close releases the storage.
func (o *Organizer) Close() error {
	return o.repo.Close()
}

func (o *Organizer) resolveTitle(rawURL string) string {
	if o.bridge == nil {
		return "Untitled"
	}
	cands, err := o.bridge.ListCandidates(context.Background())
	if err != nil {
		o.logger.Warn("sidebar unavailable for title lookup", "err", err)
	}
	return harvest.TitleResolver(cands, o.bridge.PageTitle())(rawURL)
}
