package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/nikbrunner/chatfolders/internal/urlnorm"
)

var (
	ErrEmptyName       = errors.New("folder name cannot be empty")
	ErrDuplicateName   = errors.New("a folder with this name already exists")
	ErrFolderNotFound  = errors.New("folder not found")
	ErrFolderNotEmpty  = errors.New("folder is not empty")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDuplicateEntry  = errors.New("chat already in folder")
)

// Seed folder names used when no stored document exists.
const (
	SeedIdeas = "🧠 Ideas"
	SeedDraft = "📦 Draft"
)

// State is the whole persisted grouping document.
type State struct {
	Folders      map[string][]Entry `json:"folders"`
	Order        []string           `json:"order"`
	Collapsed    map[string]bool    `json:"collapsed"`
	FolderColors map[string]string  `json:"folderColors,omitempty"`
}

// Location addresses one entry by folder and canonical index.
type Location struct {
	Folder string
	Index  int
}

// NewState creates an empty State with initialized maps.
func NewState() *State {
	return &State{
		Folders:      map[string][]Entry{},
		Order:        []string{},
		Collapsed:    map[string]bool{},
		FolderColors: map[string]string{},
	}
}

// DefaultState returns the first-run seed with two example folders.
func DefaultState() *State {
	s := NewState()
	for _, name := range []string{SeedIdeas, SeedDraft} {
		s.Folders[name] = []Entry{}
		s.Order = append(s.Order, name)
	}
	return s
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := NewState()
	for name, entries := range s.Folders {
		c.Folders[name] = append([]Entry{}, entries...)
	}
	c.Order = append(c.Order, s.Order...)
	for name, v := range s.Collapsed {
		c.Collapsed[name] = v
	}
	for name, v := range s.FolderColors {
		c.FolderColors[name] = v
	}
	return c
}

// HasFolder reports whether name is a folder key.
func (s *State) HasFolder(name string) bool {
	_, ok := s.Folders[name]
	return ok
}

// FolderIndex returns the position of name in Order, or -1.
func (s *State) FolderIndex(name string) int {
	for i, n := range s.Order {
		if n == name {
			return i
		}
	}
	return -1
}

// Entries returns the canonical entry sequence of a folder.
func (s *State) Entries(name string) []Entry {
	return s.Folders[name]
}

// Color returns the folder color or the default one.
func (s *State) Color(name string) string {
	if c, ok := s.FolderColors[name]; ok && c != "" {
		return c
	}
	return DefaultFolderColor
}

// IsCollapsed reports the UI collapse flag of a folder.
func (s *State) IsCollapsed(name string) bool {
	return s.Collapsed[name]
}

// CreateFolder appends a new empty folder to the order.
// An invalid color is replaced by the default folder color.
func (s *State) CreateFolder(name, color string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if s.HasFolder(name) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	s.ensureMaps()
	s.Folders[name] = []Entry{}
	s.Order = append(s.Order, name)
	s.FolderColors[name] = NormalizeColor(color, DefaultFolderColor)
	return name, nil
}

// RenameFolder moves a folder to a new key, keeping its position, entries and
// collapse flag. The color is updated; an invalid one keeps the previous color.
func (s *State) RenameFolder(oldName, newName, color string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return "", ErrEmptyName
	}
	if !s.HasFolder(oldName) {
		return "", fmt.Errorf("%w: %s", ErrFolderNotFound, oldName)
	}
	if newName != oldName && s.HasFolder(newName) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateName, newName)
	}

	s.ensureMaps()
	newColor := NormalizeColor(color, s.Color(oldName))
	if newName == oldName {
		s.FolderColors[newName] = newColor
		return newName, nil
	}

	s.Folders[newName] = s.Folders[oldName]
	delete(s.Folders, oldName)
	for i, n := range s.Order {
		if n == oldName {
			s.Order[i] = newName
		}
	}
	if collapsed, ok := s.Collapsed[oldName]; ok {
		s.Collapsed[newName] = collapsed
		delete(s.Collapsed, oldName)
	}
	delete(s.FolderColors, oldName)
	s.FolderColors[newName] = newColor
	return newName, nil
}

// DeleteFolder removes an empty folder and all of its metadata.
func (s *State) DeleteFolder(name string) error {
	entries, ok := s.Folders[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, name)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s has %d chats", ErrFolderNotEmpty, name, len(entries))
	}

	delete(s.Folders, name)
	delete(s.Collapsed, name)
	delete(s.FolderColors, name)
	s.Order = removeName(s.Order, name)
	return nil
}

// ClearFolder empties a folder in place.
func (s *State) ClearFolder(name string) error {
	if !s.HasFolder(name) {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, name)
	}
	s.Folders[name] = []Entry{}
	return nil
}

// ToggleCollapsed flips the collapse flag and returns the new value.
func (s *State) ToggleCollapsed(name string) (bool, error) {
	if !s.HasFolder(name) {
		return false, fmt.Errorf("%w: %s", ErrFolderNotFound, name)
	}
	s.ensureMaps()
	s.Collapsed[name] = !s.Collapsed[name]
	return s.Collapsed[name], nil
}

// SetFolderColor recolors a folder. An invalid color keeps the current one.
func (s *State) SetFolderColor(name, color string) (string, error) {
	if !s.HasFolder(name) {
		return "", fmt.Errorf("%w: %s", ErrFolderNotFound, name)
	}
	s.ensureMaps()
	c := NormalizeColor(color, s.Color(name))
	s.FolderColors[name] = c
	return c, nil
}

// FindEntryLocation returns the first entry across folders (in order) whose
// normalized URL matches rawURL.
func (s *State) FindEntryLocation(rawURL string) (Location, bool) {
	key := urlnorm.Normalize(rawURL)
	for _, name := range s.Order {
		if i := indexOfKey(s.Folders[name], key); i >= 0 {
			return Location{Folder: name, Index: i}, true
		}
	}
	return Location{}, false
}

// Contains reports whether folder holds an entry with the given normalized URL.
func (s *State) Contains(folder, nurl string) bool {
	return indexOfKey(s.Folders[folder], nurl) >= 0
}

// MoveFolder moves the folder at from to the slot before the folder currently
// at to (to == len means the end). It reports false when the order is unchanged.
func (s *State) MoveFolder(from, to int) (bool, error) {
	n := len(s.Order)
	if from < 0 || from >= n {
		return false, fmt.Errorf("%w: folder %d", ErrIndexOutOfRange, from)
	}
	if to < 0 || to > n {
		return false, fmt.Errorf("%w: folder slot %d", ErrIndexOutOfRange, to)
	}

	target := to
	if from < target {
		target--
	}
	if target == from {
		return false, nil
	}

	name := s.Order[from]
	order := append(s.Order[:from:from], s.Order[from+1:]...)
	s.Order = insertAt(order, target, name)
	return true, nil
}

// InsertOrMoveEntry places entry into target at insertIndex, a slot in the
// target's current (pre-removal) sequence.
//
// With src nil the entry is inserted as given. With src in another folder the
// entry at src is detached and its timestamp set to now. With src in the target
// folder the entry is reordered: the slot is shifted down when it lies after
// the source and nothing happens when the result is the original position.
//
// A duplicate normalized URL in the target folder rejects the operation with
// ErrDuplicateEntry before anything is mutated. The final index is returned;
// -1 means nothing changed.
func (s *State) InsertOrMoveEntry(target string, src *Location, entry Entry, insertIndex int, now time.Time) (int, error) {
	dst, ok := s.Folders[target]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrFolderNotFound, target)
	}
	if insertIndex < 0 {
		insertIndex = 0
	}

	if src == nil {
		entry = entry.withKey()
		if indexOfKey(dst, entry.NURL) >= 0 {
			return -1, ErrDuplicateEntry
		}
		idx := min(insertIndex, len(dst))
		s.Folders[target] = insertAt(dst, idx, entry)
		return idx, nil
	}

	from, ok := s.Folders[src.Folder]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrFolderNotFound, src.Folder)
	}
	if src.Index < 0 || src.Index >= len(from) {
		return -1, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, src.Folder, src.Index)
	}
	moved := from[src.Index].withKey()

	if src.Folder == target {
		idx := min(insertIndex, len(dst))
		if src.Index < idx {
			idx--
		}
		if idx == src.Index {
			return -1, nil
		}
		rest := append(dst[:src.Index:src.Index], dst[src.Index+1:]...)
		s.Folders[target] = insertAt(rest, idx, moved)
		return idx, nil
	}

	if indexOfKey(dst, moved.NURL) >= 0 {
		return -1, ErrDuplicateEntry
	}
	moved.TS = Timestamp(now)
	s.Folders[src.Folder] = append(from[:src.Index:src.Index], from[src.Index+1:]...)
	idx := min(insertIndex, len(dst))
	s.Folders[target] = insertAt(dst, idx, moved)
	return idx, nil
}

// RemoveEntry deletes the entry at a canonical index.
func (s *State) RemoveEntry(folder string, index int) (Entry, error) {
	entries, ok := s.Folders[folder]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}
	if index < 0 || index >= len(entries) {
		return Entry{}, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, folder, index)
	}
	removed := entries[index]
	s.Folders[folder] = append(entries[:index:index], entries[index+1:]...)
	return removed, nil
}

// RemoveURLs deletes every entry, in every folder, whose normalized URL is in
// nurls. It returns the number of removed entries.
func (s *State) RemoveURLs(nurls map[string]struct{}) int {
	removed := 0
	for name, entries := range s.Folders {
		kept := entries[:0:0]
		for _, e := range entries {
			if _, gone := nurls[e.Key()]; gone {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) != len(entries) {
			s.Folders[name] = kept
		}
	}
	return removed
}

// EntryCount returns the number of entries across all folders.
func (s *State) EntryCount() int {
	total := 0
	for _, entries := range s.Folders {
		total += len(entries)
	}
	return total
}

// Validate checks the permutation and per-folder uniqueness invariants.
func (s *State) Validate() error {
	seen := make(map[string]bool, len(s.Order))
	for _, name := range s.Order {
		if strings.TrimSpace(name) == "" {
			return ErrEmptyName
		}
		if seen[name] {
			return fmt.Errorf("%w: %q listed twice in order", ErrDuplicateName, name)
		}
		if !s.HasFolder(name) {
			return fmt.Errorf("%w: %q in order", ErrFolderNotFound, name)
		}
		seen[name] = true
	}
	for name, entries := range s.Folders {
		if !seen[name] {
			return fmt.Errorf("%w: %q missing from order", ErrFolderNotFound, name)
		}
		keys := make(map[string]bool, len(entries))
		for _, e := range entries {
			if keys[e.Key()] {
				return fmt.Errorf("%w: %s in %q", ErrDuplicateEntry, e.Key(), name)
			}
			keys[e.Key()] = true
		}
	}
	return nil
}

// Repair restores the model invariants on a loaded or imported document:
// order becomes a permutation of the folder keys, every nurl is recomputed from
// its url, per-folder duplicates are dropped (first wins) and metadata of
// unknown folders is discarded. It reports whether anything changed.
func (s *State) Repair() bool {
	changed := s.ensureMaps()

	seen := make(map[string]bool, len(s.Order))
	order := make([]string, 0, len(s.Order))
	for _, name := range s.Order {
		if seen[name] || strings.TrimSpace(name) == "" {
			changed = true
			continue
		}
		if _, ok := s.Folders[name]; !ok {
			changed = true
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	for _, name := range sortedKeys(s.Folders) {
		if !seen[name] {
			if strings.TrimSpace(name) == "" {
				delete(s.Folders, name)
				changed = true
				continue
			}
			order = append(order, name)
			seen[name] = true
			changed = true
		}
	}
	s.Order = order

	for name, entries := range s.Folders {
		if entries == nil {
			s.Folders[name] = []Entry{}
			changed = true
			continue
		}
		keys := make(map[string]bool, len(entries))
		kept := make([]Entry, 0, len(entries))
		for _, e := range entries {
			if e.Type == "" {
				e.Type = EntryTypePage
				changed = true
			}
			if key := urlnorm.Normalize(e.URL); e.URL != "" && e.NURL != key {
				e.NURL = key
				changed = true
			}
			if keys[e.Key()] {
				changed = true
				continue
			}
			keys[e.Key()] = true
			kept = append(kept, e)
		}
		s.Folders[name] = kept
	}

	for name := range s.Collapsed {
		if !s.HasFolder(name) {
			delete(s.Collapsed, name)
			changed = true
		}
	}
	for name, c := range s.FolderColors {
		if !s.HasFolder(name) {
			delete(s.FolderColors, name)
			changed = true
			continue
		}
		if fixed := NormalizeColor(c, DefaultFolderColor); fixed != c {
			s.FolderColors[name] = fixed
			changed = true
		}
	}
	return changed
}

func (s *State) ensureMaps() bool {
	changed := false
	if s.Folders == nil {
		s.Folders = map[string][]Entry{}
		changed = true
	}
	if s.Order == nil {
		s.Order = []string{}
		changed = true
	}
	if s.Collapsed == nil {
		s.Collapsed = map[string]bool{}
		changed = true
	}
	if s.FolderColors == nil {
		s.FolderColors = map[string]string{}
		changed = true
	}
	return changed
}

func (e Entry) withKey() Entry {
	if e.NURL == "" || (e.URL != "" && e.NURL != urlnorm.Normalize(e.URL)) {
		e.NURL = urlnorm.Normalize(e.URL)
	}
	if e.Type == "" {
		e.Type = EntryTypePage
	}
	return e
}

func indexOfKey(entries []Entry, key string) int {
	for i, e := range entries {
		if e.Key() == key {
			return i
		}
	}
	return -1
}

func insertAt[T any](list []T, idx int, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, v)
	return append(out, list[idx:]...)
}

func removeName(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func sortedKeys(m map[string][]Entry) []string {
	return slices.Sorted(maps.Keys(m))
}
