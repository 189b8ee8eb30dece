package harvest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// SnapshotBridge harvests a saved HTML copy of the chat site's sidebar.
type SnapshotBridge struct {
	path   string
	base   *url.URL
	logger *log.Logger

	mu  sync.Mutex
	doc Document
}

// SnapshotParams holds the parameters for NewSnapshotBridge.
type SnapshotParams struct {
	Path    string
	BaseURL string
	Logger  *log.Logger
}

// NewSnapshotBridge creates a bridge reading the snapshot at p.Path.
func NewSnapshotBridge(p SnapshotParams) (*SnapshotBridge, error) {
	if p.Path == "" {
		return nil, errors.New("harvest: snapshot path is empty")
	}
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("harvest: base url: %w", err)
	}
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SnapshotBridge{path: p.Path, base: base, logger: logger}, nil
}

// Path returns the snapshot file location.
func (b *SnapshotBridge) Path() string {
	return b.path
}

// Refresh re-reads the snapshot file. A missing file yields no candidates.
func (b *SnapshotBridge) Refresh(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		data = nil
	} else if err != nil {
		return Document{}, fmt.Errorf("harvest: read snapshot: %w", err)
	}

	doc, err := Parse(bytes.NewReader(data), b.base)
	if err != nil {
		return Document{}, fmt.Errorf("harvest: parse snapshot: %w", err)
	}

	b.mu.Lock()
	b.doc = doc
	b.mu.Unlock()
	return doc, nil
}

// ListCandidates returns the conversations in the current snapshot.
func (b *SnapshotBridge) ListCandidates(ctx context.Context) ([]Candidate, error) {
	doc, err := b.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Candidates, nil
}

// PageTitle returns the cleaned title of the last harvested document.
func (b *SnapshotBridge) PageTitle() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return CleanPageTitle(b.doc.Title)
}

// Watch re-harvests whenever the snapshot changes and passes the normalized
// URLs that disappeared since the previous harvest to onRemoved. It blocks
// until ctx is cancelled.
func (b *SnapshotBridge) Watch(ctx context.Context, onRemoved func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("harvest: create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files by rename, so watch the directory.
	dir := filepath.Dir(b.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("harvest: watch %s: %w", dir, err)
	}

	prev, err := b.Refresh(ctx)
	if err != nil {
		return err
	}
	known := nurlSet(prev.Candidates)
	target := filepath.Clean(b.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("snapshot watcher error", "err", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}

			doc, err := b.Refresh(ctx)
			if err != nil {
				b.logger.Warn("snapshot refresh failed", "err", err)
				continue
			}
			current := nurlSet(doc.Candidates)
			// A truncated or half-written snapshot looks like every chat vanished.
			if len(current) == 0 && len(known) > 0 {
				b.logger.Debug("ignoring empty snapshot", "path", b.path)
				continue
			}
			removed := Removed(known, current)
			known = current
			b.logger.Debug("snapshot harvested", "candidates", len(current), "removed", len(removed))
			if len(removed) > 0 && onRemoved != nil {
				onRemoved(removed)
			}
		}
	}
}

// Removed returns the keys of prev that are missing from current.
func Removed(prev, current map[string]struct{}) []string {
	var out []string
	for k := range prev {
		if _, ok := current[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

func nurlSet(cands []Candidate) map[string]struct{} {
	set := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		set[c.NURL] = struct{}{}
	}
	return set
}
