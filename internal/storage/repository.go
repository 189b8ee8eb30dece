package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikbrunner/chatfolders/internal/model"
)

// Keys of the persisted documents.
const (
	StateKey     = "cgpt_groups_v1"
	PanelOpenKey = "cgpt_groups_open_v1"
)

// Repository reads and writes the grouping document and panel flag.
type Repository struct {
	store Storage
}

// NewRepository wraps a Storage.
func NewRepository(store Storage) *Repository {
	return &Repository{store: store}
}

// Storage returns the underlying key-value store.
func (r *Repository) Storage() Storage {
	return r.store
}

// LoadState reads the grouping document. A missing document yields the
// default seed. The result is repaired before it is returned.
func (r *Repository) LoadState(ctx context.Context) (*model.State, error) {
	raw, err := r.store.Get(ctx, StateKey, nil)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return model.DefaultState(), nil
	}

	state := model.NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	state.Repair()
	return state, nil
}

// SaveState replaces the grouping document.
func (r *Repository) SaveState(ctx context.Context, state *model.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.store.Set(ctx, StateKey, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// PanelOpen reports the stored panel visibility, false when unset.
func (r *Repository) PanelOpen(ctx context.Context) (bool, error) {
	raw, err := r.store.Get(ctx, PanelOpenKey, json.RawMessage("false"))
	if err != nil {
		return false, fmt.Errorf("load panel flag: %w", err)
	}
	var open bool
	if err := json.Unmarshal(raw, &open); err != nil {
		return false, nil
	}
	return open, nil
}

// SetPanelOpen stores the panel visibility.
func (r *Repository) SetPanelOpen(ctx context.Context, open bool) error {
	data, _ := json.Marshal(open)
	if err := r.store.Set(ctx, PanelOpenKey, data); err != nil {
		return fmt.Errorf("save panel flag: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	return r.store.Close()
}
