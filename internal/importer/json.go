package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nikbrunner/chatfolders/internal/model"
)

// ErrMalformedImport is returned for documents without folders and order.
var ErrMalformedImport = errors.New("malformed import: expected an object with folders and order")

// ParseState decodes an exported grouping document.
// The result is repaired so it satisfies the model invariants.
func ParseState(r io.Reader) (*model.State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, ErrMalformedImport
	}
	foldersRaw, hasFolders := raw["folders"]
	orderRaw, hasOrder := raw["order"]
	if !hasFolders || !hasOrder {
		return nil, ErrMalformedImport
	}

	state := model.NewState()
	if err := json.Unmarshal(foldersRaw, &state.Folders); err != nil || state.Folders == nil {
		return nil, fmt.Errorf("%w: folders: %v", ErrMalformedImport, err)
	}
	if err := json.Unmarshal(orderRaw, &state.Order); err != nil || state.Order == nil {
		return nil, fmt.Errorf("%w: order: %v", ErrMalformedImport, err)
	}
	if v, ok := raw["collapsed"]; ok {
		if err := json.Unmarshal(v, &state.Collapsed); err != nil {
			return nil, fmt.Errorf("%w: collapsed: %v", ErrMalformedImport, err)
		}
	}
	if v, ok := raw["folderColors"]; ok {
		if err := json.Unmarshal(v, &state.FolderColors); err != nil {
			return nil, fmt.Errorf("%w: folderColors: %v", ErrMalformedImport, err)
		}
	}

	state.Repair()
	return state, nil
}
