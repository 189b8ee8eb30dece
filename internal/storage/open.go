package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendDiskv  = "diskv"
	BackendMemory = "memory"
)

// Options selects and locates a storage backend.
type Options struct {
	Backend string
	// Path is the file (json, sqlite) or directory (diskv). Empty means the
	// backend's default location.
	Path string
}

// DefaultDir returns ~/.config/chatfolders.
func DefaultDir() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "chatfolders"), nil
}

// DefaultPath returns the default location for a backend.
func DefaultPath(backend string) (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	switch backend {
	case BackendJSON, "":
		return filepath.Join(dir, "groups.json"), nil
	case BackendSQLite:
		return filepath.Join(dir, "groups.db"), nil
	case BackendDiskv:
		return filepath.Join(dir, "kv"), nil
	case BackendMemory:
		return "", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// Open opens the backend named in opts.
func Open(opts Options) (Storage, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	path := opts.Path
	if path == "" {
		var err error
		if path, err = DefaultPath(backend); err != nil {
			return nil, err
		}
	}

	switch backend {
	case BackendJSON, "":
		return NewJSONStorage(path), nil
	case BackendSQLite:
		return NewSQLiteStorage(path)
	case BackendDiskv:
		return NewDiskvStorage(path), nil
	case BackendMemory:
		return NewMemoryStorage(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}
