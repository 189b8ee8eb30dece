package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is a key-value store of JSON documents.
type Storage interface {
	// Get returns the value stored under key, or def when the key is absent.
	Get(ctx context.Context, key string, def json.RawMessage) (json.RawMessage, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value json.RawMessage) error
	Close() error
}

// JSONStorage implements Storage as a single JSON object file.
type JSONStorage struct {
	path string
	mu   sync.Mutex
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Get reads key from the JSON file.
// A missing file holds no keys.
func (s *JSONStorage) Get(ctx context.Context, key string, def json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if v, ok := doc[key]; ok {
		return v, nil
	}
	return def, nil
}

// Set writes key to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("storage: value for %q is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = value

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	// Write to a sibling file first so a crash never leaves a torn document.
	tmp, err := os.CreateTemp(dir, ".chatfolders-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Close is a no-op for the file backend.
func (s *JSONStorage) Close() error {
	return nil
}

func (s *JSONStorage) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}

	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", s.path, err)
	}
	return doc, nil
}

// MemoryStorage implements Storage in process memory.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string]json.RawMessage{}}
}

func (s *MemoryStorage) Get(ctx context.Context, key string, def json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return append(json.RawMessage{}, v...), nil
	}
	return def, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append(json.RawMessage{}, value...)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
