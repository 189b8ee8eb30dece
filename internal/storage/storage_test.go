package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/chatfolders/internal/storage"
)

// backends returns a fresh instance of every backend rooted in a temp dir.
func backends(t *testing.T) map[string]storage.Storage {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := storage.NewSQLiteStorage(filepath.Join(dir, "groups.db"))
	if err != nil {
		t.Fatalf("failed to create sqlite storage: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]storage.Storage{
		"json":   storage.NewJSONStorage(filepath.Join(dir, "groups.json")),
		"sqlite": sqlite,
		"diskv":  storage.NewDiskvStorage(filepath.Join(dir, "kv")),
		"memory": storage.NewMemoryStorage(),
	}
}

func TestStorage_GetDefault(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get(ctx, "missing", json.RawMessage(`{"d":1}`))
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != `{"d":1}` {
				t.Errorf("Get() = %s, want default", got)
			}
		})
	}
}

func TestStorage_SetAndGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, "a", json.RawMessage(`{"x":1}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, "b", json.RawMessage(`true`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, "a", json.RawMessage(`{"x":2}`)); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}

			a, err := s.Get(ctx, "a", nil)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			var doc struct{ X int }
			if err := json.Unmarshal(a, &doc); err != nil || doc.X != 2 {
				t.Errorf("Get(a) = %s, want x=2", a)
			}

			b, err := s.Get(ctx, "b", nil)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(b) != "true" {
				t.Errorf("Get(b) = %s", b)
			}
		})
	}
}

func TestStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Set(ctx, "a", json.RawMessage(`1`)); err == nil {
				t.Errorf("Set() with cancelled context should fail")
			}
		})
	}
}

func TestJSONStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "groups.json")
	s := storage.NewJSONStorage(path)

	if err := s.Set(context.Background(), "k", json.RawMessage(`[]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("expected file to be created")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestJSONStorage_RejectsInvalidJSON(t *testing.T) {
	s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "groups.json"))
	if err := s.Set(context.Background(), "k", json.RawMessage(`{nope`)); err == nil {
		t.Error("expected error for invalid JSON value")
	}
}

func TestJSONStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := storage.NewJSONStorage(path)
	if _, err := s.Get(context.Background(), "k", nil); err == nil {
		t.Error("expected decode error")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		wantErr error
	}{
		{storage.BackendJSON, filepath.Join(dir, "a.json"), nil},
		{"SQLite", filepath.Join(dir, "a.db"), nil},
		{storage.BackendDiskv, filepath.Join(dir, "kv"), nil},
		{storage.BackendMemory, "", nil},
		{"redis", filepath.Join(dir, "x"), storage.ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := storage.Open(storage.Options{Backend: tt.backend, Path: tt.path})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil {
				s.Close()
			}
		})
	}
}
