package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/chatfolders/internal/storage"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadParams{SearchPaths: []string{t.TempDir()}})
	assert.NilError(t, err)

	assert.Equal(t, cfg.Storage.Backend, storage.BackendJSON)
	assert.Equal(t, cfg.Storage.Path, "")
	assert.Equal(t, cfg.Harvest.BaseURL, DefaultBaseURL)
	assert.Equal(t, cfg.Harvest.Snapshot, "")
	assert.Equal(t, cfg.Sweep.Delay, 500*time.Millisecond)
	assert.Equal(t, cfg.Log.Level, "info")
	assert.Equal(t, cfg.LogLevel(), log.InfoLevel)
	assert.Equal(t, cfg.File, "")
}

func TestLoad_FileInSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
storage:
  backend: SQLite
  path: /tmp/groups.db
harvest:
  snapshot: /tmp/sidebar.html
sweep:
  delay: 2s
log:
  level: debug
folders:
  default_color: "#112233"
`)

	cfg, err := Load(LoadParams{SearchPaths: []string{dir}})
	assert.NilError(t, err)

	assert.Equal(t, cfg.File, path)
	assert.Equal(t, cfg.Storage.Backend, storage.BackendSQLite)
	assert.DeepEqual(t, cfg.StorageOptions(), storage.Options{Backend: "sqlite", Path: "/tmp/groups.db"})
	assert.Equal(t, cfg.Harvest.Snapshot, "/tmp/sidebar.html")
	assert.Equal(t, cfg.Sweep.Delay, 2*time.Second)
	assert.Equal(t, cfg.LogLevel(), log.DebugLevel)
	assert.Equal(t, cfg.Folders.DefaultColor, "#112233")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "storage:\n  backend: sqlite\n")
	t.Setenv("CHATFOLDERS_STORAGE_BACKEND", "diskv")
	t.Setenv("CHATFOLDERS_SWEEP_DELAY", "750ms")

	cfg, err := Load(LoadParams{SearchPaths: []string{dir}})
	assert.NilError(t, err)

	assert.Equal(t, cfg.Storage.Backend, storage.BackendDiskv)
	assert.Equal(t, cfg.Sweep.Delay, 750*time.Millisecond)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

	cfg, err := Load(LoadParams{File: path})
	assert.NilError(t, err)
	assert.Equal(t, cfg.LogLevel(), log.WarnLevel)

	_, err = Load(LoadParams{File: filepath.Join(dir, "missing.yaml")})
	assert.Check(t, err != nil, "an explicit config file must exist")
}

func TestLoad_ExpandsHome(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "storage:\n  path: ~/chatfolders/groups.json\n")

	cfg, err := Load(LoadParams{SearchPaths: []string{dir}})
	assert.NilError(t, err)

	home, err := homedir.Dir()
	assert.NilError(t, err)
	assert.Equal(t, cfg.Storage.Path, filepath.Join(home, "chatfolders", "groups.json"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown backend", "storage:\n  backend: redis\n", "storage.backend"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad color", "folders:\n  default_color: teal\n", "folders.default_color"},
		{"negative delay", "sweep:\n  delay: -1s\n", "sweep.delay"},
		{"malformed yaml", "storage: [\n", "reading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)

			_, err := Load(LoadParams{SearchPaths: []string{dir}})
			assert.Check(t, cmp.ErrorContains(err, tt.want))
		})
	}
}

func TestLoad_UnknownBackendIsSentinel(t *testing.T) {
	t.Setenv("CHATFOLDERS_STORAGE_BACKEND", "redis")

	_, err := Load(LoadParams{SearchPaths: []string{t.TempDir()}})
	assert.Check(t, errors.Is(err, storage.ErrUnknownBackend))
}
