// Package config loads chatfolders settings from a YAML file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/storage"
	"github.com/nikbrunner/chatfolders/internal/sweep"
)

// EnvPrefix prefixes every environment override, e.g. CHATFOLDERS_STORAGE_BACKEND.
const EnvPrefix = "CHATFOLDERS"

// DefaultBaseURL is the site sidebar links are resolved against.
const DefaultBaseURL = "https://chatgpt.com"

// Config keys.
const (
	KeyStorageBackend = "storage.backend"
	KeyStoragePath    = "storage.path"
	KeySnapshot       = "harvest.snapshot"
	KeyBaseURL        = "harvest.base_url"
	KeySweepDelay     = "sweep.delay"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyDefaultColor   = "folders.default_color"
)

// Config is the resolved configuration.
type Config struct {
	Storage StorageConfig
	Harvest HarvestConfig
	Sweep   SweepConfig
	Log     LogConfig
	Folders FoldersConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type StorageConfig struct {
	Backend string
	Path    string
}

type HarvestConfig struct {
	Snapshot string
	BaseURL  string
}

type SweepConfig struct {
	Delay time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

type FoldersConfig struct {
	DefaultColor string
}

// LoadParams holds the parameters for Load.
type LoadParams struct {
	// File is an explicit config file. It must exist when set.
	File string
	// SearchPaths replaces the default search directory, mainly for tests.
	SearchPaths []string
}

// DefaultDir returns ~/.config/chatfolders.
func DefaultDir() (string, error) {
	return homedir.Expand("~/.config/chatfolders")
}

// Load reads the configuration. A missing config file in the search paths
// is not an error.
func Load(p LoadParams) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if p.File != "" {
		path, err := homedir.Expand(p.File)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // .yaml is implicit
		v.SetConfigType("yaml")
		paths := p.SearchPaths
		if paths == nil {
			dir, err := DefaultDir()
			if err != nil {
				return Config{}, fmt.Errorf("config: %w", err)
			}
			paths = []string{dir}
		}
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if p.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageBackend))),
			Path:    v.GetString(KeyStoragePath),
		},
		Harvest: HarvestConfig{
			Snapshot: v.GetString(KeySnapshot),
			BaseURL:  v.GetString(KeyBaseURL),
		},
		Sweep: SweepConfig{Delay: v.GetDuration(KeySweepDelay)},
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			File:  v.GetString(KeyLogFile),
		},
		Folders: FoldersConfig{DefaultColor: v.GetString(KeyDefaultColor)},
		File:    v.ConfigFileUsed(),
	}

	var err error
	for _, path := range []*string{&cfg.Storage.Path, &cfg.Harvest.Snapshot, &cfg.Log.File} {
		if *path, err = homedir.Expand(*path); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStorageBackend, storage.BackendJSON)
	v.SetDefault(KeyStoragePath, "")
	v.SetDefault(KeySnapshot, "")
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeySweepDelay, sweep.DefaultDelay)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyDefaultColor, "")
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendJSON, storage.BackendSQLite, storage.BackendDiskv, storage.BackendMemory:
	default:
		return fmt.Errorf("config: %s: %w: %q", KeyStorageBackend, storage.ErrUnknownBackend, c.Storage.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %s: %w", KeyLogLevel, err)
	}
	if c.Folders.DefaultColor != "" && !model.ValidColor(c.Folders.DefaultColor) {
		return fmt.Errorf("config: %s: %q is not a hex color", KeyDefaultColor, c.Folders.DefaultColor)
	}
	if c.Sweep.Delay < 0 {
		return fmt.Errorf("config: %s must not be negative", KeySweepDelay)
	}
	return nil
}

// StorageOptions returns the options for storage.Open.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{Backend: c.Storage.Backend, Path: c.Storage.Path}
}

// LogLevel returns the parsed log level, info when it does not parse.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
