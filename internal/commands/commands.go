// Package commands builds the chatfolders command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/config"
	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/organizer"
	"github.com/nikbrunner/chatfolders/internal/storage"
)

// Params adjusts the environment the commands run in. Zero values use the
// process environment and the configured backends.
type Params struct {
	Out io.Writer
	Err io.Writer

	// Storage replaces the configured backend.
	Storage storage.Storage
	// Bridge replaces the configured sidebar snapshot.
	Bridge harvest.Bridge
	Now    func() time.Time
	// RunTUI replaces the interactive panel, mainly for tests.
	RunTUI func(ctx context.Context, e *Env) error
}

// Env is what every command has access to once the root has set it up.
type Env struct {
	params Params

	configFile string
	logLevel   string

	Config   config.Config
	Logger   *log.Logger
	Org      *organizer.Organizer
	Snapshot *harvest.SnapshotBridge
	Bridge   harvest.Bridge

	logFile *os.File
}

// New returns the root command.
func New(p Params) *cobra.Command {
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Err == nil {
		p.Err = os.Stderr
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	e := &Env{params: p}

	cmd := &cobra.Command{
		Use:   "chatfolders",
		Short: "Organize chat conversation links into folders.",
		Long: `chatfolders files chat conversation links into named, colored,
reorderable folders. Without a subcommand it opens the folder panel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The bare root runs the panel, which owns the terminal.
			return e.setup(cmd.Context(), !cmd.HasParent())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			run := e.params.RunTUI
			if run == nil {
				run = runTUI
			}
			return run(cmd.Context(), e)
		},
	}
	cmd.SetOut(p.Out)
	cmd.SetErr(p.Err)

	cmd.PersistentFlags().StringVar(&e.configFile, "config", "",
		"Config file (default ~/.config/chatfolders/config.yaml).")
	cmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides log.level).")

	AddCommands(cmd, e)
	return cmd
}

// AddCommands registers every subcommand on topLevel.
func AddCommands(topLevel *cobra.Command, e *Env) {
	addList(topLevel, e)
	addFind(topLevel, e)
	addFolder(topLevel, e)
	addAdd(topLevel, e)
	addDrop(topLevel, e)
	addMove(topLevel, e)
	addRemove(topLevel, e)
	addCandidates(topLevel, e)
	addSweep(topLevel, e)
	addImport(topLevel, e)
	addExport(topLevel, e)
	addClearAll(topLevel, e)
	addPanel(topLevel, e)
}

// Out is where command results are written.
func (e *Env) Out() io.Writer {
	return e.params.Out
}

// Now returns the current time of the environment.
func (e *Env) Now() time.Time {
	return e.params.Now()
}

func (e *Env) setup(ctx context.Context, interactive bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(config.LoadParams{File: e.configFile})
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.Log.Level = e.logLevel
		if _, err := log.ParseLevel(e.logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	e.Config = cfg

	out := e.params.Err
	if interactive {
		if out, err = e.openLogFile(); err != nil {
			return err
		}
	}
	e.Logger = log.NewWithOptions(out, log.Options{
		Level:           cfg.LogLevel(),
		ReportTimestamp: true,
		Prefix:          "chatfolders",
	})
	if cfg.File != "" {
		e.Logger.Debug("config loaded", "file", cfg.File)
	}

	store := e.params.Storage
	if store == nil {
		if store, err = storage.Open(cfg.StorageOptions()); err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
	}

	e.Bridge = e.params.Bridge
	if e.Bridge == nil && cfg.Harvest.Snapshot != "" {
		e.Snapshot, err = harvest.NewSnapshotBridge(harvest.SnapshotParams{
			Path:    cfg.Harvest.Snapshot,
			BaseURL: cfg.Harvest.BaseURL,
			Logger:  e.Logger.WithPrefix("harvest"),
		})
		if err != nil {
			return err
		}
		if _, err := e.Snapshot.Refresh(ctx); err != nil {
			e.Logger.Warn("sidebar snapshot unreadable", "path", cfg.Harvest.Snapshot, "err", err)
		}
		e.Bridge = e.Snapshot
	}

	e.Org, err = organizer.New(ctx, organizer.Params{
		Repo:         storage.NewRepository(store),
		Bridge:       e.Bridge,
		Logger:       e.Logger.WithPrefix("organizer"),
		Now:          e.params.Now,
		DefaultColor: cfg.Folders.DefaultColor,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("loading folders: %w", err)
	}
	return nil
}

// openLogFile opens the configured log file, or discards logs when none is
// configured.
func (e *Env) openLogFile() (io.Writer, error) {
	if e.Config.Log.File == "" {
		return io.Discard, nil
	}
	f, err := os.OpenFile(e.Config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	e.logFile = f
	return f, nil
}

// Close releases the storage and the log file.
func (e *Env) Close() error {
	var err error
	if e.Org != nil {
		err = e.Org.Close()
		e.Org = nil
	}
	if e.logFile != nil {
		if cerr := e.logFile.Close(); err == nil {
			err = cerr
		}
		e.logFile = nil
	}
	return err
}
