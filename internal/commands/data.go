package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/exporter"
)

func addImport(topLevel *cobra.Command, e *Env) {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all folders with an export, or merge a bookmark file.",
		Long: `Replace every folder with a JSON export. With --html, merge a Netscape
bookmark file instead: each bookmark folder becomes a folder and links already
filed there are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer f.Close()

			if asHTML {
				added, skipped, err := e.Org.ImportHTML(cmd.Context(), f)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(e.Out(), "Imported %d chats", added)
				if skipped > 0 {
					_, _ = fmt.Fprintf(e.Out(), " (%d duplicates skipped)", skipped)
				}
				_, _ = fmt.Fprintln(e.Out())
				return nil
			}

			if err := e.Org.Import(cmd.Context(), f); err != nil {
				return err
			}
			state := e.Org.State()
			_, _ = fmt.Fprintf(e.Out(), "Imported %d folders, %d chats\n", len(state.Order), state.EntryCount())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Merge a Netscape bookmark HTML file.")
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, e *Env) {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export all folders as JSON (or bookmark HTML).",
		Long: `Export all folders. The default path is
~/Downloads/chatgpt_groups_export-YYYY-MM-DD.json; "-" writes JSON to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				if asHTML {
					_, err := fmt.Fprint(e.Out(), exporter.ExportHTML(e.Org.State()))
					return err
				}
				return e.Org.Export(e.Out())
			}
			if path == "" {
				var err error
				if path, err = exporter.DefaultExportPath(e.Now(), asHTML); err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}
			if err := exporter.WriteFile(path, e.Org.State(), asHTML); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			_, _ = fmt.Fprintf(e.Out(), "Exported to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Write Netscape bookmark HTML.")
	topLevel.AddCommand(cmd)
}

func addClearAll(topLevel *cobra.Command, e *Env) {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Remove every folder and chat.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear everything without --yes")
			}
			if err := e.Org.ClearAll(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(e.Out(), "Cleared all folders")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm removing everything.")
	topLevel.AddCommand(cmd)
}

func addPanel(topLevel *cobra.Command, e *Env) {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Show or change whether the folder panel starts open.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	set := func(use, short string, open bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := e.Org.SetPanelOpen(cmd.Context(), open); err != nil {
					return err
				}
				return printPanel(cmd, e)
			},
		}
	}
	cmd.AddCommand(
		set("open", "Start with the panel open.", true),
		set("close", "Start with the panel hidden.", false),
		&cobra.Command{
			Use:   "status",
			Short: "Print whether the panel is open.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return printPanel(cmd, e)
			},
		},
	)
	topLevel.AddCommand(cmd)
}

func printPanel(cmd *cobra.Command, e *Env) error {
	open, err := e.Org.PanelOpen(cmd.Context())
	if err != nil {
		return err
	}
	state := "closed"
	if open {
		state = "open"
	}
	_, _ = fmt.Fprintf(e.Out(), "Panel is %s\n", state)
	return nil
}
