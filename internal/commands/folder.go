package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/organizer"
)

func addFolder(topLevel *cobra.Command, e *Env) {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Create, rename, recolor, reorder and delete folders.",
		Example: `
chatfolders folder create Work --color "#88c0d0"
chatfolders folder move Work 0
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addFolderCreate(cmd, e)
	addFolderRename(cmd, e)
	addFolderDelete(cmd, e)
	addFolderClear(cmd, e)
	addFolderCollapse(cmd, e)
	addFolderColor(cmd, e)
	addFolderMove(cmd, e)

	topLevel.AddCommand(cmd)
}

func addFolderCreate(parent *cobra.Command, e *Env) {
	var color string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder at the end of the order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := e.Org.CreateFolder(cmd.Context(), args[0], color)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.Out(), "Created %s (%s)\n", name, e.Org.State().Color(name))
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Folder color as #rrggbb (default: configured or random pastel).")
	parent.AddCommand(cmd)
}

func addFolderRename(parent *cobra.Command, e *Env) {
	var color string
	cmd := &cobra.Command{
		Use:   "rename <folder> <new-name>",
		Short: "Rename a folder, keeping its position and chats.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			name, err := e.Org.RenameFolder(cmd.Context(), old, args[1], color)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.Out(), "Renamed %s to %s\n", old, name)
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Also change the color.")
	parent.AddCommand(cmd)
}

func addFolderDelete(parent *cobra.Command, e *Env) {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete an empty folder.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			if force {
				if err := e.Org.ClearFolder(cmd.Context(), name); err != nil {
					return err
				}
			}
			if err := e.Org.DeleteFolder(cmd.Context(), name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.Out(), "Deleted %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Clear the folder first.")
	parent.AddCommand(cmd)
}

func addFolderClear(parent *cobra.Command, e *Env) {
	cmd := &cobra.Command{
		Use:   "clear <folder>",
		Short: "Clear a folder, or delete it when it is already empty.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			action, err := e.Org.ClearOrDelete(cmd.Context(), name)
			if err != nil {
				return err
			}
			if action == organizer.ActionClear {
				_, _ = fmt.Fprintf(e.Out(), "Cleared %s\n", name)
			} else {
				_, _ = fmt.Fprintf(e.Out(), "Deleted %s\n", name)
			}
			return nil
		},
	}
	parent.AddCommand(cmd)
}

func addFolderCollapse(parent *cobra.Command, e *Env) {
	var expand, toggle bool
	cmd := &cobra.Command{
		Use:   "collapse <folder>",
		Short: "Collapse a folder (--expand to open it).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			collapsed := !expand
			if toggle {
				if collapsed, err = e.Org.ToggleCollapsed(cmd.Context(), name); err != nil {
					return err
				}
			} else if err := e.Org.SetCollapsed(cmd.Context(), name, collapsed); err != nil {
				return err
			}
			state := "expanded"
			if collapsed {
				state = "collapsed"
			}
			_, _ = fmt.Fprintf(e.Out(), "%s is %s\n", name, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "Expand instead of collapsing.")
	cmd.Flags().BoolVar(&toggle, "toggle", false, "Flip the current state.")
	cmd.MarkFlagsMutuallyExclusive("expand", "toggle")
	parent.AddCommand(cmd)
}

func addFolderColor(parent *cobra.Command, e *Env) {
	cmd := &cobra.Command{
		Use:   "color <folder> [#rrggbb]",
		Short: "Set a folder color, or pick a random pastel one.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			color := model.RandomPastelColor(nil)
			if len(args) == 2 {
				if !model.ValidColor(args[1]) {
					return fmt.Errorf("%q is not a hex color", args[1])
				}
				color = args[1]
			}
			stored, err := e.Org.SetFolderColor(cmd.Context(), name, color)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.Out(), "%s is now %s\n", name, stored)
			return nil
		},
	}
	parent.AddCommand(cmd)
}

func addFolderMove(parent *cobra.Command, e *Env) {
	cmd := &cobra.Command{
		Use:   "move <folder> <position>",
		Short: "Move a folder before the folder currently at position.",
		Long: `Move a folder before the folder currently at position (zero-based).
A position at or past the number of folders moves it to the end.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			to, err := parseIndex(args[1], "position")
			if err != nil {
				return err
			}
			state := e.Org.State()
			to = min(to, len(state.Order))
			moved, err := e.Org.MoveFolder(cmd.Context(), state.FolderIndex(name), to)
			if err != nil {
				return err
			}
			if !moved {
				_, _ = fmt.Fprintln(e.Out(), "Nothing changed")
				return nil
			}
			_, _ = fmt.Fprintf(e.Out(), "Moved %s to %d\n", name, e.Org.State().FolderIndex(name))
			return nil
		},
	}
	parent.AddCommand(cmd)
}
