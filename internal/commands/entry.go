package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/dnd"
	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/urlnorm"
)

func addAdd(topLevel *cobra.Command, e *Env) {
	var (
		title string
		at    int
	)
	cmd := &cobra.Command{
		Use:   "add <folder> <url>",
		Short: "File a chat link into a folder.",
		Long: `File a chat link into a folder. A link already filed in another folder is
moved; one already in the target folder is left alone. Without --title the
title is taken from the sidebar snapshot.`,
		Example: `
chatfolders add Work https://chatgpt.com/c/6650f1e2 --title "Quarterly plan"
chatfolders add Work https://chatgpt.com/c/6650f1e2 --at 0
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			r, err := e.Org.Place(cmd.Context(), folder, args[1], title, at)
			if err != nil {
				return err
			}
			reportOutcome(e.Out(), r, args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title to store (default: from the sidebar).")
	cmd.Flags().IntVar(&at, "at", -1, "Zero-based position in the folder (default: append).")
	topLevel.AddCommand(cmd)
}

func addDrop(topLevel *cobra.Command, e *Env) {
	var at int
	cmd := &cobra.Command{
		Use:   "drop <folder> <link-or-uri-list>",
		Short: "Drop a dragged link onto a folder.",
		Long: `Drop a dragged link onto a folder the way a drag from another window would:
the argument is read as a text/uri-list, whose first non-comment line wins.
Without --at the link lands on the folder header and is appended; with --at
it lands in the list before the chat at that visible position.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			payload := harvest.Payload{
				Types:     []string{harvest.TypeURIList, harvest.TypePlainText},
				URIList:   args[1],
				PlainText: args[1],
			}

			surface, cands, y := dnd.Header(folder), []dnd.Candidate(nil), 0.0
			if at >= 0 {
				canonical := make([]int, len(e.Org.State().Entries(folder)))
				for i := range canonical {
					canonical[i] = i
				}
				surface, cands, y = dnd.List(folder), dnd.Rows(canonical, -1), float64(at)
			}

			r, err := e.Org.Drop(cmd.Context(), surface, cands, y, payload)
			if err != nil {
				return err
			}
			reportOutcome(e.Out(), r, harvest.ExtractURL(payload))
			return nil
		},
	}
	cmd.Flags().IntVar(&at, "at", -1, "Visible position to drop before (default: header, append).")
	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command, e *Env) {
	var at int
	cmd := &cobra.Command{
		Use:   "move <from-folder> <index> <to-folder>",
		Short: "Move a filed chat within or between folders.",
		Example: `
chatfolders move Work 3 Work --at 0
chatfolders move Work 0 Archive
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			index, err := parseIndex(args[1], "index")
			if err != nil {
				return err
			}
			to, err := e.resolveFolder(args[2])
			if err != nil {
				return err
			}
			r, err := e.Org.MoveEntry(cmd.Context(), from, index, to, at)
			if err != nil {
				return err
			}
			reportOutcome(e.Out(), r, "chat")
			return nil
		},
	}
	cmd.Flags().IntVar(&at, "at", -1, "Zero-based position in the target folder (default: append).")
	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command, e *Env) {
	cmd := &cobra.Command{
		Use:   "remove <folder> <index-or-url>",
		Short: "Remove a chat from a folder.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := e.resolveFolder(args[0])
			if err != nil {
				return err
			}
			index, err := parseIndex(args[1], "index")
			if err != nil {
				if index = indexOfURL(e.Org.State().Entries(folder), args[1]); index < 0 {
					return fmt.Errorf("%s is not in %s", args[1], folder)
				}
			}
			removed, err := e.Org.RemoveEntry(cmd.Context(), folder, index)
			if errors.Is(err, model.ErrIndexOutOfRange) {
				return fmt.Errorf("%s has no chat at %d", folder, index)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(e.Out(), "Removed %s from %s\n", removed.DisplayText(), folder)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func indexOfURL(entries []model.Entry, rawURL string) int {
	key := urlnorm.Normalize(rawURL)
	for i, entry := range entries {
		if key != "" && entry.Key() == key {
			return i
		}
	}
	return -1
}
