package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/organizer"
)

const titleWidth = 60

func addList(topLevel *cobra.Command, e *Env) {
	var (
		filterText string
		folder     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List folders and their chats.",
		Example: `
chatfolders list
chatfolders list --filter plan --folder Work
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := e.Org.Render(filterText)
			if folder != "" {
				name, err := e.resolveFolder(folder)
				if err != nil {
					return err
				}
				fv, _ := vm.Folder(name)
				vm.Folders = []organizer.FolderView{fv}
			}
			printFolders(e.Out(), vm, isTerminal(e.Out()))
			return nil
		},
	}
	cmd.Flags().StringVar(&filterText, "filter", "", "Show only chats whose title contains this text.")
	cmd.Flags().StringVar(&folder, "folder", "", "Show only this folder (fuzzy matched).")

	topLevel.AddCommand(cmd)
}

// printFolders writes one table per folder. Folder names are painted in
// their colors when color is set.
func printFolders(w io.Writer, vm organizer.ViewModel, color bool) {
	if len(vm.Folders) == 0 {
		_, _ = fmt.Fprintln(w, "No folders.")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = titleWidth
	for _, fv := range vm.Folders {
		name := fv.Name
		if color {
			name = lipgloss.NewStyle().
				Background(lipgloss.Color(fv.Color)).
				Foreground(lipgloss.Color(fv.TextColor)).
				Bold(true).
				Render(" " + fv.Name + " ")
		}
		state := strconv.Itoa(fv.Count)
		if fv.Collapsed {
			state += " (collapsed)"
		}
		tbl.AddRow(name, state)
		if fv.Collapsed {
			continue
		}
		for _, it := range fv.Items {
			tbl.AddRow("  "+strconv.Itoa(it.Canonical), it.Title, it.URL)
		}
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
