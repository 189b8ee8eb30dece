package commands

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/chatfolders/internal/picker"
	"github.com/nikbrunner/chatfolders/internal/search"
)

func addFind(topLevel *cobra.Command, e *Env) {
	var first bool

	cmd := &cobra.Command{
		Use:   "find <query>...",
		Short: "Fuzzy find a filed chat and print its URL.",
		Long: `Fuzzy find a filed chat by title. A single match, or --first, prints the
best URL directly; several matches open a picker when attached to a terminal.`,
		Example: `
chatfolders find trip plan
xdg-open "$(chatfolders find --first trip)"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			results := search.FuzzySearchEntries(e.Org.State(), query)
			if len(results) == 0 {
				return fmt.Errorf("no chats found for %q", query)
			}

			if first || len(results) == 1 || !isTerminal(e.params.Err) {
				_, _ = fmt.Fprintln(e.Out(), results[0].Entry.Href())
				return nil
			}

			p := picker.New(picker.Params{
				Title:   fmt.Sprintf("Chats matching %q", query),
				Options: picker.FromSearchResults(results),
			})
			final, err := tea.NewProgram(p, tea.WithOutput(e.params.Err)).Run()
			if err != nil {
				return fmt.Errorf("running picker: %w", err)
			}
			chosen := final.(picker.Picker)
			if chosen.Cancelled() || chosen.Selected() == nil {
				return errors.New("nothing selected")
			}
			_, _ = fmt.Fprintln(e.Out(), chosen.Selected().URL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&first, "first", false, "Print the best match without asking.")

	topLevel.AddCommand(cmd)
}
