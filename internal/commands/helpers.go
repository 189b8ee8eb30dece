package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nikbrunner/chatfolders/internal/dnd"
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/search"
)

// resolveFolder returns the folder named query, falling back to the best
// fuzzy match.
func (e *Env) resolveFolder(query string) (string, error) {
	name, ok := search.FuzzyFindFolder(e.Org.State(), query)
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrFolderNotFound, query)
	}
	if name != query {
		e.Logger.Debug("folder matched", "query", query, "folder", name)
	}
	return name, nil
}

// parseIndex parses a zero-based position argument.
func parseIndex(arg, what string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", what, arg)
	}
	return i, nil
}

// reportOutcome prints what a placement did. Duplicates and unresolvable
// links are reported but are not errors.
func reportOutcome(w io.Writer, r dnd.Result, what string) {
	switch r.Outcome {
	case dnd.OutcomeCreated:
		_, _ = fmt.Fprintf(w, "Added %s to %s at %d\n", what, r.Folder, r.Index)
	case dnd.OutcomeMoved:
		_, _ = fmt.Fprintf(w, "Moved %s to %s at %d\n", what, r.Folder, r.Index)
	case dnd.OutcomeDuplicate:
		_, _ = fmt.Fprintf(w, "Already in %s\n", r.Folder)
	case dnd.OutcomeNoop:
		_, _ = fmt.Fprintln(w, "Nothing changed")
	case dnd.OutcomeUnresolvable:
		_, _ = fmt.Fprintln(w, "No chat link found")
	case dnd.OutcomeRejected:
		_, _ = fmt.Fprintf(w, "%s does not accept drops\n", r.Folder)
	default:
		_, _ = fmt.Fprintln(w, "Nothing to drop")
	}
}
