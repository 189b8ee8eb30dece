package search

import (
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents a fuzzy search match.
type Result struct {
	Folder         string
	Index          int // canonical index in Folder
	Entry          model.Entry
	MatchedIndexes []int
	Score          int
}

type hit struct {
	folder string
	index  int
	entry  model.Entry
}

// entryTexts implements fuzzy.Source for entries across folders.
type entryTexts []hit

func (et entryTexts) String(i int) string {
	return et[i].entry.DisplayText()
}

func (et entryTexts) Len() int {
	return len(et)
}

// FuzzySearchEntries searches every folder's entries by display text.
// Returns results sorted by match score (best first).
func FuzzySearchEntries(state *model.State, query string) []Result {
	if query == "" {
		return nil
	}

	var entries entryTexts
	for _, name := range state.Order {
		for i, e := range state.Entries(name) {
			entries = append(entries, hit{folder: name, index: i, entry: e})
		}
	}

	matches := fuzzy.FindFrom(query, entries)

	results := make([]Result, len(matches))
	for i, m := range matches {
		h := entries[m.Index]
		results[i] = Result{
			Folder:         h.folder,
			Index:          h.index,
			Entry:          h.entry,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// folderNames implements fuzzy.Source for folder names.
type folderNames []string

func (fn folderNames) String(i int) string { return fn[i] }
func (fn folderNames) Len() int            { return len(fn) }

// FuzzyFindFolder returns the best-matching folder name for query.
func FuzzyFindFolder(state *model.State, query string) (string, bool) {
	if query == "" {
		return "", false
	}
	if state.HasFolder(query) {
		return query, true
	}
	matches := fuzzy.FindFrom(query, folderNames(state.Order))
	if len(matches) == 0 {
		return "", false
	}
	return state.Order[matches[0].Index], true
}
