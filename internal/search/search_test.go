package search

import (
	"testing"
	"time"

	"github.com/nikbrunner/chatfolders/internal/model"
)

func testState(t *testing.T) *model.State {
	t.Helper()
	s := model.NewState()
	add := func(folder string, titles ...string) {
		if _, err := s.CreateFolder(folder, ""); err != nil {
			t.Fatal(err)
		}
		for _, title := range titles {
			s.Folders[folder] = append(s.Folders[folder], model.NewEntry(title, "https://chatgpt.com/c/"+title, time.Now()))
		}
	}
	add("Frontend", "TanStack Router", "React Router")
	add("Tools", "GitHub", "GitLab", "Gitea")
	return s
}

func TestFuzzySearchEntries_EmptyQuery(t *testing.T) {
	if results := FuzzySearchEntries(testState(t), ""); len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzySearchEntries_FuzzyMatch(t *testing.T) {
	results := FuzzySearchEntries(testState(t), "tanrou")

	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'tanrou', got %d", len(results))
	}
	if results[0].Entry.Title != "TanStack Router" {
		t.Errorf("expected TanStack Router as first result, got %s", results[0].Entry.Title)
	}
	if results[0].Folder != "Frontend" || results[0].Index != 0 {
		t.Errorf("location = %s[%d]", results[0].Folder, results[0].Index)
	}
}

func TestFuzzySearchEntries_MultipleMatches(t *testing.T) {
	results := FuzzySearchEntries(testState(t), "git")

	if len(results) != 3 {
		t.Errorf("expected 3 results for 'git', got %d", len(results))
	}
	for _, r := range results {
		if r.Folder != "Tools" {
			t.Errorf("unexpected folder %q", r.Folder)
		}
	}
}

func TestFuzzySearchEntries_NoMatch(t *testing.T) {
	if results := FuzzySearchEntries(testState(t), "xyz123"); len(results) != 0 {
		t.Errorf("expected 0 results for 'xyz123', got %d", len(results))
	}
}

func TestFuzzyFindFolder(t *testing.T) {
	s := testState(t)
	tests := []struct {
		query  string
		want   string
		wantOK bool
	}{
		{"Tools", "Tools", true},
		{"front", "Frontend", true},
		{"tls", "Tools", true},
		{"", "", false},
		{"zzz", "", false},
	}
	for _, tt := range tests {
		got, ok := FuzzyFindFolder(s, tt.query)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FuzzyFindFolder(%q) = %q, %v; want %q, %v", tt.query, got, ok, tt.want, tt.wantOK)
		}
	}
}
