// Package harvest reads the chat site's sidebar into candidate conversations.
package harvest

import (
	"context"
	"regexp"
	"strings"

	"github.com/nikbrunner/chatfolders/internal/urlnorm"
)

// Candidate is one sidebar conversation that can be added to a folder.
type Candidate struct {
	Title       string `json:"title"`
	Description string `json:"desc,omitempty"`
	URL         string `json:"url"`
	NURL        string `json:"nurl"`
}

// Bridge provides the sidebar conversations and the current page title.
type Bridge interface {
	ListCandidates(ctx context.Context) ([]Candidate, error)
	PageTitle() string
}

var titleSuffix = regexp.MustCompile(`(?i)\s+\|\s+ChatGPT.*$`)

// CleanPageTitle strips the site suffix from a document title.
// An empty result becomes "Untitled".
func CleanPageTitle(title string) string {
	title = strings.TrimSpace(titleSuffix.ReplaceAllString(title, ""))
	if title == "" {
		return "Untitled"
	}
	return title
}

// TitleResolver returns a function that finds the sidebar title for a URL,
// using fallback when the URL is not in cands.
func TitleResolver(cands []Candidate, fallback string) func(rawURL string) string {
	byURL := make(map[string]string, len(cands))
	for _, c := range cands {
		if _, ok := byURL[c.NURL]; !ok {
			byURL[c.NURL] = c.Title
		}
	}
	return func(rawURL string) string {
		if title, ok := byURL[urlnorm.Normalize(rawURL)]; ok && title != "" {
			return title
		}
		return fallback
	}
}

// StaticBridge serves a fixed candidate list.
type StaticBridge struct {
	Candidates []Candidate
	Title      string
}

func (b StaticBridge) ListCandidates(context.Context) ([]Candidate, error) {
	return b.Candidates, nil
}

func (b StaticBridge) PageTitle() string {
	return CleanPageTitle(b.Title)
}
