package model

import (
	"strings"
	"time"

	"github.com/nikbrunner/chatfolders/internal/urlnorm"
)

// EntryTypePage is the only entry variant: a reference to one conversation page.
const EntryTypePage = "page"

// Entry is a saved chat reference inside a folder.
type Entry struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Title string `json:"title"`
	URL   string `json:"url"`
	NURL  string `json:"nurl"` // always Normalize(URL)
	TS    int64  `json:"ts"`   // epoch milliseconds of last add/move
}

// NewEntry creates a page Entry stamped with now.
// A blank title becomes "Untitled".
func NewEntry(title, rawURL string, now time.Time) Entry {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	return Entry{
		Type:  EntryTypePage,
		Text:  title,
		Title: title,
		URL:   rawURL,
		NURL:  urlnorm.Normalize(rawURL),
		TS:    Timestamp(now),
	}
}

// DisplayText returns the text shown for the entry.
func (e Entry) DisplayText() string {
	if e.Text != "" {
		return e.Text
	}
	if e.Title != "" {
		return e.Title
	}
	return "(untitled)"
}

// Key returns the normalized URL, computing it when the cached value is missing.
func (e Entry) Key() string {
	if e.NURL != "" {
		return e.NURL
	}
	return urlnorm.Normalize(e.URL)
}

// Href returns the link to open, preferring the original URL.
func (e Entry) Href() string {
	if e.URL != "" {
		return e.URL
	}
	return e.NURL
}

// Time converts the entry timestamp back to a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.TS)
}

// Timestamp converts t to the epoch milliseconds stored in entries.
func Timestamp(t time.Time) int64 {
	return t.UnixMilli()
}
