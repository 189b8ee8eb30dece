package harvest

import (
	"net/url"
	"slices"
	"strings"
)

// MIME types carried by a dragged link.
const (
	TypeURIList   = "text/uri-list"
	TypePlainText = "text/plain"
)

// Payload is the data offered by a foreign drag source.
type Payload struct {
	Types     []string
	URIList   string
	PlainText string
}

// Empty reports whether the payload carries no data at all.
func (p Payload) Empty() bool {
	return len(p.Types) == 0 && p.URIList == "" && p.PlainText == ""
}

// ExtractURL returns the link carried by p, or "".
// The first URI of a text/uri-list wins; plain text is accepted only when it
// parses as an absolute URL.
func ExtractURL(p Payload) string {
	if slices.Contains(p.Types, TypeURIList) || p.URIList != "" {
		for _, line := range strings.Split(p.URIList, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line
		}
	}

	text := strings.TrimSpace(p.PlainText)
	if text == "" {
		return ""
	}
	u, err := url.Parse(text)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return ""
	}
	return text
}
