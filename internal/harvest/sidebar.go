package harvest

import (
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/nikbrunner/chatfolders/internal/urlnorm"
	"golang.org/x/net/html"
)

// Document is a parsed sidebar page.
type Document struct {
	Title      string
	Candidates []Candidate
}

var (
	spaces    = regexp.MustCompile(`\s+`)
	separator = regexp.MustCompile(`\s(?:–|—|-|:)\s`)
)

// ParseSidebar parses an HTML page and returns its conversation links.
// Relative hrefs are resolved against base.
func ParseSidebar(r io.Reader, base *url.URL) ([]Candidate, error) {
	doc, err := Parse(r, base)
	if err != nil {
		return nil, err
	}
	return doc.Candidates, nil
}

// Parse parses an HTML page into its title and conversation links.
func Parse(r io.Reader, base *url.URL) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if doc.Title == "" {
					doc.Title = textContent(n)
				}
				return
			case "a":
				if c, ok := candidateFromAnchor(n, base); ok && !seen[c.NURL] {
					seen[c.NURL] = true
					doc.Candidates = append(doc.Candidates, c)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

func candidateFromAnchor(a *html.Node, base *url.URL) (Candidate, bool) {
	href := getAttr(a, "href")
	if href == "" || !strings.Contains(href, "/c/") {
		return Candidate{}, false
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") && base != nil {
		if ref, err := url.Parse(href); err == nil {
			href = base.ResolveReference(ref).String()
		}
	}

	title := collapse(cutAtSeparator(firstNonBlank(
		getAttr(a, "aria-label"),
		getAttr(a, "title"),
		ownText(a),
		firstChildText(a),
		textContent(a),
	)))
	if title == "" {
		return Candidate{}, false
	}

	desc := cutAtSeparator(collapse(firstNonBlank(
		getAttr(a, "aria-description"),
		getAttr(a, "data-description"),
	)))
	if desc == title {
		desc = ""
	}

	return Candidate{
		Title:       title,
		Description: desc,
		URL:         href,
		NURL:        urlnorm.Normalize(href),
	}, true
}

// cutAtSeparator keeps the text before the first " - ", " – ", " — " or " : ".
func cutAtSeparator(s string) string {
	s = collapse(s)
	if loc := separator.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ownText joins the direct text children of n.
func ownText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
		}
	}
	return strings.Join(parts, " ")
}

func firstChildText(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return textContent(c)
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
