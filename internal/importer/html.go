package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/chatfolders/internal/model"
	"golang.org/x/net/html"
)

// RootFolder receives links that sit outside any folder.
const RootFolder = "Imported"

// Folder is one folder of a bookmark file with its links in file order.
type Folder struct {
	Name    string
	Entries []model.Entry
}

// ParseHTMLBookmarks parses Netscape bookmark HTML into flat folders.
// Nested folder names are joined with " / ".
func ParseHTMLBookmarks(r io.Reader) ([]Folder, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var folders []Folder
	index := map[string]int{}
	add := func(name string, e *model.Entry) {
		i, ok := index[name]
		if !ok {
			i = len(folders)
			index[name] = i
			folders = append(folders, Folder{Name: name})
		}
		if e != nil {
			folders[i].Entries = append(folders[i].Entries, *e)
		}
	}

	// Track current folder path for nesting
	var stack []string
	var pending string // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					pending = name
					add(strings.Join(append(append([]string{}, stack...), name), " / "), nil)
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}

				added := time.Now()
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						added = time.Unix(ts, 0)
					}
				}

				folder := RootFolder
				if len(stack) > 0 {
					folder = strings.Join(stack, " / ")
				}
				e := model.NewEntry(title, href, added)
				add(folder, &e)
				return

			case "dl":
				pushed := false
				if pending != "" {
					stack = append(stack, pending)
					pending = ""
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return folders, nil
}

// MergeHTML adds parsed folders to state, creating missing folders with
// color. Links already present in their folder are skipped.
func MergeHTML(state *model.State, folders []Folder, color string) (added, skipped int) {
	for _, f := range folders {
		if !state.HasFolder(f.Name) {
			if _, err := state.CreateFolder(f.Name, color); err != nil {
				skipped += len(f.Entries)
				continue
			}
		}
		for _, e := range f.Entries {
			if _, err := state.InsertOrMoveEntry(f.Name, nil, e, len(state.Entries(f.Name)), time.Time{}); err != nil {
				skipped++
				continue
			}
			added++
		}
	}
	return added, skipped
}

func getTextContent(n *html.Node) string {
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
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
