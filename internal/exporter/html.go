package exporter

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/nikbrunner/chatfolders/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/chatgpt_groups_export-YYYY-MM-DD.json (.html with asHTML)
func DefaultExportPath(now time.Time, asHTML bool) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	ext := "json"
	if asHTML {
		ext = "html"
	}
	filename := fmt.Sprintf("chatgpt_groups_export-%s.%s", now.Format("2006-01-02"), ext)
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportJSON writes state as an indented grouping document.
func ExportJSON(w io.Writer, state *model.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// WriteFile exports state to path, creating the directory if needed.
func WriteFile(path string, state *model.State, asHTML bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if asHTML {
		_, err = io.WriteString(f, ExportHTML(state))
	} else {
		err = ExportJSON(f, state)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ExportHTML exports the folders to Netscape bookmark HTML format, one
// folder per H3 in display order.
func ExportHTML(state *model.State) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Chat folders</TITLE>\n")
	b.WriteString("<H1>Chat folders</H1>\n")
	b.WriteString("<DL><p>\n")

	prefix := "    "
	for _, name := range state.Order {
		fmt.Fprintf(&b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(name))
		fmt.Fprintf(&b, "%s<DL><p>\n", prefix)
		for _, e := range state.Entries(name) {
			fmt.Fprintf(&b,
				"%s    <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(e.Href()),
				e.Time().Unix(),
				html.EscapeString(e.DisplayText()),
			)
		}
		fmt.Fprintf(&b, "%s</DL><p>\n", prefix)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}
