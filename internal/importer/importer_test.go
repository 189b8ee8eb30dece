package importer_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/chatfolders/internal/importer"
	"github.com/nikbrunner/chatfolders/internal/model"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   error
		wantOrder []string
	}{
		{"empty groups", `{"folders":{}, "order":[]}`, nil, []string{}},
		{
			name:      "full document",
			input:     `{"folders":{"A":[{"type":"page","text":"x","title":"x","url":"https://chatgpt.com/c/1","nurl":"https://chatgpt.com/c/1","ts":1}]},"order":["A"],"collapsed":{"A":true},"folderColors":{"A":"#fff"}}`,
			wantOrder: []string{"A"},
		},
		{"missing keys", `{"foo":1}`, importer.ErrMalformedImport, nil},
		{"missing order", `{"folders":{}}`, importer.ErrMalformedImport, nil},
		{"not an object", `[1,2]`, importer.ErrMalformedImport, nil},
		{"null", `null`, importer.ErrMalformedImport, nil},
		{"wrong folder type", `{"folders":[], "order":[]}`, importer.ErrMalformedImport, nil},
		{"not json", `hello`, importer.ErrMalformedImport, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := importer.ParseState(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseState() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(state.Order, tt.wantOrder) {
				t.Errorf("order = %v, want %v", state.Order, tt.wantOrder)
			}
			if err := state.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestParseState_RepairsPermutation(t *testing.T) {
	state, err := importer.ParseState(strings.NewReader(`{"folders":{"B":[],"A":[]},"order":["A","Z"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(state.Order, []string{"A", "B"}) {
		t.Errorf("order = %v", state.Order)
	}
}

const bookmarksHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Work</H3>
    <DL><p>
        <DT><H3>Go</H3>
        <DL><p>
            <DT><A HREF="https://chatgpt.com/c/go" ADD_DATE="1700000000">Generics</A>
        </DL><p>
        <DT><A HREF="https://chatgpt.com/c/plan" ADD_DATE="1700000000">Planning</A>
        <DT><A HREF="http://chat.openai.com/c/plan/">Planning again</A>
    </DL><p>
    <DT><A HREF="https://chatgpt.com/c/root">Loose</A>
    <DT><A>No href</A>
</DL><p>`

func TestParseHTMLBookmarks(t *testing.T) {
	folders, err := importer.ParseHTMLBookmarks(strings.NewReader(bookmarksHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, f := range folders {
		names = append(names, f.Name)
	}
	want := []string{"Work", "Work / Go", importer.RootFolder}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("folders = %v, want %v", names, want)
	}

	if n := len(folders[0].Entries); n != 2 {
		t.Errorf("Work entries = %d, want 2", n)
	}
	goEntry := folders[1].Entries[0]
	if goEntry.Title != "Generics" || goEntry.TS != time.Unix(1700000000, 0).UnixMilli() {
		t.Errorf("Go entry = %+v", goEntry)
	}
	if folders[2].Entries[0].NURL != "https://chatgpt.com/c/root" {
		t.Errorf("root entry = %+v", folders[2].Entries[0])
	}
}

func TestMergeHTML(t *testing.T) {
	folders, err := importer.ParseHTMLBookmarks(strings.NewReader(bookmarksHTML))
	if err != nil {
		t.Fatal(err)
	}
	state := model.NewState()
	if _, err := state.CreateFolder("Work", "#123456"); err != nil {
		t.Fatal(err)
	}

	added, skipped := importer.MergeHTML(state, folders, "#abcdef")
	if added != 3 || skipped != 1 {
		t.Errorf("added, skipped = %d, %d; want 3, 1", added, skipped)
	}
	if state.Color("Work") != "#123456" {
		t.Errorf("existing folder color changed")
	}
	if state.Color("Work / Go") != "#abcdef" {
		t.Errorf("new folder color = %q", state.Color("Work / Go"))
	}
	if err := state.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	added, skipped = importer.MergeHTML(state, folders, "")
	if added != 0 || skipped != 4 {
		t.Errorf("second merge added, skipped = %d, %d; want 0, 4", added, skipped)
	}
}
