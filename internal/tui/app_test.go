package tui_test

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/chatfolders/internal/dnd"
	"github.com/nikbrunner/chatfolders/internal/harvest"
	"github.com/nikbrunner/chatfolders/internal/model"
	"github.com/nikbrunner/chatfolders/internal/organizer"
	"github.com/nikbrunner/chatfolders/internal/picker"
	"github.com/nikbrunner/chatfolders/internal/storage"
	"github.com/nikbrunner/chatfolders/internal/tui"
)

type folderSeed struct {
	name string
	urls []string
}

func newOrganizer(t *testing.T, bridge harvest.Bridge, folders ...folderSeed) *organizer.Organizer {
	t.Helper()
	ctx := context.Background()
	org, err := organizer.New(ctx, organizer.Params{
		Repo:         storage.NewRepository(storage.NewMemoryStorage()),
		Bridge:       bridge,
		Now:          func() time.Time { return time.UnixMilli(1700000000000) },
		DefaultColor: "#336699",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := org.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := org.SetPanelOpen(ctx, true); err != nil {
		t.Fatal(err)
	}
	for _, f := range folders {
		if _, err := org.CreateFolder(ctx, f.name, ""); err != nil {
			t.Fatal(err)
		}
		for _, u := range f.urls {
			if _, err := org.AddChat(ctx, f.name, u, "chat "+u[len(u)-1:]); err != nil {
				t.Fatal(err)
			}
		}
	}
	return org
}

func newApp(org *organizer.Organizer) tui.App {
	return tui.NewApp(tui.AppParams{Organizer: org})
}

func press(app tui.App, keys ...string) tui.App {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := app.Update(msg)
		app = updated.(tui.App)
	}
	return app
}

func typeText(app tui.App, s string) tui.App {
	for _, r := range s {
		updated, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		app = updated.(tui.App)
	}
	return app
}

func urls(org *organizer.Organizer, folder string) []string {
	var out []string
	for _, e := range org.State().Entries(folder) {
		out = append(out, e.URL)
	}
	return out
}

const (
	c1 = "https://chatgpt.com/c/1"
	c2 = "https://chatgpt.com/c/2"
	c3 = "https://chatgpt.com/c/3"
)

func TestApp_Rows(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2}}, folderSeed{"B", nil})
	app := newApp(org)

	want := []tui.RowKind{tui.RowHeader, tui.RowEntry, tui.RowEntry, tui.RowHeader, tui.RowEmpty}
	var got []tui.RowKind
	for _, r := range app.Rows() {
		got = append(got, r.Kind)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("row kinds = %v, want %v", got, want)
	}
}

func TestApp_Navigation_JK(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}}, folderSeed{"B", nil})
	app := newApp(org)

	if app.Cursor() != 0 {
		t.Errorf("expected initial cursor 0, got %d", app.Cursor())
	}

	app = press(app, "j")
	if app.Cursor() != 1 {
		t.Errorf("after j, expected cursor 1, got %d", app.Cursor())
	}

	app = press(app, "k", "k")
	if app.Cursor() != 0 {
		t.Errorf("k at top should stay at 0, got %d", app.Cursor())
	}

	app = press(app, "G")
	if app.Cursor() != len(app.Rows())-1 {
		t.Errorf("G should go to last row, got %d", app.Cursor())
	}
	app = press(app, "j")
	if app.Cursor() != len(app.Rows())-1 {
		t.Errorf("j at bottom should stay, got %d", app.Cursor())
	}
	app = press(app, "g")
	if app.Cursor() != 0 {
		t.Errorf("g should go to top, got %d", app.Cursor())
	}
}

func TestApp_ToggleCollapse(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2}})
	app := newApp(org)

	app = press(app, "space")
	if !org.State().IsCollapsed("A") {
		t.Fatal("A not collapsed after space")
	}
	if len(app.Rows()) != 1 {
		t.Errorf("collapsed folder shows %d rows, want 1", len(app.Rows()))
	}

	app = press(app, "enter")
	if org.State().IsCollapsed("A") {
		t.Error("enter on header should expand")
	}
	if len(app.Rows()) != 3 {
		t.Errorf("expanded folder shows %d rows, want 3", len(app.Rows()))
	}
}

func TestApp_NewFolder(t *testing.T) {
	org := newOrganizer(t, nil)
	app := newApp(org)

	app = press(app, "n")
	if app.Mode() != tui.ModeNewFolder {
		t.Fatalf("mode = %v, want ModeNewFolder", app.Mode())
	}
	app = typeText(app, "Work")
	app = press(app, "enter")

	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal", app.Mode())
	}
	if !org.State().HasFolder("Work") {
		t.Fatal("folder not created")
	}

	// A duplicate name keeps the form open with an error.
	app = press(app, "n")
	app = typeText(app, "Work")
	app = press(app, "enter")
	if app.Mode() != tui.ModeNewFolder {
		t.Errorf("duplicate should keep the form open, mode = %v", app.Mode())
	}
	if app.Message() == "" {
		t.Error("expected an error message for duplicate name")
	}
	app = press(app, "esc")
	if app.Mode() != tui.ModeNormal {
		t.Errorf("esc should close the form, mode = %v", app.Mode())
	}
}

func TestApp_Rename(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}}, folderSeed{"B", nil})
	app := newApp(org)

	app = press(app, "r")
	app = typeText(app, "lpha")
	app = press(app, "enter")

	state := org.State()
	if want := []string{"Alpha", "B"}; !reflect.DeepEqual(state.Order, want) {
		t.Errorf("order = %v, want %v", state.Order, want)
	}
	if len(state.Entries("Alpha")) != 1 {
		t.Error("entries lost on rename")
	}
}

func TestApp_Color(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", nil})
	app := newApp(org)

	app = press(app, "c")
	for range 7 {
		app = press(app, "backspace")
	}
	app = typeText(app, "#ff0000")
	app = press(app, "enter")

	if got := org.State().Color("A"); got != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", got)
	}
}

func TestApp_DragReorderWithinFolder(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2, c3}})
	app := newApp(org)

	// Pick up the third chat and drop it above the first.
	app = press(app, "j", "j", "j", "m")
	if app.Mode() != tui.ModeDrag {
		t.Fatalf("mode = %v, want ModeDrag", app.Mode())
	}
	app = press(app, "k", "k", "enter")

	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal after drop", app.Mode())
	}
	want := []string{c3, c1, c2}
	if got := urls(org, "A"); !reflect.DeepEqual(got, want) {
		t.Errorf("A = %v, want %v", got, want)
	}
}

func TestApp_DragIntoEmptyFolder(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}}, folderSeed{"B", nil})
	app := newApp(org)

	// Rows: A, c1, B, (empty B)
	app = press(app, "j", "m", "j", "j", "enter")

	if got := urls(org, "B"); !reflect.DeepEqual(got, []string{c1}) {
		t.Errorf("B = %v, want [%s]", got, c1)
	}
	if n := len(org.State().Entries("A")); n != 0 {
		t.Errorf("A has %d entries, want 0", n)
	}
}

func TestApp_DragOntoHeaderAppends(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}}, folderSeed{"B", []string{c2}})
	if err := org.SetCollapsed(context.Background(), "B", true); err != nil {
		t.Fatal(err)
	}
	app := newApp(org)

	// Rows: A, c1, B (collapsed)
	app = press(app, "j", "m", "j", "enter")

	if got := urls(org, "B"); !reflect.DeepEqual(got, []string{c2, c1}) {
		t.Errorf("B = %v, want [%s %s]", got, c2, c1)
	}
}

func TestApp_DragFolder(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", nil}, folderSeed{"B", nil}, folderSeed{"C", nil})
	app := newApp(org)

	// Rows: A, (empty), B, (empty), C, (empty). Move C before A.
	app = press(app, "j", "j", "j", "j", "m", "k", "k", "k", "k", "enter")

	if want := []string{"C", "A", "B"}; !reflect.DeepEqual(org.State().Order, want) {
		t.Errorf("order = %v, want %v", org.State().Order, want)
	}
}

func TestApp_DragFolderToEnd(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", nil}, folderSeed{"B", nil}, folderSeed{"C", nil})
	app := newApp(org)

	// Pointing at C's drop area lands after C.
	app = press(app, "m", "G", "enter")

	if want := []string{"B", "C", "A"}; !reflect.DeepEqual(org.State().Order, want) {
		t.Errorf("order = %v, want %v", org.State().Order, want)
	}
}

func TestApp_DragCancel(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2}})
	app := newApp(org)

	app = press(app, "j", "m", "j", "j", "esc")

	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal", app.Mode())
	}
	if got := urls(org, "A"); !reflect.DeepEqual(got, []string{c1, c2}) {
		t.Errorf("A = %v, want unchanged", got)
	}
	if org.Engine().Active().Mode != dnd.ModeIdle {
		t.Errorf("engine mode = %v, want idle", org.Engine().Active().Mode)
	}
}

func TestApp_RemoveEntry(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2}})
	app := newApp(org)

	app = press(app, "j", "j", "x")

	if got := urls(org, "A"); !reflect.DeepEqual(got, []string{c1}) {
		t.Errorf("A = %v, want [%s]", got, c1)
	}
	if app.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1 after removing last row", app.Cursor())
	}
}

func TestApp_ClearThenDelete(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}}, folderSeed{"B", nil})
	app := newApp(org)

	app = press(app, "d")
	if app.Mode() != tui.ModeConfirm {
		t.Fatalf("mode = %v, want ModeConfirm", app.Mode())
	}
	app = press(app, "n")
	if len(org.State().Entries("A")) != 1 {
		t.Fatal("n should not clear")
	}

	app = press(app, "d", "y")
	if !org.State().HasFolder("A") || len(org.State().Entries("A")) != 0 {
		t.Fatal("first confirm should clear A")
	}

	press(app, "d", "y")
	if org.State().HasFolder("A") {
		t.Error("second confirm should delete A")
	}
	if !reflect.DeepEqual(org.State().Order, []string{"B"}) {
		t.Errorf("order = %v, want [B]", org.State().Order)
	}
}

func TestApp_YankURL(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}})
	var copied string
	app := tui.NewApp(tui.AppParams{
		Organizer: org,
		Clipboard: func(s string) error { copied = s; return nil },
	})

	app = press(app, "j", "y")
	if copied != c1 {
		t.Errorf("copied = %q, want %q", copied, c1)
	}
	if app.Message() == "" {
		t.Error("expected a confirmation message")
	}
}

func TestApp_Filter(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2}}, folderSeed{"B", []string{c3}})
	app := newApp(org)

	app = press(app, "/")
	if app.Mode() != tui.ModeFilter {
		t.Fatalf("mode = %v, want ModeFilter", app.Mode())
	}
	app = typeText(app, "chat 2")

	var entries []string
	for _, r := range app.Rows() {
		if r.Kind == tui.RowEntry {
			entries = append(entries, r.Item.URL)
		}
	}
	if !reflect.DeepEqual(entries, []string{c2}) {
		t.Errorf("visible entries = %v, want [%s]", entries, c2)
	}

	app = press(app, "enter")
	if app.Mode() != tui.ModeNormal || len(app.Rows()) != 4 {
		t.Errorf("filter should persist after enter, rows = %d", len(app.Rows()))
	}

	app = press(app, "esc")
	if len(app.Rows()) != 5 {
		t.Errorf("esc should clear filter, rows = %d", len(app.Rows()))
	}
}

func TestApp_FilteredDragUsesCanonicalIndex(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", nil})
	ctx := context.Background()
	for _, c := range []struct{ url, title string }{{c1, "alpha x"}, {c2, "beta"}, {c3, "gamma x"}} {
		if _, err := org.AddChat(ctx, "A", c.url, c.title); err != nil {
			t.Fatal(err)
		}
	}
	app := newApp(org)

	app = press(app, "/")
	app = typeText(app, "x")
	app = press(app, "enter")
	// Rows: A, alpha x, gamma x. Drop gamma above alpha.
	app = press(app, "j", "j", "m", "k", "enter")

	want := []string{c3, c1, c2}
	if got := urls(org, "A"); !reflect.DeepEqual(got, want) {
		t.Errorf("A = %v, want %v", got, want)
	}
}

func TestApp_HeaderDropInSameFolderIsNoop(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1, c2}})
	app := newApp(org)

	app = press(app, "j", "j", "m", "k", "k", "enter")

	if got := urls(org, "A"); !reflect.DeepEqual(got, []string{c1, c2}) {
		t.Errorf("A = %v, want unchanged", got)
	}
	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal", app.Mode())
	}
}

func TestApp_ViewShowsMarkerWhileDragging(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"Research", []string{c1, c2}})
	app := newApp(org).WithDimensions(80, 30)

	view := ansi.Strip(app.View())
	assert.Check(t, cmp.Contains(view, "Research"))
	assert.Check(t, cmp.Contains(view, "chat 1"))
	assert.Check(t, !strings.Contains(view, "drop here"))

	app = press(app, "j", "m", "j")
	view = ansi.Strip(app.View())
	assert.Check(t, cmp.Contains(view, "drop here"))

	app = press(app, "esc")
	assert.Check(t, !strings.Contains(ansi.Strip(app.View()), "drop here"))
}

func TestApp_ViewAlignsHeaderCounts(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}}, folderSeed{"Research notes", nil})
	app := newApp(org).WithDimensions(80, 30)

	column := map[string]int{}
	for _, line := range strings.Split(ansi.Strip(app.View()), "\n") {
		for _, action := range []string{"· Clear", "· Delete"} {
			if i := strings.Index(line, action); i >= 0 {
				column[action] = utf8.RuneCountInString(line[:i])
			}
		}
	}
	assert.Equal(t, len(column), 2, "both headers rendered")
	assert.Equal(t, column["· Clear"], column["· Delete"])
}

func TestApp_ViewHiddenPanel(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"Research", nil})
	app := press(newApp(org), "p")

	view := ansi.Strip(app.View())
	assert.Check(t, cmp.Contains(view, "Folders hidden"))
	assert.Check(t, !strings.Contains(view, "Research"))
}

func TestApp_PanelToggle(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", nil})
	app := newApp(org)

	app = press(app, "p")
	if app.PanelOpen() {
		t.Fatal("panel still open after p")
	}
	open, err := org.PanelOpen(context.Background())
	if err != nil || open {
		t.Errorf("stored panel flag = %v, %v; want false", open, err)
	}

	// Keys other than p and q are ignored while hidden.
	app = press(app, "n")
	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal while hidden", app.Mode())
	}

	app = press(app, "p")
	if !app.PanelOpen() {
		t.Error("panel closed after second p")
	}
}

func TestApp_AddChatWithoutBridge(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", nil})
	app := newApp(org)

	app = press(app, "a")
	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal", app.Mode())
	}
	if app.Message() == "" {
		t.Error("expected a warning message")
	}
}

func TestApp_AddChatFromPicker(t *testing.T) {
	bridge := harvest.StaticBridge{Candidates: []harvest.Candidate{
		{Title: "Sidebar chat", URL: c2, NURL: c2},
	}}
	org := newOrganizer(t, bridge, folderSeed{"A", nil})
	app := newApp(org)

	app = press(app, "a")
	if app.Mode() != tui.ModePicker {
		t.Fatalf("mode = %v, want ModePicker", app.Mode())
	}

	updated, _ := app.Update(picker.DoneMsg{Selected: &picker.Option{Title: "Sidebar chat", URL: c2}})
	app = updated.(tui.App)

	if app.Mode() != tui.ModeNormal {
		t.Errorf("mode = %v, want ModeNormal", app.Mode())
	}
	entries := org.State().Entries("A")
	if len(entries) != 1 || entries[0].Title != "Sidebar chat" {
		t.Errorf("A = %+v, want the picked chat", entries)
	}
}

func TestApp_ReloadMsg(t *testing.T) {
	org := newOrganizer(t, nil, folderSeed{"A", []string{c1}})
	app := newApp(org)

	if _, err := org.RemoveURLs(context.Background(), []string{model.Entry{URL: c1}.Key()}); err != nil {
		t.Fatal(err)
	}
	updated, _ := app.Update(tui.ReloadMsg{})
	app = updated.(tui.App)

	if len(app.Rows()) != 2 || app.Rows()[1].Kind != tui.RowEmpty {
		t.Errorf("rows after reload = %+v", app.Rows())
	}
}

func TestApp_Quit(t *testing.T) {
	app := newApp(newOrganizer(t, nil))
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
