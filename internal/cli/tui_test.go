package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/fetchtree/pkg/node"
)

func browseSample() *node.Node {
	return node.NewObject("",
		node.NewLeaf("name", "demo", node.String),
		node.NewArray("tags",
			node.NewLeaf("", "a", node.String),
			node.NewLeaf("", "b", node.String),
		),
		node.NewObject("meta", node.NewLeaf("v", "1", node.Number)),
	)
}

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowseModelInitialRows(t *testing.T) {
	m := NewBrowseModel("demo", browseSample())
	if got := m.Visible(); got != 4 {
		t.Fatalf("Visible() = %d, want 4 (root + 3 children)", got)
	}
	if m.Selected() != m.Root {
		t.Error("cursor should start on the root")
	}
}

func TestBrowseModelNavigation(t *testing.T) {
	root := browseSample()
	m := NewBrowseModel("demo", root)

	m = press(m, "down", "down")
	if got := m.Selected(); got != root.Child("tags") {
		t.Fatalf("Selected() = %v, want tags", got)
	}

	m = press(m, "right")
	if got := m.Visible(); got != 6 {
		t.Errorf("after expand Visible() = %d, want 6", got)
	}

	m = press(m, "j")
	if got := m.Selected(); got != root.Child("tags").Children[0] {
		t.Errorf("Selected() = %v, want tags/[0]", got)
	}

	// left on a leaf jumps to its parent
	m = press(m, "h")
	if got := m.Selected(); got != root.Child("tags") {
		t.Errorf("Selected() = %v, want tags", got)
	}

	// left on an expanded collection collapses it
	m = press(m, "left")
	if got := m.Visible(); got != 4 {
		t.Errorf("after collapse Visible() = %d, want 4", got)
	}

	m = press(m, "G")
	if got := m.Selected(); got != root.Child("meta") {
		t.Errorf("G: Selected() = %v, want meta", got)
	}
	m = press(m, "g")
	if m.Selected() != root {
		t.Error("g should move to the root")
	}
	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
}

func TestBrowseModelExpandAll(t *testing.T) {
	m := NewBrowseModel("demo", browseSample())
	m = press(m, "*")
	if got := m.Visible(); got != 7 {
		t.Errorf("Visible() = %d, want 7", got)
	}
	m = press(m, "-")
	if got := m.Visible(); got != 4 {
		t.Errorf("after reset Visible() = %d, want 4", got)
	}
}

func TestBrowseModelQuit(t *testing.T) {
	m := NewBrowseModel("demo", browseSample())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowseModelView(t *testing.T) {
	m := NewBrowseModel("demo", browseSample())
	view := m.View()
	for _, want := range []string{"demo", "name = demo", "tags [2]", "meta {1}", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	m = press(m, "down")
	if !strings.Contains(m.View(), "/name") {
		t.Error("footer should show the selected path")
	}
}

func TestBrowseModelScroll(t *testing.T) {
	m := NewBrowseModel("demo", browseSample())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 7})
	m = next.(BrowseModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}
	m = press(m, "*", "G")
	if m.Offset != m.Visible()-m.Height {
		t.Errorf("Offset = %d, want %d", m.Offset, m.Visible()-m.Height)
	}
}

func TestBrowseModelNilRoot(t *testing.T) {
	m := NewBrowseModel("empty", nil)
	if m.Visible() != 0 || m.Selected() != nil {
		t.Error("nil root should have no rows")
	}
	m = press(m, "left", "down", "right")
	_ = m.View()
}
