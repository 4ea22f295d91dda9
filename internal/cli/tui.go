package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fetchtree/pkg/node"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BrowseModel - Interactive tree browser
// =============================================================================

// browseRow is one visible line of the browser.
type browseRow struct {
	node   *node.Node
	parent int // row index of the parent, -1 for the root
	depth  int
	path   string
}

// BrowseModel is the bubbletea model for exploring a node tree. Collections
// start collapsed except for the root.
type BrowseModel struct {
	Title    string
	Root     *node.Node
	Cursor   int
	Offset   int
	Height   int
	Width    int
	expanded map[*node.Node]bool
	rows     []browseRow
}

// NewBrowseModel creates a browser for root.
func NewBrowseModel(title string, root *node.Node) BrowseModel {
	m := BrowseModel{
		Title:    title,
		Root:     root,
		Height:   20,
		Width:    100,
		expanded: map[*node.Node]bool{root: true},
	}
	m.rebuild()
	return m
}

// rebuild recomputes the visible rows from the expansion state.
func (m *BrowseModel) rebuild() {
	m.rows = m.rows[:0]
	if m.Root == nil {
		return
	}
	var add func(n *node.Node, parent, depth int, path string)
	add = func(n *node.Node, parent, depth int, path string) {
		idx := len(m.rows)
		m.rows = append(m.rows, browseRow{node: n, parent: parent, depth: depth, path: path})
		if !m.expanded[n] {
			return
		}
		for _, c := range n.Children {
			if c != nil {
				add(c, idx, depth+1, path+"/"+c.Title)
			}
		}
	}
	add(m.Root, -1, 0, "")
	m.Cursor = min(m.Cursor, len(m.rows)-1)
	m.scroll()
}

func (m *BrowseModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	m.Offset = max(m.Offset, 0)
}

// Selected returns the node under the cursor.
func (m BrowseModel) Selected() *node.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.Cursor].node
}

// Visible returns the number of rows currently shown.
func (m BrowseModel) Visible() int {
	return len(m.rows)
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(m.rows) - 1
		case "right", "l", "enter", " ":
			if n := m.Selected(); n != nil && !n.IsLeaf && !m.expanded[n] {
				m.expanded[n] = true
				m.rebuild()
			}
		case "left", "h":
			if len(m.rows) == 0 {
				break
			}
			row := m.rows[m.Cursor]
			if !row.node.IsLeaf && m.expanded[row.node] && row.parent >= 0 {
				delete(m.expanded, row.node)
				m.rebuild()
			} else if row.parent >= 0 {
				m.Cursor = row.parent
			}
		case "*":
			if n := m.Selected(); n != nil {
				node.Walk(n, func(c *node.Node, _ string, _ int) bool {
					if !c.IsLeaf {
						m.expanded[c] = true
					}
					return true
				})
				m.rebuild()
			}
		case "-":
			m.expanded = map[*node.Node]bool{m.Root: true}
			m.Cursor = 0
			m.rebuild()
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.Width = msg.Width
		m.scroll()
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  → expand  ← collapse  * expand all  - reset  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		row := m.rows[i]
		marker := "  "
		switch {
		case row.node.IsLeaf:
			marker = "• "
		case m.expanded[row.node]:
			marker = "▾ "
		default:
			marker = "▸ "
		}
		line := strings.Repeat("  ", row.depth) + marker + row.node.String()
		if w := m.Width - 2; w > 10 && len([]rune(line)) > w {
			line = string([]rune(line)[:w-1]) + "…"
		}
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case row.node.IsLeaf:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.rows) > 0 {
		path := m.rows[m.Cursor].path
		if path == "" {
			path = "/"
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s  [%d/%d]", path, m.Cursor+1, len(m.rows))))
	}
	return b.String()
}
