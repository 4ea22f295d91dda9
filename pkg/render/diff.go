package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/matzehuels/fetchtree/pkg/node"
)

// DiffOp classifies a line of a [DiffResult].
type DiffOp int

const (
	DiffEqual DiffOp = iota
	DiffInsert
	DiffDelete
)

// DiffLine is one line of a tree listing together with how it changed.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// DiffResult is a line diff between the listings of two trees.
type DiffResult struct {
	Lines   []DiffLine
	Added   int
	Removed int
}

// Changed reports whether the trees differ.
func (r DiffResult) Changed() bool {
	return r.Added > 0 || r.Removed > 0
}

// String renders the diff with "+ ", "- " and "  " markers.
func (r DiffResult) String() string {
	return r.format(false)
}

// Styled renders the diff like [DiffResult.String] with colored markers.
func (r DiffResult) Styled() string {
	return r.format(true)
}

var (
	styleInsert = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleDelete = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleEqual  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (r DiffResult) format(styled bool) string {
	var b strings.Builder
	for _, l := range r.Lines {
		var line string
		var s lipgloss.Style
		switch l.Op {
		case DiffInsert:
			line, s = "+ "+l.Text, styleInsert
		case DiffDelete:
			line, s = "- "+l.Text, styleDelete
		default:
			line, s = "  "+l.Text, styleEqual
		}
		if styled {
			line = s.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Listing flattens a tree into one line per node, keyed by its path from the
// root, e.g. "/b/[0] = 2". Collections show their child count.
func Listing(root *node.Node) []string {
	var lines []string
	node.Walk(root, func(n *node.Node, path string, _ int) bool {
		if path == "" {
			path = "/"
		}
		switch {
		case n.IsLeaf:
			lines = append(lines, path+" = "+strings.ReplaceAll(n.Value, "\n", `\n`))
		case n.IsArray:
			lines = append(lines, path+" ["+strconv.Itoa(n.ObjectCount)+"]")
		default:
			lines = append(lines, path+" {"+strconv.Itoa(n.ObjectCount)+"}")
		}
		return true
	})
	return lines
}

// Diff compares the listings of two trees line by line.
func Diff(a, b *node.Node) DiffResult {
	before := joinLines(Listing(a))
	after := joinLines(Listing(b))

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var r DiffResult
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		}
		for _, text := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			r.Lines = append(r.Lines, DiffLine{Op: op, Text: text})
			switch op {
			case DiffInsert:
				r.Added++
			case DiffDelete:
				r.Removed++
			}
		}
	}
	return r
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
