package nodelink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/fetchtree/pkg/node"
)

var graphAttrs = []string{
	"rankdir=TB",
	`bgcolor="transparent"`,
	`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=24, margin="0.2,0.1"]`,
	"ranksep=0.5",
	"nodesep=0.3",
}

// DefaultMaxNodes caps diagram size when Options.MaxNodes is zero.
const DefaultMaxNodes = 500

// Options configures node-link diagram rendering.
type Options struct {
	// HideValues shows only titles on leaf boxes.
	HideValues bool

	// MaxNodes limits the number of boxes drawn. Nodes past the limit are
	// collapsed into a single "… n more" box under their parent.
	MaxNodes int

	// MaxValueWidth truncates long leaf values. Zero means 40.
	MaxValueWidth int
}

// ToDOT writes root as a Graphviz digraph, one box per node in depth-first
// order with ids n0, n1, ... The result feeds [RenderSVG], [RenderPDF] and
// [RenderPNG].
//
// Keyed collections are drawn as rounded boxes, positional collections as
// grey boxes and leaves as plain boxes holding "title: value".
func ToDOT(root *node.Node, opts Options) string {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.MaxValueWidth <= 0 {
		opts.MaxValueWidth = 40
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	for _, attr := range graphAttrs {
		buf.WriteString("  " + attr + ";\n")
	}
	buf.WriteString("\n")

	if root != nil {
		w := &dotWriter{buf: &buf, opts: opts}
		w.node(root, "")
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf   *bytes.Buffer
	opts  Options
	count int
	edges []string
}

func (w *dotWriter) node(n *node.Node, parent string) {
	id := "n" + strconv.Itoa(w.count)
	w.count++
	fmt.Fprintf(w.buf, "  %q [%s];\n", id, strings.Join(w.attrs(n), ", "))
	if parent != "" {
		fmt.Fprintf(w.buf, "  %q -> %q;\n", parent, id)
	}

	for i, c := range n.Children {
		if c == nil {
			continue
		}
		if w.count >= w.opts.MaxNodes {
			w.more(id, len(n.Children)-i)
			return
		}
		w.node(c, id)
	}
}

func (w *dotWriter) more(parent string, n int) {
	id := "n" + strconv.Itoa(w.count)
	w.count++
	fmt.Fprintf(w.buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey, fontcolor=black];\n",
		id, fmt.Sprintf("… %d more", n))
	fmt.Fprintf(w.buf, "  %q -> %q [style=dashed];\n", parent, id)
}

func (w *dotWriter) attrs(n *node.Node) []string {
	title := n.Title
	if title == "" {
		title = "(root)"
	}
	switch {
	case n.IsLeaf:
		label := title
		if !w.opts.HideValues {
			label += ": " + truncate(n.Value, w.opts.MaxValueWidth)
		}
		return []string{fmt.Sprintf("label=%q", label), "style=filled", "fillcolor=white"}
	case n.IsArray:
		return []string{fmt.Sprintf("label=%q", fmt.Sprintf("%s [%d]", title, n.ObjectCount)), "fillcolor=lightgrey"}
	default:
		return []string{fmt.Sprintf("label=%q", fmt.Sprintf("%s {%d}", title, n.ObjectCount))}
	}
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > width {
		return string(r[:width]) + "…"
	}
	return s
}
