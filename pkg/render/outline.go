package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fetchtree/pkg/node"
)

// OutlineOptions controls [Outline].
type OutlineOptions struct {
	// MaxDepth stops descending below this depth. Zero means unlimited.
	MaxDepth int

	// HideValues omits leaf values, printing titles only.
	HideValues bool

	// MaxValueWidth truncates long leaf values. Zero means no limit.
	MaxValueWidth int

	// Styled colors titles, values and counts with lipgloss.
	Styled bool
}

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleCount = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleGuide = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	styleValues = map[node.ValueType]lipgloss.Style{
		node.String: lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		node.Number: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		node.Bool:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		node.Null:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
)

const (
	guideBranch = "├── "
	guideLast   = "└── "
	guidePipe   = "│   "
	guideSpace  = "    "
	ellipsis    = "…"
)

// Outline renders the tree as an indented outline with box-drawing guides:
//
//	(root) {2}
//	├── a = 1
//	└── b [2]
//	    ├── [0] = 2
//	    └── [1] = 3
func Outline(root *node.Node, opts OutlineOptions) string {
	if root == nil {
		return ""
	}
	o := outliner{opts: opts}
	o.line(root, "")
	o.children(root, "", 1)
	return o.b.String()
}

type outliner struct {
	b    strings.Builder
	opts OutlineOptions
}

func (o *outliner) children(n *node.Node, prefix string, depth int) {
	if len(n.Children) == 0 {
		return
	}
	if o.opts.MaxDepth > 0 && depth > o.opts.MaxDepth {
		o.b.WriteString(o.style(styleGuide, prefix+guideLast))
		o.b.WriteString(o.style(styleCount, ellipsis))
		o.b.WriteByte('\n')
		return
	}
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		guide, next := guideBranch, guidePipe
		if i == len(n.Children)-1 {
			guide, next = guideLast, guideSpace
		}
		o.line(c, o.style(styleGuide, prefix+guide))
		o.children(c, prefix+next, depth+1)
	}
}

func (o *outliner) line(n *node.Node, guide string) {
	o.b.WriteString(guide)
	title := n.Title
	if title == "" {
		o.b.WriteString(o.style(styleTitle, "(root)"))
	} else {
		o.b.WriteString(o.style(styleKey, title))
	}
	switch {
	case n.IsLeaf:
		if !o.opts.HideValues {
			o.b.WriteString(" = ")
			o.b.WriteString(o.style(styleValues[n.Type], o.value(n.Value)))
		}
	case n.IsArray:
		o.b.WriteString(" " + o.style(styleCount, "["+strconv.Itoa(n.ObjectCount)+"]"))
	default:
		o.b.WriteString(" " + o.style(styleCount, "{"+strconv.Itoa(n.ObjectCount)+"}"))
	}
	o.b.WriteByte('\n')
}

func (o *outliner) value(v string) string {
	v = strings.ReplaceAll(v, "\n", `\n`)
	if w := o.opts.MaxValueWidth; w > 0 {
		if r := []rune(v); len(r) > w {
			return string(r[:w]) + ellipsis
		}
	}
	return v
}

func (o *outliner) style(s lipgloss.Style, text string) string {
	if !o.opts.Styled {
		return text
	}
	return s.Render(text)
}
