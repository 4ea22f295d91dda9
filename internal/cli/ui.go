package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/fetchtree/pkg/node"
)

// output receives status lines. RootCommand points it at the command's
// output writer.
var output io.Writer = os.Stdout

// ANSI 256 palette.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Styles shared by the commands and the browser.
var (
	StyleTitle     = fg(colorCyan).Bold(true)
	StyleHighlight = fg(colorCyan)
	StyleLink      = fg(colorBlue).Underline(true)
	StyleDim       = fg(colorDim)
	StyleValue     = fg(colorWhite)
	StyleWarning   = fg(colorYellow)

	styleIconSpinner = fg(colorCyan)
	styleCommand     = fg(colorBlue)
	styleKey         = fg(colorGray).Width(12)
)

// Cache status labels shown after tree stats.
const (
	iconCached = "cached"
	iconFresh  = "fresh"
	iconArrow  = "→"
)

type statusKind int

const (
	statusSuccess statusKind = iota
	statusWarning
	statusInfo
)

var statusIcons = [...]struct {
	glyph string
	style lipgloss.Style
}{
	statusSuccess: {"✓", fg(colorGreen)},
	statusWarning: {"!", fg(colorYellow)},
	statusInfo:    {"›", fg(colorGray)},
}

func printStatus(kind statusKind, msg string) {
	icon := statusIcons[kind]
	if kind == statusWarning {
		msg = StyleWarning.Render(msg)
	}
	fmt.Fprintln(output, icon.style.Render(icon.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printStatus(statusSuccess, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(statusWarning, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	printStatus(statusInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(output, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written file.
func printFile(path string) {
	fmt.Fprintf(output, "  %s %s\n", StyleDim.Render(iconArrow), StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(output, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints node, leaf and depth counts on one line, followed by the
// cache status when status is iconCached or iconFresh.
func printStats(s node.Stats, status string) {
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(plural(s.Nodes, "node")),
		StyleDim.Render(plural(s.Leaves, "leaf")),
		StyleDim.Render(fmt.Sprintf("depth %d", s.MaxDepth)),
	}
	switch status {
	case iconCached:
		parts = append(parts, fg(colorGreen).Render(status))
	case iconFresh:
		parts = append(parts, fg(colorGray).Render(status))
	}
	fmt.Fprintln(output, "  "+strings.Join(parts, sep))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintf(output, "%s %s\n", StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

// formatRelativeTime renders t relative to now, e.g. "3h ago".
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return t.Format("Jan 2, 2006")
}

// truncateMiddle shortens s to width runes, keeping both ends.
func truncateMiddle(s string, width int) string {
	r := []rune(s)
	if width < 5 || len(r) <= width {
		return s
	}
	head := (width - 1) / 2
	return string(r[:head]) + "…" + string(r[len(r)-(width-1-head):])
}

// plural returns "1 node", "3 nodes", "2 leaves".
func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	switch {
	case strings.HasSuffix(word, "f"):
		word = strings.TrimSuffix(word, "f") + "ves"
	case strings.HasSuffix(word, "y") && !strings.HasSuffix(word, "ey"):
		word = strings.TrimSuffix(word, "y") + "ies"
	default:
		word += "s"
	}
	return fmt.Sprintf("%d %s", n, word)
}
