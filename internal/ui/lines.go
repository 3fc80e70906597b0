package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// textLine is one row of the menu column. Styles are applied when the line is
// rendered, so widths are measured on the plain text. Raw lines carry their
// own ANSI colours.
type textLine struct {
	text  string
	style *lipgloss.Style
	// marker styles the first rune, e.g. the selection bar of an item.
	marker *lipgloss.Style
	raw    bool
}

func (l textLine) clip(width int) textLine {
	if width <= 0 {
		return l
	}
	if l.raw {
		if lipgloss.Width(l.text) > width {
			l.text = truncate.StringWithTail(l.text, uint(width), "…")
		}
		return l
	}
	l.text = ellipsize(l.text, width)
	return l
}

func (l textLine) render() string {
	if l.raw {
		return l.text
	}
	if l.marker != nil {
		if runes := []rune(l.text); len(runes) > 1 {
			return l.marker.Render(string(runes[:1])) + renderWith(l.style, string(runes[1:]))
		}
	}
	return renderWith(l.style, l.text)
}

func clipLines(lines []textLine, width int) []textLine {
	out := make([]textLine, len(lines))
	for i, l := range lines {
		out[i] = l.clip(width)
	}
	return out
}

// capLines keeps at most height lines, replacing the last kept one with an
// ellipsis when something was cut.
func capLines(lines []textLine, height int) []textLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	out := append([]textLine(nil), lines[:height-1]...)
	return append(out, textLine{text: "…"})
}

func joinLines(lines []textLine) string {
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = l.render()
	}
	return strings.Join(rendered, "\n")
}

// ellipsize shortens text to width cells, ending it with "…".
func ellipsize(text string, width int) string {
	if width <= 0 {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

// fitCell pads or truncates an already styled string to exactly width cells.
func fitCell(s string, width int) string {
	w := lipgloss.Width(s)
	switch {
	case w > width:
		return truncate.StringWithTail(s, uint(width), "…")
	case w < width:
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
