package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const gutter = "  "

// Column describes one table column.
type Column struct {
	Title    string
	Align    Alignment
	MaxWidth int
}

// Format pads every cell to the widest entry of its column, measured in
// display cells. The last column is not padded when left aligned.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(widths))
		for c, width := range widths {
			var cell string
			if c < len(row) {
				cell = row[c]
			}
			switch {
			case c < len(alignments) && alignments[c] == AlignRight:
				cell = runewidth.FillLeft(cell, width)
			case c < len(widths)-1:
				cell = runewidth.FillRight(cell, width)
			}
			cells[c] = cell
		}
		out[i] = strings.Join(cells, gutter)
	}
	return out
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			if c == len(widths) {
				widths = append(widths, 0)
			}
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}
	return widths
}

// Render formats the column titles and the rows together, so the header
// lines up with the body. Cells longer than their column's MaxWidth are cut.
func Render(columns []Column, rows [][]string) (header string, body []string) {
	titles := make([]string, len(columns))
	aligns := make([]Alignment, len(columns))
	for i, col := range columns {
		titles[i], aligns[i] = col.Title, col.Align
	}
	all := [][]string{titles}
	for _, row := range rows {
		cells := append([]string(nil), row...)
		for i := range cells {
			if i < len(columns) && columns[i].MaxWidth > 0 {
				cells[i] = Truncate(cells[i], columns[i].MaxWidth)
			}
		}
		all = append(all, cells)
	}
	lines := Format(all, aligns)
	return lines[0], lines[1:]
}

// Truncate shortens text to width display cells, ending with an ellipsis when
// something was cut.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}
