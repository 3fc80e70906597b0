package ui

import (
	"fmt"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/ui/listing"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// bottomBarRows is the status line plus the filter prompt.
const bottomBarRows = 2

// View implements tea.Model.
func (m *Model) View() string {
	switch m.mode {
	case ModeSignIn:
		return m.viewSignIn()
	case ModeForm:
		if m.record != nil {
			return m.viewRecordForm()
		}
	case ModeNotFound:
		return m.viewMessage(m.notFound, styles.Warning, "esc back • ctrl+c quit")
	case ModeFallback:
		return m.viewFallback()
	}
	if w := m.previewWidth(); w > 0 {
		return m.viewSplit(w)
	}
	return m.viewStacked()
}

// previewWidth is the width of the side preview panel, or 0 when the current
// level has no preview or the terminal is too narrow to split.
func (m *Model) previewWidth() int {
	if m.width <= 0 || !levelHasPreview(m.currentLevel()) {
		return 0
	}
	if w := int(float64(m.width) * previewWidthShare); w >= previewMinWidth {
		return w
	}
	return 0
}

// menuColumn is everything above the bottom bar except the side panel.
func (m *Model) menuColumn(width int, inlinePreview bool) []textLine {
	lines := m.titleLines()
	lines = append(lines, m.levelLines(m.currentLevel(), width)...)
	if inlinePreview {
		lines = append(lines, m.inlinePreview()...)
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, textLine{}, textLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, textLine{}, textLine{text: m.footerText(), style: styles.Footer})
	}
	return lines
}

func (m *Model) bottomBar() string {
	prompt, _ := m.filterPrompt()
	return joinLines(clipLines([]textLine{m.statusLine(), {text: prompt, raw: true}}, m.width))
}

// viewStacked renders a single column with the preview, if any, below the
// items.
func (m *Model) viewStacked() string {
	lines := capLines(m.menuColumn(m.width, true), m.height-bottomBarRows)
	if len(lines) == 0 {
		return m.bottomBar()
	}
	return joinLines(clipLines(lines, m.width)) + "\n" + m.bottomBar()
}

// viewSplit renders the menu column on the left and the preview panel on the
// right, both filling the height above the bottom bar.
func (m *Model) viewSplit(previewW int) string {
	menuW := m.width - previewW
	height := max(m.height-bottomBarRows, 1)
	lines := m.menuColumn(menuW, false)
	if len(lines) > height {
		lines = lines[:height]
	}
	left := make([]string, height)
	for i := range left {
		var l textLine
		if i < len(lines) {
			l = lines[i].clip(menuW)
		}
		left[i] = fitCell(l.render(), menuW)
	}
	right := m.renderPreviewPanel(m.activePreview(), previewW, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(left, "\n"), right) + "\n" + m.bottomBar()
}

// itemLine renders one entry with its selection bar, padded to width so the
// highlight spans the column.
func itemLine(label string, selected bool, width int) textLine {
	l := textLine{text: "▌ " + label, style: styles.Item, marker: styles.ItemIndicator}
	if selected {
		l.style, l.marker = styles.SelectedItem, styles.SelectedItemIndicator
	}
	if pad := width - runewidth.StringWidth(l.text); width > 0 && pad > 0 {
		l.text += strings.Repeat(" ", pad)
	}
	return l
}

// levelLines renders the visible items of l. List levels add their column
// header above the rows and the page status below them.
func (m *Model) levelLines(l *level, width int) []textLine {
	if l == nil {
		return nil
	}
	v := listFor(l)
	var lines []textLine
	if v != nil && v.header != "" && len(l.Items) > 0 {
		lines = append(lines, textLine{text: "  " + v.header, style: styles.TableHeader})
	}
	switch {
	case v != nil && len(l.Items) == 0:
		lines = append(lines, listPlaceholder(v))
	case len(l.Items) == 0 && l.Filter() != "":
		lines = append(lines, textLine{text: fmt.Sprintf("No matches for %q", l.Filter()), style: styles.Info})
	case len(l.Items) == 0:
		lines = append(lines, textLine{text: "(no entries)", style: styles.Info})
	default:
		start, end := l.Window(m.maxVisibleItems())
		for i := start; i < end; i++ {
			lines = append(lines, itemLine(l.Items[i].Label, i == l.Cursor, width))
		}
	}
	if v != nil {
		if status := listStatusLine(v); strings.Trim(status, " •") != "" {
			lines = append(lines, textLine{text: status, style: styles.Help})
		}
	}
	return lines
}

func listPlaceholder(v *listView) textLine {
	switch v.screen.Status() {
	case listing.StatusLoading:
		return textLine{text: fmt.Sprintf("Loading %s…", v.desc.Name), style: styles.Loading}
	case listing.StatusError:
		return textLine{text: v.screen.ErrorMessage() + " (ctrl+r to retry)", style: styles.Error}
	}
	return textLine{text: v.screen.EmptyMessage(), style: styles.Placeholder}
}

// maxVisibleItems is the number of item rows that fit next to the header,
// the list chrome, messages and the inline preview. -1 means unlimited.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := bottomBarRows + len(m.titleLines())
	if listFor(m.currentLevel()) != nil {
		used += 2
	}
	if m.currentInfo() != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	if m.previewWidth() == 0 {
		used += m.inlinePreviewRows()
	}
	return max(m.height-used, 1)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport(m.currentLevel())
	return nil
}

// handleMouseMsg scrolls the side preview panel with the mouse wheel.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok || m.previewWidth() == 0 {
		return nil
	}
	p := m.activePreview()
	if p == nil || p.loading {
		return nil
	}
	rows := previewBodyRows(max(m.height-bottomBarRows, 1))
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		p.scroll(-previewScrollStep, rows)
	case tea.MouseButtonWheelDown:
		p.scroll(previewScrollStep, rows)
	}
	return nil
}
