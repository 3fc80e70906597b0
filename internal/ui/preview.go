package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/resource"
	"github.com/PawelWisn/Fleet-Flow/internal/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	previewInlineRows = 20
	previewMinWidth   = 40
	previewWidthShare = 0.6
	previewScrollStep = 3
)

var (
	previewBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	previewScroll = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// previewData is the detail of the highlighted row of one list level.
type previewData struct {
	target  string
	label   string
	lines   []string
	err     string
	loading bool
	seq     int
	offset  int
	rawANSI bool
}

type previewLoadedMsg struct {
	levelID string
	target  string
	seq     int
	detail  resource.Detail
	err     error
}

func (p *previewData) visible() bool {
	return p != nil && (p.err != "" || len(p.lines) > 0 || p.loading)
}

func (p *previewData) name() string {
	for _, s := range []string{p.label, p.target} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return "(unknown)"
}

// scroll moves the first shown line by delta, keeping rows lines in view.
func (p *previewData) scroll(delta, rows int) {
	p.offset = clampInt(p.offset+delta, 0, max(len(p.lines)-rows, 0))
}

// window returns the lines shown in rows rows and a position marker such as
// "12/30".
func (p *previewData) window(rows int) ([]string, string) {
	p.scroll(0, rows)
	end := min(p.offset+rows, len(p.lines))
	return p.lines[p.offset:end], fmt.Sprintf("%d/%d", end, len(p.lines))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func levelHasPreview(l *level) bool {
	return listFor(l) != nil
}

func (m *Model) activePreview() *previewData {
	if current := m.currentLevel(); current != nil {
		return m.preview[current.ID]
	}
	return nil
}

func (m *Model) clearPreview(levelID string) {
	delete(m.preview, levelID)
}

func (m *Model) ensurePreviewForCurrentLevel() tea.Cmd {
	return m.ensurePreviewForLevel(m.currentLevel())
}

// ensurePreviewForLevel loads the full record behind the highlighted row of a
// list level. Every request gets a new sequence number and only the newest
// response for a level is applied.
func (m *Model) ensurePreviewForLevel(l *level) tea.Cmd {
	v := listFor(l)
	if v == nil {
		return nil
	}
	if len(l.Items) == 0 {
		m.clearPreview(l.ID)
		return nil
	}
	l.Cursor = clampInt(l.Cursor, 0, len(l.Items)-1)
	item := l.Items[l.Cursor]
	id, err := strconv.Atoi(item.ID)
	if err != nil {
		m.clearPreview(l.ID)
		return nil
	}
	if existing := m.preview[l.ID]; existing != nil && existing.target == item.ID {
		return nil
	}
	label := item.Label
	if row, ok := v.screen.Row(id); ok {
		label = row.Label
	}
	m.previewSeq++
	req := previewLoadedMsg{levelID: l.ID, target: item.ID, seq: m.previewSeq}
	m.preview[l.ID] = &previewData{target: item.ID, label: strings.TrimSpace(label), loading: true, seq: req.seq}

	client, desc := m.client, v.desc
	return func() tea.Msg {
		if client == nil {
			req.err = fmt.Errorf("%s: no api client", desc.Name)
			return req
		}
		req.detail, req.err = desc.Detail(context.Background(), client, id)
		return req
	}
}

func (m *Model) handlePreviewLoadedMsg(msg tea.Msg) tea.Cmd {
	update, ok := msg.(previewLoadedMsg)
	if !ok {
		return nil
	}
	data := m.preview[update.levelID]
	if data == nil || data.seq != update.seq || data.target != update.target {
		return nil
	}
	data.loading = false
	data.offset = 0
	defer m.syncViewport(m.currentLevel())
	if update.err == nil {
		data.err = ""
		data.lines, data.rawANSI = previewLines(update.detail)
		return nil
	}
	data.lines, data.rawANSI = nil, false
	if cmd, handled := m.escalate(update.err); handled {
		return cmd
	}
	if api.KindOf(update.err) == api.KindNotFound {
		data.err = "No longer available"
		m.setInfo(fmt.Sprintf("%s no longer exists.", data.label))
		return nil
	}
	data.err = userMessage(update.err, "load details")
	return nil
}

// previewLines colours the status line of vehicles.
func previewLines(d resource.Detail) ([]string, bool) {
	v, ok := d.Record.(fleet.Vehicle)
	if !ok {
		return d.Lines, false
	}
	lines := append([]string(nil), d.Lines...)
	for i, line := range lines {
		if strings.HasPrefix(line, "Status: ") {
			lines[i] = "Status: " + theme.Availability(v.Availability)
		}
	}
	return lines, true
}

// inlinePreview renders the preview below the items when there is no room
// for the side panel.
func (m *Model) inlinePreview() []textLine {
	p := m.activePreview()
	if !p.visible() {
		return nil
	}
	title := "Preview: " + p.name()
	if p.loading && p.err == "" {
		title += " (loading…)"
	}
	lines := []textLine{{}, {text: title, style: styles.PreviewTitle}}
	switch {
	case p.err != "":
		return append(lines, textLine{text: p.err, style: styles.PreviewError})
	case len(p.lines) == 0:
		return append(lines, textLine{text: "Loading preview…", style: styles.PreviewBody})
	}
	shown, _ := p.window(previewInlineRows)
	for _, s := range shown {
		lines = append(lines, textLine{text: s, style: styles.PreviewBody, raw: p.rawANSI})
	}
	return lines
}

// inlinePreviewRows is the height inlinePreview takes, reserving room for a
// preview that is still to be requested.
func (m *Model) inlinePreviewRows() int {
	if n := len(m.inlinePreview()); n > 0 {
		return n
	}
	if levelHasPreview(m.currentLevel()) {
		return 3
	}
	return 0
}

// previewBodyRows is the number of record lines the side panel shows for a
// panel height.
func previewBodyRows(height int) int {
	return max(height-3, 1)
}

// renderPreviewPanel draws p in a rounded box of exactly width by height
// cells. The first row names the record and the scroll position.
func (m *Model) renderPreviewPanel(p *previewData, width, height int) string {
	innerW := max(width-2, 1)
	rows := previewBodyRows(height)
	title, position := "Preview", ""
	body := []string{"Loading…"}
	bodyStyle, raw := styles.PreviewBody, false
	if p != nil {
		title = "Preview: " + p.name()
		switch {
		case p.err != "":
			body, bodyStyle = []string{p.err}, styles.PreviewError
		case len(p.lines) > 0:
			body, position = p.window(rows)
			raw = p.rawANSI
		case !p.loading:
			body = nil
		}
	}

	out := make([]string, 0, rows+1)
	out = append(out, panelTitle(title, position, innerW))
	for i := 0; i < rows; i++ {
		cell := ""
		if i < len(body) {
			cell = body[i]
		}
		cell = fitCell(cell, innerW)
		if !raw {
			cell = renderWith(bodyStyle, cell)
		}
		out = append(out, cell)
	}
	return previewBorder.Render(strings.Join(out, "\n"))
}

func panelTitle(title, position string, width int) string {
	gap := width - lipgloss.Width(title) - lipgloss.Width(position)
	if gap < 1 {
		return renderWith(styles.PreviewTitle, fitCell(title, width))
	}
	return renderWith(styles.PreviewTitle, title) + strings.Repeat(" ", gap) + previewScroll.Render(position)
}
