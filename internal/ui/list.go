package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/debounce"
	"github.com/PawelWisn/Fleet-Flow/internal/format/table"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/PawelWisn/Fleet-Flow/internal/paging"
	"github.com/PawelWisn/Fleet-Flow/internal/resource"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/command"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/listing"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// listView is the Data of a level showing a resource list screen.
type listView struct {
	desc   resource.Descriptor
	screen *listing.Screen
	header string
}

// rowContext is the Data of the row actions level opened from a list.
type rowContext struct {
	list *listView
	row  listing.Row
}

func (m *Model) env() resource.Env {
	return resource.Env{
		Client:      m.client,
		Session:     m.session,
		PageSize:    m.pageSize,
		SearchDelay: m.searchDelay,
	}
}

func listFor(l *level) *listView {
	if l == nil {
		return nil
	}
	v, _ := l.Data.(*listView)
	return v
}

func (m *Model) currentList() *listView {
	return listFor(m.currentLevel())
}

// openList pushes a list screen for desc and issues its first query. Preset
// filters replace the initial query rather than adding to it.
func (m *Model) openList(desc resource.Descriptor, title string, scope, filters map[string]string) tea.Cmd {
	if !desc.CanView(m.session) {
		events.Session.Forbidden(desc.Name)
		m.errMsg = "Permission denied"
		return nil
	}
	if title == "" {
		title = desc.Title
	}
	screen := desc.NewScreen(m.env(), scope)
	v := &listView{desc: desc, screen: screen}
	lvl := newLevel(fmt.Sprintf("list:%s:%d", desc.Name, screen.Instance()), title, nil, nil)
	lvl.Remote = true
	lvl.Data = v
	m.pushLevel(lvl)
	events.UI.Screen(lvl.ID)
	var cmd tea.Cmd
	for k, val := range filters {
		if c := screen.SetFilter(k, val); c != nil {
			cmd = c
		}
	}
	if cmd == nil {
		cmd = screen.Load()
	}
	return cmd
}

// syncList copies the screen's rows into the level as aligned table lines.
func (m *Model) syncList(l *level, resetCursor bool) tea.Cmd {
	v := listFor(l)
	if v == nil {
		return nil
	}
	rows := v.screen.Rows()
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = row.Cells
		if len(cells[i]) == 0 {
			cells[i] = []string{row.Label}
		}
	}
	columns := v.desc.Columns
	if len(columns) == 0 {
		columns = []table.Column{{Title: v.desc.Singular}}
	}
	header, body := table.Render(columns, cells)
	v.header = header
	items := make([]menu.Item, len(rows))
	for i, row := range rows {
		items[i] = menu.Item{ID: strconv.Itoa(row.ID), Label: body[i]}
	}
	if resetCursor {
		l.Cursor = 0
		l.ViewportOffset = 0
	}
	l.UpdateItems(items)
	if l == m.currentLevel() {
		m.syncViewport(l)
		return m.ensurePreviewForLevel(l)
	}
	return nil
}

func (m *Model) findList(instance uint64) *level {
	for _, lvl := range m.stack {
		if v := listFor(lvl); v != nil && v.screen.Instance() == instance {
			return lvl
		}
	}
	return nil
}

func (m *Model) closeAllLists() {
	for _, lvl := range m.stack {
		if v := listFor(lvl); v != nil {
			v.screen.Close()
		}
	}
}

func (m *Model) handleListLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(listing.LoadedMsg)
	if !ok {
		return nil
	}
	lvl := m.findList(loaded.Target())
	if lvl == nil {
		return nil
	}
	v := listFor(lvl)
	stale := loaded.Seq != v.screen.Seq()
	pageBefore := v.screen.Pager().Page()
	next := v.screen.Apply(loaded)
	if stale {
		return nil
	}
	if loaded.Err != nil {
		if cmd, handled := m.escalate(loaded.Err); handled {
			return cmd
		}
		return nil
	}
	cmd := m.syncList(lvl, v.screen.Pager().Page() != pageBefore)
	return tea.Batch(next, cmd)
}

func (m *Model) handleDeletedMsg(msg tea.Msg) tea.Cmd {
	deleted, ok := msg.(listing.DeletedMsg)
	if !ok {
		return nil
	}
	lvl := m.findList(deleted.Target())
	if lvl == nil {
		return nil
	}
	v := listFor(lvl)
	cmd := v.screen.HandleDeleted(deleted)
	if deleted.Err != nil {
		if c, handled := m.escalate(deleted.Err); handled {
			return c
		}
		m.errMsg = userMessage(deleted.Err, "delete "+v.desc.Singular)
		events.Action.Error(deleted.Err)
		return nil
	}
	m.clearPreview(lvl.ID)
	info := fmt.Sprintf("Deleted %s", strings.TrimSpace(deleted.Label))
	events.Action.Success(info)
	m.setInfo(info)
	return cmd
}

// handleDebounceMsg hands a settled timer to its owner: a list screen in the
// stack or a selector of the open form.
func (m *Model) handleDebounceMsg(msg tea.Msg) tea.Cmd {
	settled, ok := msg.(debounce.Msg)
	if !ok {
		return nil
	}
	for _, lvl := range m.stack {
		v := listFor(lvl)
		if v == nil {
			continue
		}
		if owned, cmd := v.screen.HandleDebounce(settled); owned {
			return cmd
		}
	}
	if m.record != nil {
		cmd, _, _ := m.record.form.Update(settled)
		return cmd
	}
	return nil
}

// searchChanged forwards the typed filter of a list level to its screen.
func (m *Model) searchChanged(l *level) tea.Cmd {
	v := listFor(l)
	if v == nil {
		return nil
	}
	cmd := v.screen.SetSearch(l.Filter())
	if v.screen.LocalFilter() {
		return tea.Batch(cmd, m.syncList(l, true))
	}
	return cmd
}

func (m *Model) handleListKey(v *listView, msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.currentLevel()
	switch {
	case key.Matches(msg, m.keys.PrevPage):
		return true, v.screen.PrevPage()
	case key.Matches(msg, m.keys.NextPage):
		return true, v.screen.NextPage()
	case key.Matches(msg, m.keys.PageSize):
		return true, v.screen.SetPageSize(paging.NextSize(v.screen.Pager().Size()))
	case key.Matches(msg, m.keys.Status):
		if v.desc.FilterKey == "" {
			return true, nil
		}
		next := nextFilterValue(v.desc.FilterValues, v.screen.Filter(v.desc.FilterKey))
		return true, v.screen.SetFilter(v.desc.FilterKey, next)
	case key.Matches(msg, m.keys.Retry):
		if v.screen.Status() != listing.StatusError {
			return true, nil
		}
		m.errMsg = ""
		return true, v.screen.Retry()
	case key.Matches(msg, m.keys.New):
		return true, m.openForm(v.desc, 0)
	case key.Matches(msg, m.keys.Delete):
		row, ok := m.highlightedRow(current, v)
		if !ok {
			return true, nil
		}
		m.requestDelete(v, row)
		return true, nil
	case key.Matches(msg, m.keys.Enter):
		row, ok := m.highlightedRow(current, v)
		if !ok {
			return true, nil
		}
		m.openRowActions(v, row)
		return true, nil
	}
	return false, nil
}

func nextFilterValue(values []string, current string) string {
	if current == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	for i, v := range values {
		if v == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return ""
}

func (m *Model) highlightedRow(l *level, v *listView) (listing.Row, bool) {
	if l == nil || l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return listing.Row{}, false
	}
	id, err := strconv.Atoi(l.Items[l.Cursor].ID)
	if err != nil {
		return listing.Row{}, false
	}
	return v.screen.Row(id)
}

func (m *Model) requestDelete(v *listView, row listing.Row) {
	if !v.desc.CanManage(m.session) {
		events.Session.Forbidden(v.desc.Name)
		m.errMsg = "Permission denied"
		return
	}
	if !v.screen.RequestDelete(row) {
		return
	}
	m.errMsg = ""
	m.forceClearInfo()
	m.mode = ModeConfirm
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	v := m.currentList()
	if v == nil {
		m.mode = ModeMenu
		return nil
	}
	switch {
	case msg.String() == "ctrl+c":
		return tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		m.mode = ModeMenu
		return v.screen.ConfirmDelete()
	case key.Matches(msg, m.keys.Cancel):
		v.screen.CancelDelete()
		m.mode = ModeMenu
	}
	return nil
}

// openRowActions pushes the actions the session may run on row.
func (m *Model) openRowActions(v *listView, row listing.Row) {
	actions := v.desc.RowActions(m.session)
	if len(actions) == 0 {
		m.setInfo("No actions available.")
		return
	}
	items := make([]menu.Item, len(actions))
	for i, a := range actions {
		items[i] = menu.Item{ID: string(a), Label: a.Label()}
	}
	lvl := newLevel("row:"+v.desc.Name, strings.TrimSpace(row.Label), items, nil)
	lvl.Data = &rowContext{list: v, row: row}
	m.pushLevel(lvl)
}

func (m *Model) runRowAction(rc *rowContext, item menu.Item) tea.Cmd {
	action := resource.Action(item.ID)
	v := rc.list
	m.popLevel()
	switch action {
	case resource.ActionEdit:
		return m.openForm(v.desc, rc.row.ID)
	case resource.ActionDelete:
		m.requestDelete(v, rc.row)
		return nil
	case resource.ActionReservations, resource.ActionRefuels:
		target, scope, ok := v.desc.Scoped(action, rc.row.ID)
		if !ok {
			return nil
		}
		title := fmt.Sprintf("%s of %s", target.Title, strings.TrimSpace(rc.row.Label))
		return m.openList(target, title, scope, nil)
	case resource.ActionDownload, resource.ActionReport:
		ctx := m.menuContext()
		ctx.Record = rc.row.Record
		id := fmt.Sprintf("%s:%s", v.desc.Name, action)
		m.startLoading(id, item.Label)
		return m.bus.Execute(ctx, command.Request{ID: id, Label: item.Label, Handler: menu.DownloadAction, Item: item})
	}
	m.setInfo(fmt.Sprintf("Selected %s (no action defined yet)", item.Label))
	return nil
}

// listStatusLine describes the page position, filters and pending search.
func listStatusLine(v *listView) string {
	pager := v.screen.Pager()
	parts := []string{pager.Range(), pager.Summary()}
	if window := paging.FormatWindow(paging.Window(pager.Page(), pager.TotalPages(), 2), pager.Page()); window != "" && pager.TotalPages() > 1 {
		parts = append(parts, window)
	}
	if summary := v.screen.FilterSummary(); summary != "" {
		parts = append(parts, summary)
	}
	if v.screen.SearchPending() {
		parts = append(parts, "searching…")
	}
	return strings.Join(parts, " • ")
}
