package ui

import (
	"fmt"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/PawelWisn/Fleet-Flow/internal/resource"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) currentLevel() *level {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Model) findLevelByID(id string) *level {
	for _, lvl := range m.stack {
		if lvl.ID == id {
			return lvl
		}
	}
	return nil
}

// pushLevel opens l above the current level, remembering where the parent's
// cursor was.
func (m *Model) pushLevel(l *level) {
	if parent := m.currentLevel(); parent != nil {
		parent.LastCursor = parent.Cursor
	}
	m.syncViewport(l)
	m.stack = append(m.stack, l)
	m.errMsg = ""
	m.forceClearInfo()
}

// popLevel removes the top level, closing its list screen, and puts the
// parent cursor back on the entry that opened it.
func (m *Model) popLevel() {
	if len(m.stack) <= 1 {
		return
	}
	top := m.currentLevel()
	if v := listFor(top); v != nil {
		v.screen.Close()
	}
	m.clearPreview(top.ID)
	m.stack = m.stack[:len(m.stack)-1]
	parent := m.currentLevel()
	switch {
	case parent.LastCursor >= 0 && parent.LastCursor < len(parent.Items):
		parent.Cursor = parent.LastCursor
	case parent.IndexOf(top.ID) >= 0:
		parent.Cursor = parent.IndexOf(top.ID)
	}
	parent.LastCursor = -1
	m.syncViewport(parent)
}

func (m *Model) handleEscapeKey() tea.Cmd {
	if len(m.stack) <= 1 {
		return tea.Quit
	}
	m.popLevel()
	return m.ensurePreviewForCurrentLevel()
}

// handleEnterKey activates the highlighted entry: a row action, a list, a
// submenu loader or a menu action, in that order.
func (m *Model) handleEnterKey() tea.Cmd {
	current := m.currentLevel()
	if m.loading || current == nil || len(current.Items) == 0 {
		return nil
	}
	item := current.Items[current.Cursor]
	events.UI.Enter(current.ID, item.ID, item.Label, current.Filter())
	m.clearFilter(current)
	if rc, ok := current.Data.(*rowContext); ok {
		return m.runRowAction(rc, item)
	}
	node := current.Node
	if node == nil {
		node, _ = m.registry.Find(current.ID)
	}
	if node == nil {
		m.setInfo(fmt.Sprintf("Selected %s (no action defined yet)", item.Label))
		return nil
	}
	handler := node.Action
	id := node.ID
	if child, ok := node.Children[item.ID]; ok {
		switch {
		case child.Resource != "":
			desc, _ := resource.Find(child.Resource)
			return m.openList(desc, "", nil, nil)
		case child.Loader != nil:
			current.LastCursor = current.Cursor
			m.startLoading(child.ID, item.Label)
			return m.loadMenuCmd(child.ID, item.Label, child.Loader)
		case child.Action != nil:
			handler, id = child.Action, child.ID
		}
	}
	if handler == nil {
		m.setInfo(fmt.Sprintf("Selected %s (no action defined yet)", item.Label))
		return nil
	}
	m.startLoading(id, item.Label)
	return m.bus.Execute(m.menuContext(), command.Request{ID: id, Label: item.Label, Handler: handler, Item: item})
}

func (m *Model) startLoading(id, label string) {
	m.loading = true
	m.pendingID = id
	m.pendingLabel = label
	m.errMsg = ""
	m.forceClearInfo()
}

func (m *Model) stopLoading() {
	m.loading = false
	m.pendingID = ""
	m.pendingLabel = ""
}

// cursorKeys move the cursor of the current level.
var cursorKeys = map[string]func(l *level, rows int) bool{
	"up":     func(l *level, _ int) bool { return l.Step(-1) },
	"down":   func(l *level, _ int) bool { return l.Step(1) },
	"pgup":   func(l *level, rows int) bool { return l.PageUp(rows) },
	"pgdown": func(l *level, rows int) bool { return l.PageDown(rows) },
	"home":   func(l *level, _ int) bool { return l.Home() },
	"end":    func(l *level, _ int) bool { return l.End() },
}

func (m *Model) moveCursor(move func(l *level, rows int) bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	if move(current, m.maxVisibleItems()) {
		events.UI.Cursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

func (m *Model) syncViewport(l *level) {
	if l != nil {
		l.Follow(m.maxVisibleItems())
	}
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch m.mode {
	case ModeSignIn:
		return m.handleSignInKey(keyMsg)
	case ModeForm:
		return m.handleRecordFormMsg(keyMsg)
	case ModeConfirm:
		return m.handleConfirmKey(keyMsg)
	case ModeNotFound:
		return m.handleNotFoundKey(keyMsg)
	case ModeFallback:
		return m.handleFallbackKey(keyMsg)
	}
	key := keyMsg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if v := m.currentList(); v != nil && !m.loading {
		if handled, cmd := m.handleListKey(v, keyMsg); handled {
			return cmd
		}
	}
	if handled, cmd := m.handleTextInput(keyMsg); handled {
		return cmd
	}
	switch key {
	case "esc":
		m.errMsg = ""
		m.forceClearInfo()
		return m.handleEscapeKey()
	case "enter":
		return m.handleEnterKey()
	}
	move, ok := cursorKeys[key]
	if !ok {
		return nil
	}
	m.moveCursor(move)
	return m.ensurePreviewForCurrentLevel()
}

func (m *Model) handleFallbackKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "enter", "esc":
		m.leaveFallback()
	}
	return nil
}

func (m *Model) handleCategoryLoadedMsg(msg tea.Msg) tea.Cmd {
	update, ok := msg.(categoryLoadedMsg)
	if !ok || update.id != m.pendingID {
		return nil
	}
	m.stopLoading()
	if update.err != nil {
		if cmd, handled := m.escalate(update.err); handled {
			return cmd
		}
		m.errMsg = userMessage(update.err, "load "+strings.ToLower(update.title))
		return nil
	}
	if current := m.currentLevel(); current != nil && current.ID == update.id {
		current.UpdateItems(update.items)
		m.syncViewport(current)
		m.errMsg = ""
	} else {
		node, _ := m.registry.Find(update.id)
		m.pushLevel(newLevel(update.id, update.title, update.items, node))
	}
	switch {
	case len(update.items) == 0:
		m.setInfo("No entries found.")
	case m.infoMsg != "":
		m.clearInfo()
	}
	return nil
}

// applyRootMenuOverride starts the session on a submenu or a list screen
// instead of the main menu.
func (m *Model) applyRootMenuOverride(requested string) tea.Cmd {
	m.rootMenuID = ""
	m.rootTitle = defaultRootTitle
	requested = strings.TrimSpace(requested)
	if requested == "" || m.registry == nil {
		return nil
	}
	id := strings.ToLower(requested)
	node, ok := m.registry.Find(id)
	if !ok || !menu.Visible(id, m.session) {
		m.errMsg = fmt.Sprintf("Unknown root menu %q", requested)
		return nil
	}
	m.rootMenuID = node.ID
	if node.Resource != "" {
		desc, _ := resource.Find(node.Resource)
		m.stack = nil
		m.rootTitle = strings.ToLower(desc.Title)
		return m.openList(desc, "", nil, nil)
	}
	title := strings.TrimSpace(headerSegmentCleaner.Replace(node.ID))
	m.stack = []*level{newLevel(node.ID, title, nil, node)}
	m.rootTitle = title
	if node.Loader == nil {
		return nil
	}
	m.startLoading(node.ID, title)
	return m.loadMenuCmd(node.ID, title, node.Loader)
}

func (m *Model) handleOpenListMsg(msg tea.Msg) tea.Cmd {
	open, ok := msg.(menu.OpenListMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	desc, found := resource.Find(open.Resource)
	if !found {
		err := fmt.Errorf("unknown resource %q", open.Resource)
		logging.Error(err)
		m.errMsg = err.Error()
		return nil
	}
	return m.openList(desc, open.Title, open.Scope, open.Filters)
}
