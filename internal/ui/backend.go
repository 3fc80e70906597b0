package ui

import (
	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/backend"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
)

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

// nextBackendEvent blocks on the watcher until it publishes or shuts down.
func nextBackendEvent(w *backend.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if evt, ok := <-w.Events(); ok {
			return backendEventMsg{event: evt}
		}
		return backendDoneMsg{}
	}
}

// connectionHealth remembers which polled sources are failing. Expired
// sessions are not connection problems and are handled separately.
type connectionHealth struct {
	failing map[backend.Kind]error
	last    string
}

func (c *connectionHealth) record(kind backend.Kind, err error) {
	if c.failing == nil {
		c.failing = map[backend.Kind]error{}
	}
	if err == nil || api.KindOf(err) == api.KindUnauthorized {
		delete(c.failing, kind)
	} else {
		c.failing[kind] = err
		c.last = err.Error()
	}
	if len(c.failing) == 0 {
		c.last = ""
	}
}

// problem returns the message of the latest failure while any source fails.
func (c *connectionHealth) problem() (string, bool) {
	if len(c.failing) == 0 {
		return "", false
	}
	if c.last != "" {
		return c.last, true
	}
	for _, err := range c.failing {
		return err.Error(), true
	}
	return "", false
}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	evt, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	return tea.Batch(m.applyBackendEvent(evt.event), nextBackendEvent(m.backend))
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	m.health.record(evt.Kind, evt.Err)
	res := m.dispatcher.Handle(evt)
	switch {
	case res.SessionExpired:
		return m.expireSession(sessionExpiredMessage)
	case res.SessionUpdated:
		if root := m.findLevelByID("root"); root != nil {
			root.UpdateItems(menu.RootItems(m.session))
			m.syncViewport(root)
		}
	}
	return nil
}
