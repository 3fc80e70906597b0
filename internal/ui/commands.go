package ui

import (
	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
)

// categoryLoadedMsg delivers the entries of a submenu loaded in the background.
type categoryLoadedMsg struct {
	id    string
	title string
	items []menu.Item
	err   error
}

// menuContext is what menu loaders and actions see of the running session.
func (m *Model) menuContext() menu.Context {
	return menu.Context{
		Client:        m.client,
		Session:       m.session,
		Upcoming:      m.upcoming.Entries(),
		UpcomingTotal: m.upcoming.Total(),
		DownloadDir:   m.downloadDir,
	}
}

func (m *Model) loadMenuCmd(id, title string, loader menu.Loader) tea.Cmd {
	ctx := m.menuContext()
	return func() tea.Msg {
		msg := categoryLoadedMsg{id: id, title: title}
		msg.items, msg.err = loader(ctx)
		if msg.err != nil {
			logging.Error(msg.err)
		}
		return msg
	}
}

// handleActionResultMsg reports the outcome of a menu action in the status
// bar. Session and permission failures are escalated first.
func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(menu.ActionResult)
	if !ok {
		return nil
	}
	m.stopLoading()
	m.forceClearInfo()
	if err := result.Err; err != nil {
		events.Action.Error(err)
		if cmd, handled := m.escalate(err); handled {
			return cmd
		}
		m.errMsg = userMessage(err, "complete the action")
		return nil
	}
	events.Action.Success(result.Info)
	if result.Info != "" {
		m.setInfo(result.Info)
	}
	return nil
}
