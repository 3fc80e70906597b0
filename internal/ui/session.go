package ui

import (
	"context"
	"fmt"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/form"
	tea "github.com/charmbracelet/bubbletea"
)

type sessionRestoredMsg struct {
	user fleet.User
	err  error
}

type signedInMsg struct {
	user fleet.User
	err  error
}

func newSignInForm(email string) *form.Form {
	f := form.New("Sign in", []form.Field{
		{Name: "email", Label: "Email", Kind: form.Text, Required: true, Placeholder: "you@example.com"},
		{Name: "password", Label: "Password", Kind: form.Secret, Required: true},
	}, form.Options{Submit: "sign in"})
	if email != "" {
		f.SetValue("email", email)
	}
	return f
}

// restoreSessionCmd asks the backend who owns the stored cookie, if any.
func restoreSessionCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		user, err := client.Me(context.Background())
		return sessionRestoredMsg{user: user, err: err}
	}
}

func (m *Model) handleSessionRestoredMsg(msg tea.Msg) tea.Cmd {
	restored, ok := msg.(sessionRestoredMsg)
	if !ok {
		return nil
	}
	m.restoring = false
	if m.mode != ModeSignIn || m.signingIn {
		return nil
	}
	if restored.err != nil {
		if api.KindOf(restored.err) != api.KindUnauthorized {
			logging.Error(restored.err)
			m.signIn.SetError(userMessage(restored.err, "reach the server"))
		}
		return nil
	}
	return m.enterSession(restored.user)
}

func (m *Model) handleSignInKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.signingIn {
		return nil
	}
	cmd, done, cancel := m.signIn.Update(msg)
	if cancel {
		return tea.Quit
	}
	if !done {
		return cmd
	}
	m.signingIn = true
	email := m.signIn.Value("email")
	password := m.signIn.Value("password")
	events.Session.SignIn(email)
	client := m.client
	return tea.Batch(cmd, func() tea.Msg {
		if client == nil {
			return signedInMsg{err: fmt.Errorf("sign in: no api client")}
		}
		user, err := client.Login(context.Background(), email, password)
		return signedInMsg{user: user, err: err}
	})
}

func (m *Model) handleSignedInMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(signedInMsg)
	if !ok {
		return nil
	}
	m.signingIn = false
	if result.err != nil {
		switch api.KindOf(result.err) {
		case api.KindUnauthorized:
			m.signIn.SetError("Invalid email or password")
		case api.KindValidation:
			m.signIn.SetError("Check your inputs")
			if fields := api.FieldErrors(result.err); len(fields) > 0 {
				m.signIn.SetFieldErrors(fields)
			}
		default:
			logging.Error(result.err)
			m.signIn.SetError(userMessage(result.err, "reach the server"))
		}
		return nil
	}
	return m.enterSession(result.user)
}

// enterSession switches to the main menu of user.
func (m *Model) enterSession(user fleet.User) tea.Cmd {
	m.session.SetUser(user)
	events.Session.SignedIn(user.ID, user.Role.String())
	m.signIn = newSignInForm(m.email)
	m.mode = ModeMenu
	m.errMsg = ""
	m.stack = []*level{m.rootLevel()}
	return m.applyRootMenuOverride(m.rootMenu)
}

// dropSession forgets the user and every screen opened on their behalf.
func (m *Model) dropSession() {
	m.session.Clear()
	m.upcoming.SetEntries(nil, 0)
	if m.client != nil {
		m.client.ClearSession()
	}
	m.closeAllLists()
	m.stack = []*level{m.rootLevel()}
	m.preview = make(map[string]*previewData)
	m.record = nil
	m.stopLoading()
	m.notFound = ""
	m.errMsg = ""
	m.forceClearInfo()
	m.signIn = newSignInForm(m.email)
	m.signingIn = false
	m.mode = ModeSignIn
}

// expireSession handles a 401: the session is dropped and the sign-in form
// explains why.
func (m *Model) expireSession(message string) tea.Cmd {
	events.Session.Expired()
	m.dropSession()
	m.signIn.SetError(message)
	return nil
}

func (m *Model) handleSignedOutMsg(msg tea.Msg) tea.Cmd {
	out, ok := msg.(menu.SignedOutMsg)
	if !ok {
		return nil
	}
	if out.Err != nil {
		logging.Error(out.Err)
	}
	m.dropSession()
	m.setInfo("Signed out.")
	return nil
}
