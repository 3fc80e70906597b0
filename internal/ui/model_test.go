package ui

import (
	"errors"
	"testing"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModelStartsOnSignIn(t *testing.T) {
	m := newTestModel()
	if m.Mode() != ModeSignIn {
		t.Fatalf("expected sign-in mode, got %s", m.Mode())
	}
	if len(m.currentLevel().Items) != 0 {
		t.Fatalf("expected no menu entries before sign-in, got %#v", m.currentLevel().Items)
	}
	if m.pageSize != 15 {
		t.Fatalf("expected default page size 15, got %d", m.pageSize)
	}
}

func TestMenuHeaderRootLevel(t *testing.T) {
	m := newTestModel()
	if got := m.menuHeader(); got != defaultRootTitle {
		t.Fatalf("expected %q, got %q", defaultRootTitle, got)
	}
}

func TestMenuHeaderNestedLevels(t *testing.T) {
	m := newTestModel()
	m.stack = append(m.stack, newLevel("dashboard", "Dashboard", nil, nil))
	if got := m.menuHeader(); got != "dashboard" {
		t.Fatalf("expected %q, got %q", "dashboard", got)
	}
	m.stack = append(m.stack, newLevel("dashboard:soon", "Soon", nil, nil))
	if got := m.menuHeader(); got != "dashboard→soon" {
		t.Fatalf("expected %q, got %q", "dashboard→soon", got)
	}
}

func TestMenuHeaderUsesListTitle(t *testing.T) {
	m := newTestModel()
	lvl := newLevel("list:reservations:3", "Reservations of Skoda Octavia", nil, nil)
	lvl.Data = &listView{}
	m.stack = append(m.stack, lvl)
	if got := m.menuHeader(); got != "reservations of skoda octavia" {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestEnterSessionAppliesRootMenu(t *testing.T) {
	m := NewModel(Options{StaticCursor: true, RootMenu: "account"})
	cmd := m.enterSession(fleet.User{ID: 1, Role: fleet.RoleWorker})
	if m.Mode() != ModeMenu {
		t.Fatalf("expected menu mode, got %s", m.Mode())
	}
	if cmd == nil || m.rootMenuID != "account" {
		t.Fatalf("expected account root menu to load")
	}
	m.stack = append(m.stack, newLevel("account:sign-out", "Sign out", nil, nil))
	if header := m.menuHeader(); header != "account→sign out" {
		t.Fatalf("expected breadcrumb with root, got %q", header)
	}
}

func TestUpdateRoutesPanicToFallback(t *testing.T) {
	m := signedInModel(fleet.RoleWorker)
	h := NewHarness(m)
	h.Send(command.PanicMsg{ID: "loader", Value: "boom"})
	if h.Model().Mode() != ModeFallback {
		t.Fatalf("expected fallback mode, got %s", h.Model().Mode())
	}
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	if h.Model().Mode() != ModeMenu {
		t.Fatalf("expected menu after leaving fallback, got %s", h.Model().Mode())
	}
}

func TestGuardedCommandPanicBecomesFallback(t *testing.T) {
	m := signedInModel(fleet.RoleWorker)
	cmd := m.finishUpdate([]tea.Cmd{func() tea.Msg { panic("kaboom") }})
	msg := cmd()
	if _, ok := msg.(command.PanicMsg); !ok {
		t.Fatalf("expected PanicMsg, got %T", msg)
	}
	m.Update(msg)
	if m.Mode() != ModeFallback {
		t.Fatalf("expected fallback mode, got %s", m.Mode())
	}
}

func TestActionResultErrorsUseUserMessages(t *testing.T) {
	m := signedInModel(fleet.RoleWorker)
	m.startLoading("dashboard", "Dashboard")
	m.handleActionResultMsg(menu.ActionResult{Err: &api.Error{Kind: api.KindServer, Status: 500}})
	if m.loading {
		t.Fatalf("expected loading cleared")
	}
	if m.errMsg != "Failed to complete the action" {
		t.Fatalf("unexpected error %q", m.errMsg)
	}

	m.handleActionResultMsg(menu.ActionResult{Err: &api.Error{Kind: api.KindUnauthorized, Status: 401}})
	if m.Mode() != ModeSignIn {
		t.Fatalf("expected sign-in after 401, got %s", m.Mode())
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthorized", &api.Error{Kind: api.KindUnauthorized}, sessionExpiredMessage},
		{"forbidden", &api.Error{Kind: api.KindForbidden}, "Permission denied"},
		{"conflict with detail", &api.Error{Kind: api.KindConflict, Message: "Vehicle is already reserved"}, "Vehicle is already reserved"},
		{"conflict without detail", &api.Error{Kind: api.KindConflict}, defaultConflict},
		{"validation", &api.Error{Kind: api.KindValidation}, "Check your inputs"},
		{"not found", &api.Error{Kind: api.KindNotFound}, "Not found"},
		{"transport", &api.Error{Kind: api.KindTransport}, "Failed to save"},
		{"server", &api.Error{Kind: api.KindServer}, "Failed to save"},
		{"other", errors.New("disk full"), "Failed to save: disk full"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := userMessage(tc.err, "save"); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSignedOutReturnsToSignIn(t *testing.T) {
	m := signedInModel(fleet.RoleManager)
	m.handleSignedOutMsg(menu.SignedOutMsg{})
	if m.Mode() != ModeSignIn || m.session.SignedIn() {
		t.Fatalf("expected signed out state, got %s", m.Mode())
	}
	if m.currentInfo() != "Signed out." {
		t.Fatalf("expected sign-out toast, got %q", m.currentInfo())
	}
}
