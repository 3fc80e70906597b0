package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	sessionExpiredMessage = "Your session has expired. Please sign in again."
	defaultConflict       = "This change conflicts with existing data."
)

// escalate handles the errors that leave the current screen. It reports
// whether err was consumed.
func (m *Model) escalate(err error) (tea.Cmd, bool) {
	if api.KindOf(err) != api.KindUnauthorized {
		return nil, false
	}
	return m.expireSession(sessionExpiredMessage), true
}

// userMessage turns err into the text shown to the user. action completes
// "Failed to ..." for transport and server errors.
func userMessage(err error, action string) string {
	if err == nil {
		return ""
	}
	switch api.KindOf(err) {
	case api.KindUnauthorized:
		return sessionExpiredMessage
	case api.KindForbidden:
		return "Permission denied"
	case api.KindConflict:
		return conflictMessage(err)
	case api.KindValidation:
		return "Check your inputs"
	case api.KindNotFound:
		return "Not found"
	case api.KindTransport, api.KindServer:
		return "Failed to " + action
	}
	logging.Error(err)
	return fmt.Sprintf("Failed to %s: %v", action, err)
}

// conflictMessage prefers the backend's own explanation.
func conflictMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return defaultConflict
}
