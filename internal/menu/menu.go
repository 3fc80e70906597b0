package menu

import (
	"strings"
	"unicode"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/resource"
	"github.com/PawelWisn/Fleet-Flow/internal/state"
	tea "github.com/charmbracelet/bubbletea"
)

// Item represents a selectable menu entry.
type Item struct {
	ID    string
	Label string
}

// Context carries runtime data needed by loader functions.
type Context struct {
	Client        *api.Client
	Session       state.Session
	Upcoming      []fleet.Reservation
	UpcomingTotal int
	DownloadDir   string
	// Record is the row an action was invoked on, e.g. a fleet.Document.
	Record any
}

// Loader populates submenu entries on demand.
type Loader func(Context) ([]Item, error)

type Action func(Context, Item) tea.Cmd

// ActionResult communicates the outcome of executing a menu action.
type ActionResult struct {
	Info string
	Err  error
}

// OpenListMsg asks the UI to open the list screen of a collection.
type OpenListMsg struct {
	Resource string
	// Filters preset user filters, e.g. status=available.
	Filters map[string]string
	// Scope fixes filters for the lifetime of the screen, e.g. vehicle_id.
	Scope map[string]string
	Title string
}

// OpenFormMsg asks the UI to open the edit form of a record.
type OpenFormMsg struct {
	Resource string
	ID       int
}

// SignedOutMsg reports the end of the session. Err is informational; the
// local session is dropped either way.
type SignedOutMsg struct {
	Err error
}

var rootIDs = []string{
	"dashboard",
	"vehicles",
	"reservations",
	"refuels",
	"documents",
	"companies",
	"users",
	"upcoming",
	"account",
}

// RootItems returns the top-level entries visible to the session.
func RootItems(s state.Session) []Item {
	items := make([]Item, 0, len(rootIDs))
	for _, id := range rootIDs {
		if !Visible(id, s) {
			continue
		}
		items = append(items, Item{ID: id, Label: prettyLabel(id)})
	}
	return items
}

// Visible reports whether a root entry is offered to the session. Collection
// entries follow the collection's view capability.
func Visible(id string, s state.Session) bool {
	if s == nil || !s.SignedIn() {
		return false
	}
	if d, ok := resource.Find(id); ok {
		return d.CanView(s)
	}
	return true
}

func menuItemsFromIDs(ids []string) []Item {
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Item{ID: id, Label: prettyLabel(id)})
	}
	return items
}

func prettyLabel(id string) string {
	if id == "" {
		return id
	}
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
