package menu

import (
	"context"
	"fmt"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/resource"
	tea "github.com/charmbracelet/bubbletea"
)

func loadAccountMenu(Context) ([]Item, error) {
	return menuItemsFromIDs([]string{"sign-out"}), nil
}

// SignOutAction ends the backend session.
func SignOutAction(ctx Context, item Item) tea.Cmd {
	return func() tea.Msg {
		events.Session.SignOut()
		if ctx.Client == nil {
			return SignedOutMsg{}
		}
		err := ctx.Client.Logout(context.Background())
		if api.KindOf(err) == api.KindUnauthorized {
			err = nil
		}
		return SignedOutMsg{Err: err}
	}
}

// DownloadAction fetches the file behind a download row action and writes it
// to the download directory. item.ID is the resource.Action.
func DownloadAction(ctx Context, item Item) tea.Cmd {
	action := resource.Action(item.ID)
	record := ctx.Record
	return func() tea.Msg {
		if ctx.Client == nil {
			return ActionResult{Err: fmt.Errorf("%s: no api client", action)}
		}
		payload, name, err := resource.Download(context.Background(), ctx.Client, action, record)
		if err != nil {
			return ActionResult{Err: err}
		}
		path, err := payload.Save(ctx.DownloadDir, name)
		if err != nil {
			return ActionResult{Err: err}
		}
		events.Action.Download(string(action), path, len(payload.Data))
		return ActionResult{Info: fmt.Sprintf("Saved %s", path)}
	}
}
