package menu

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/format/table"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// upcomingMenuSize bounds the upcoming reservations fetched for the menu.
const upcomingMenuSize = 20

func loadDashboardMenu(ctx Context) ([]Item, error) {
	if ctx.Client == nil {
		return nil, fmt.Errorf("dashboard: no api client")
	}
	dash, err := ctx.Client.FetchDashboard(context.Background())
	if err != nil {
		return nil, err
	}
	ids := []string{"all"}
	rows := [][]string{{"All vehicles", strconv.Itoa(dash.Vehicles)}}
	for _, status := range fleet.Availabilities() {
		ids = append(ids, string(status))
		rows = append(rows, []string{prettyLabel(string(status)), strconv.Itoa(dash.ByAvailability[status])})
	}
	ids = append(ids, "soon")
	rows = append(rows, []string{"Upcoming reservations", strconv.Itoa(dash.Upcoming)})
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight})
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Label: lines[i]}
	}
	return items, nil
}

// DashboardAction opens the vehicle list, filtered by the chosen status.
func DashboardAction(ctx Context, item Item) tea.Cmd {
	return func() tea.Msg {
		msg := OpenListMsg{Resource: "vehicles"}
		if item.ID != "all" && item.ID != "" {
			msg.Filters = map[string]string{"status": item.ID}
			msg.Title = "Vehicles: " + item.ID
		}
		return msg
	}
}

func loadUpcomingMenu(ctx Context) ([]Item, error) {
	entries := ctx.Upcoming
	if ctx.Client != nil {
		page, err := ctx.Client.Upcoming(context.Background(), upcomingMenuSize)
		if err != nil {
			return nil, err
		}
		entries = page.Items
	}
	return UpcomingItems(entries), nil
}

// UpcomingItems renders reservations as aligned menu rows.
func UpcomingItems(entries []fleet.Reservation) []Item {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]string, len(entries))
	for i, r := range entries {
		vehicle := fmt.Sprintf("vehicle #%d", r.VehicleID)
		if r.Vehicle != nil {
			vehicle = r.Vehicle.DisplayLabel()
		}
		rows[i] = []string{r.DateFrom.Display(), "→", r.DateTo.Display(), vehicle}
	}
	lines := table.Format(rows, nil)
	items := make([]Item, len(entries))
	for i, r := range entries {
		items[i] = Item{ID: strconv.Itoa(r.ID), Label: lines[i]}
	}
	return items
}

// UpcomingAction opens the edit form of the chosen reservation.
func UpcomingAction(ctx Context, item Item) tea.Cmd {
	id, err := strconv.Atoi(item.ID)
	if err != nil {
		return func() tea.Msg { return ActionResult{Err: fmt.Errorf("invalid reservation %q", item.ID)} }
	}
	return func() tea.Msg {
		events.UI.Screen("reservations:edit")
		return OpenFormMsg{Resource: "reservations", ID: id}
	}
}
