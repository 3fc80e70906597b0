package api

import (
	"context"

	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"golang.org/x/sync/errgroup"
)

// Dashboard summarises the fleet for the landing screen.
type Dashboard struct {
	Vehicles       int
	ByAvailability map[fleet.Availability]int
	Upcoming       int
}

// FetchDashboard counts vehicles per availability and upcoming reservations.
// Each count is a size-1 query so only envelope totals cross the wire.
func (c *Client) FetchDashboard(ctx context.Context) (Dashboard, error) {
	g, ctx := errgroup.WithContext(ctx)
	statuses := fleet.Availabilities()
	counts := make([]int, len(statuses))
	var total, upcoming int

	g.Go(func() error {
		page, err := Query[fleet.Vehicle](ctx, c, "vehicles", Params{Page: 1, Size: 1})
		total = page.Total
		return err
	})
	g.Go(func() error {
		page, err := Query[fleet.Reservation](ctx, c, "reservations/upcoming", Params{Page: 1, Size: 1})
		upcoming = page.Total
		return err
	})
	for i, status := range statuses {
		g.Go(func() error {
			page, err := Query[fleet.Vehicle](ctx, c, "vehicles", Params{Page: 1, Size: 1, Filters: map[string]string{"status": string(status)}})
			counts[i] = page.Total
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	out := Dashboard{Vehicles: total, Upcoming: upcoming, ByAvailability: make(map[fleet.Availability]int, len(statuses))}
	for i, status := range statuses {
		out.ByAvailability[status] = counts[i]
	}
	return out, nil
}

// Upcoming returns the first page of reservations that have not started yet.
func (c *Client) Upcoming(ctx context.Context, size int) (Page[fleet.Reservation], error) {
	return Query[fleet.Reservation](ctx, c, "reservations/upcoming", Params{Page: 1, Size: size})
}
