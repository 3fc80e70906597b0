package state

import "github.com/PawelWisn/Fleet-Flow/internal/fleet"

// UpcomingStore keeps the latest snapshot of upcoming reservations.
type UpcomingStore interface {
	Entries() []fleet.Reservation
	Total() int
	SetEntries(entries []fleet.Reservation, total int)
}

type upcomingStore struct {
	entries []fleet.Reservation
	total   int
}

func NewUpcomingStore() UpcomingStore {
	return &upcomingStore{}
}

func (u *upcomingStore) Entries() []fleet.Reservation {
	return cloneReservations(u.entries)
}

func (u *upcomingStore) Total() int {
	return u.total
}

func (u *upcomingStore) SetEntries(entries []fleet.Reservation, total int) {
	u.entries = cloneReservations(entries)
	u.total = total
}

func cloneReservations(entries []fleet.Reservation) []fleet.Reservation {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]fleet.Reservation, len(entries))
	copy(dup, entries)
	return dup
}
