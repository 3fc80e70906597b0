package dispatcher

import (
	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/backend"
	"github.com/PawelWisn/Fleet-Flow/internal/state"
)

type Result struct {
	SessionUpdated  bool
	SessionExpired  bool
	UpcomingUpdated bool
}

type Dispatcher struct {
	session  state.SessionStore
	upcoming state.UpcomingStore
}

func New(s state.SessionStore, u state.UpcomingStore) *Dispatcher {
	return &Dispatcher{session: s, upcoming: u}
}

// Handle folds a watcher event into the stores. A 401 while signed in clears
// the session and reports it as expired; other errors are ignored so a
// flaky poll never disturbs the screen.
func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	if evt.Err != nil {
		if api.KindOf(evt.Err) == api.KindUnauthorized && d.session.SignedIn() {
			d.session.Clear()
			d.upcoming.SetEntries(nil, 0)
			res.SessionExpired = true
		}
		return res
	}
	if !d.session.SignedIn() {
		return res
	}
	switch evt.Kind {
	case backend.KindSession:
		if snapshot, ok := evt.Data.(backend.SessionSnapshot); ok {
			d.session.SetUser(snapshot.User)
			res.SessionUpdated = true
		}
	case backend.KindUpcoming:
		if snapshot, ok := evt.Data.(backend.UpcomingSnapshot); ok {
			d.upcoming.SetEntries(snapshot.Reservations, snapshot.Total)
			res.UpcomingUpdated = true
		}
	}
	return res
}
