package dispatcher

import (
	"errors"
	"testing"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/backend"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/state"
)

func newDispatcher(signedIn bool) (*Dispatcher, state.SessionStore, state.UpcomingStore) {
	s := state.NewSessionStore()
	if signedIn {
		s.SetUser(fleet.User{ID: 1, Role: fleet.RoleWorker})
	}
	u := state.NewUpcomingStore()
	return New(s, u), s, u
}

func TestHandleSessionRefreshesUser(t *testing.T) {
	d, s, _ := newDispatcher(true)
	res := d.Handle(backend.Event{Kind: backend.KindSession, Data: backend.SessionSnapshot{User: fleet.User{ID: 1, Role: fleet.RoleManager}}})
	if !res.SessionUpdated {
		t.Fatalf("expected session update")
	}
	if !s.HasRole(fleet.RoleManager) {
		t.Fatalf("expected refreshed role")
	}
}

func TestHandleUnauthorizedExpiresSession(t *testing.T) {
	d, s, u := newDispatcher(true)
	u.SetEntries([]fleet.Reservation{{ID: 1}}, 1)
	res := d.Handle(backend.Event{Kind: backend.KindSession, Err: &api.Error{Kind: api.KindUnauthorized, Status: 401}})
	if !res.SessionExpired {
		t.Fatalf("expected session expiry")
	}
	if s.SignedIn() || u.Total() != 0 {
		t.Fatalf("expected cleared stores")
	}
}

func TestHandleForbiddenKeepsSession(t *testing.T) {
	d, s, _ := newDispatcher(true)
	res := d.Handle(backend.Event{Kind: backend.KindUpcoming, Err: &api.Error{Kind: api.KindForbidden, Status: 403}})
	if res.SessionExpired || !s.SignedIn() {
		t.Fatalf("403 must not clear the session")
	}
	res = d.Handle(backend.Event{Kind: backend.KindUpcoming, Err: errors.New("offline")})
	if res != (Result{}) {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestHandleIgnoresDataWhenSignedOut(t *testing.T) {
	d, s, u := newDispatcher(false)
	res := d.Handle(backend.Event{Kind: backend.KindUpcoming, Data: backend.UpcomingSnapshot{Total: 3}})
	if res.UpcomingUpdated || u.Total() != 0 {
		t.Fatalf("expected signed-out dispatcher to ignore data")
	}
	res = d.Handle(backend.Event{Kind: backend.KindSession, Err: api.ErrUnauthorized})
	if res.SessionExpired || s.SignedIn() {
		t.Fatalf("signed-out 401 is not an expiry")
	}
}
