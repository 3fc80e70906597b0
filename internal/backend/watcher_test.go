package backend

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
)

type stubClient struct {
	meCalls atomic.Int32
	meErr   error
}

func (s *stubClient) Me(context.Context) (fleet.User, error) {
	s.meCalls.Add(1)
	if s.meErr != nil {
		return fleet.User{}, s.meErr
	}
	return fleet.User{ID: 7, Role: fleet.RoleWorker}, nil
}

func (s *stubClient) Upcoming(_ context.Context, size int) (api.Page[fleet.Reservation], error) {
	return api.Page[fleet.Reservation]{Items: []fleet.Reservation{{ID: 1}}, Total: 3, Page: 1, Size: size, Pages: 3}, nil
}

func TestWatcherEmitsBothKinds(t *testing.T) {
	client := &stubClient{}
	w := NewWatcher(client, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()

	seen := map[Kind]Event{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case evt := <-w.Events():
			seen[evt.Kind] = evt
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d", len(seen))
		}
	}
	session, ok := seen[KindSession].Data.(SessionSnapshot)
	if !ok || session.User.ID != 7 {
		t.Fatalf("unexpected session event %#v", seen[KindSession])
	}
	upcoming, ok := seen[KindUpcoming].Data.(UpcomingSnapshot)
	if !ok || upcoming.Total != 3 || len(upcoming.Reservations) != 1 {
		t.Fatalf("unexpected upcoming event %#v", seen[KindUpcoming])
	}
}

func TestWatcherForwardsErrors(t *testing.T) {
	client := &stubClient{meErr: api.ErrUnauthorized}
	w := NewWatcher(client, time.Hour)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case evt := <-w.Events():
			if evt.Kind != KindSession {
				continue
			}
			if evt.Err == nil || evt.Data != nil {
				t.Fatalf("expected error event, got %#v", evt)
			}
			return
		case <-timeout:
			t.Fatalf("timed out waiting for session event")
		}
	}
}

func TestStopClosesEvents(t *testing.T) {
	w := NewWatcher(&stubClient{}, time.Hour)
	w.Stop()
	w.Wait()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("events channel not closed")
		}
	}
}

func TestWatcherKeepsPollingFailingSource(t *testing.T) {
	client := &stubClient{meErr: api.ErrUnauthorized}
	w := NewWatcher(client, time.Millisecond)
	defer func() {
		w.Stop()
		w.Wait()
	}()
	deadline := time.After(2 * time.Second)
	for client.meCalls.Load() < 3 {
		select {
		case <-w.Events():
		case <-deadline:
			t.Fatalf("expected repeated polls, got %d", client.meCalls.Load())
		}
	}
}

func TestWatcherClosesEventsOnStop(t *testing.T) {
	w := NewWatcher(&stubClient{}, time.Hour)
	w.Stop()
	w.Wait()
	for range w.Events() {
	}
}
