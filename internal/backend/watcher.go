package backend

import (
	"context"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/fleet"
	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Kind identifies the source of an Event.
type Kind int

const (
	KindSession Kind = iota
	KindUpcoming
)

func (k Kind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindUpcoming:
		return "upcoming"
	}
	return "unknown"
}

// Event carries the latest snapshot of one source, or the error of its last
// poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// SessionSnapshot is the user owning the current session.
type SessionSnapshot struct {
	User fleet.User
}

// UpcomingSnapshot is the first page of upcoming reservations.
type UpcomingSnapshot struct {
	Reservations []fleet.Reservation
	Total        int
}

// Client is the part of the API the watcher polls.
type Client interface {
	Me(ctx context.Context) (fleet.User, error)
	Upcoming(ctx context.Context, size int) (api.Page[fleet.Reservation], error)
}

// UpcomingLimit is the number of upcoming reservations fetched per poll.
const UpcomingLimit = 5

type source struct {
	kind  Kind
	fetch func(context.Context) (interface{}, error)
}

// Watcher keeps the session and the upcoming reservations fresh in the
// background. Failing sources are polled less often until they recover.
type Watcher struct {
	interval time.Duration
	cancel   context.CancelFunc
	group    *errgroup.Group
	events   chan Event
	done     chan struct{}
}

// NewWatcher starts polling client every interval.
func NewWatcher(client Client, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	w := &Watcher{
		interval: interval,
		cancel:   cancel,
		group:    group,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
	sources := []source{
		{kind: KindSession, fetch: func(ctx context.Context) (interface{}, error) {
			user, err := client.Me(ctx)
			if err != nil {
				return nil, err
			}
			return SessionSnapshot{User: user}, nil
		}},
		{kind: KindUpcoming, fetch: func(ctx context.Context) (interface{}, error) {
			page, err := client.Upcoming(ctx, UpcomingLimit)
			if err != nil {
				return nil, err
			}
			return UpcomingSnapshot{Reservations: page.Items, Total: page.Total}, nil
		}},
	}
	for _, src := range sources {
		group.Go(func() error { return w.run(ctx, src) })
	}
	go func() {
		_ = w.group.Wait()
		close(w.events)
		close(w.done)
	}()
	return w
}

// Events returns the channel events are published on. It is closed once every
// poller has exited.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop asks the pollers to exit after their current fetch.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the pollers have exited.
func (w *Watcher) Wait() {
	<-w.done
}

func (w *Watcher) run(ctx context.Context, src source) error {
	delays := newBackoff(w.interval)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		data, err := src.fetch(ctx)
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case w.events <- Event{Kind: src.kind, Data: data, Err: err}:
		}
		delay := delays.next(err != nil)
		if err != nil {
			logging.Trace("backend.poll", map[string]interface{}{"source": src.kind.String(), "error": err.Error(), "retry_in": delay.String()})
		}
		timer.Reset(delay)
	}
}
