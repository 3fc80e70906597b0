// Package debounce coalesces bursts of triggers into a single deferred action.
//
// A Debouncer never runs anything itself. Trigger returns a tea.Cmd that
// delivers a Msg once the quiet period elapses; the owner routes that Msg back
// through Fire, which runs the action only if no later trigger superseded it.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var nextID atomic.Uint64

// Msg is delivered when a quiet period elapses.
type Msg struct {
	id  uint64
	seq uint64
}

// Debouncer defers fn until delay has passed without another Trigger.
type Debouncer struct {
	id      uint64
	delay   time.Duration
	fn      func() tea.Cmd
	seq     uint64
	pending bool

	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// New returns a debouncer that runs fn after delay of inactivity.
func New(delay time.Duration, fn func() tea.Cmd) *Debouncer {
	return &Debouncer{
		id:    nextID.Add(1),
		delay: delay,
		fn:    fn,
		tick:  tea.Tick,
	}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() tea.Cmd {
	d.seq++
	d.pending = true
	msg := Msg{id: d.id, seq: d.seq}
	if d.delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return d.tick(d.delay, func(time.Time) tea.Msg { return msg })
}

// Cancel drops any pending run. Calling it with nothing pending is a no-op.
func (d *Debouncer) Cancel() {
	if d == nil {
		return
	}
	d.seq++
	d.pending = false
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	return d != nil && d.pending
}

// Owns reports whether msg was produced by this debouncer.
func (d *Debouncer) Owns(msg Msg) bool {
	return d != nil && msg.id == d.id
}

// Fire runs the action when msg is the latest trigger of this debouncer and
// returns its command. Superseded, cancelled, or foreign messages return nil.
func (d *Debouncer) Fire(msg Msg) tea.Cmd {
	if !d.Owns(msg) || !d.pending || msg.seq != d.seq {
		return nil
	}
	d.pending = false
	if d.fn == nil {
		return nil
	}
	return d.fn()
}
