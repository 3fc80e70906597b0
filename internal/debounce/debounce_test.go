package debounce

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type recordedTick struct {
	delay time.Duration
	fn    func(time.Time) tea.Msg
}

// fakeTicks captures scheduled ticks so tests control when they elapse.
type fakeTicks struct {
	ticks []recordedTick
}

func (f *fakeTicks) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	f.ticks = append(f.ticks, recordedTick{delay: d, fn: fn})
	return func() tea.Msg { return nil }
}

func (f *fakeTicks) elapse(i int) Msg {
	return f.ticks[i].fn(time.Time{}).(Msg)
}

type fired struct{ n int }

func newTestDebouncer(delay time.Duration) (*Debouncer, *fakeTicks, *int) {
	count := 0
	d := New(delay, func() tea.Cmd {
		count++
		return func() tea.Msg { return fired{n: count} }
	})
	ticks := &fakeTicks{}
	d.tick = ticks.tick
	return d, ticks, &count
}

func TestBurstFiresOnce(t *testing.T) {
	d, ticks, count := newTestDebouncer(500 * time.Millisecond)
	// one trigger per keystroke of "acme"
	for i := 0; i < 4; i++ {
		if cmd := d.Trigger(); cmd == nil {
			t.Fatalf("expected trigger to return a command")
		}
	}
	if len(ticks.ticks) != 4 {
		t.Fatalf("expected 4 scheduled ticks, got %d", len(ticks.ticks))
	}
	for i := 0; i < 3; i++ {
		if cmd := d.Fire(ticks.elapse(i)); cmd != nil {
			t.Fatalf("superseded tick %d should not fire", i)
		}
	}
	cmd := d.Fire(ticks.elapse(3))
	if cmd == nil {
		t.Fatalf("expected final tick to fire")
	}
	if msg, ok := cmd().(fired); !ok || msg.n != 1 {
		t.Fatalf("expected first run, got %#v", msg)
	}
	if *count != 1 {
		t.Fatalf("expected action once, got %d", *count)
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending after fire")
	}
	if d.Fire(ticks.elapse(3)) != nil {
		t.Fatalf("repeated delivery must not fire twice")
	}
}

func TestSpacedTriggersEachFire(t *testing.T) {
	d, ticks, count := newTestDebouncer(300 * time.Millisecond)
	for i := 0; i < 3; i++ {
		d.Trigger()
		if d.Fire(ticks.elapse(i)) == nil {
			t.Fatalf("expected trigger %d to fire", i)
		}
	}
	if *count != 3 {
		t.Fatalf("expected 3 runs, got %d", *count)
	}
}

func TestTriggerUsesConfiguredDelay(t *testing.T) {
	d, ticks, _ := newTestDebouncer(500 * time.Millisecond)
	d.Trigger()
	if ticks.ticks[0].delay != 500*time.Millisecond {
		t.Fatalf("expected 500ms delay, got %v", ticks.ticks[0].delay)
	}
}

func TestCancelDropsPendingRun(t *testing.T) {
	d, ticks, count := newTestDebouncer(time.Second)
	d.Cancel()
	d.Trigger()
	d.Cancel()
	d.Cancel()
	if d.Pending() {
		t.Fatalf("expected no pending run after cancel")
	}
	if d.Fire(ticks.elapse(0)) != nil {
		t.Fatalf("cancelled tick must not fire")
	}
	if *count != 0 {
		t.Fatalf("expected no runs, got %d", *count)
	}
	var nilDebouncer *Debouncer
	nilDebouncer.Cancel()
}

func TestFireIgnoresForeignMessages(t *testing.T) {
	a, ticksA, _ := newTestDebouncer(time.Second)
	b, _, countB := newTestDebouncer(time.Second)
	a.Trigger()
	b.Trigger()
	msg := ticksA.elapse(0)
	if b.Owns(msg) {
		t.Fatalf("expected message to belong to a")
	}
	if b.Fire(msg) != nil || *countB != 0 {
		t.Fatalf("foreign message must not fire b")
	}
	if !b.Pending() {
		t.Fatalf("b should still be pending")
	}
}

func TestZeroDelayDeliversImmediately(t *testing.T) {
	d, ticks, _ := newTestDebouncer(0)
	cmd := d.Trigger()
	if len(ticks.ticks) != 0 {
		t.Fatalf("zero delay should not schedule a tick")
	}
	msg, ok := cmd().(Msg)
	if !ok {
		t.Fatalf("expected debounce.Msg")
	}
	if d.Fire(msg) == nil {
		t.Fatalf("expected immediate fire")
	}
}
