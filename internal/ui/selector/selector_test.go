package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PawelWisn/Fleet-Flow/internal/debounce"
	tea "github.com/charmbracelet/bubbletea"
)

type fetchCall struct {
	term string
	page int
}

// pagedSource serves vehicle options three per page.
type pagedSource struct {
	options []Option
	size    int
	calls   []fetchCall
	fail    error
}

func newPagedSource(n int) *pagedSource {
	src := &pagedSource{size: 3}
	for i := 1; i <= n; i++ {
		src.options = append(src.options, Option{Value: fmt.Sprint(i), Label: fmt.Sprintf("Vehicle %d", i)})
	}
	return src
}

func (p *pagedSource) Fetch(_ context.Context, term string, page int) (Result, error) {
	p.calls = append(p.calls, fetchCall{term: term, page: page})
	if p.fail != nil {
		return Result{}, p.fail
	}
	var matching []Option
	for _, opt := range p.options {
		if term == "" || strings.Contains(strings.ToLower(opt.Label), strings.ToLower(term)) {
			matching = append(matching, opt)
		}
	}
	start := (page - 1) * p.size
	if start > len(matching) {
		start = len(matching)
	}
	end := start + p.size
	if end > len(matching) {
		end = len(matching)
	}
	return Result{Options: matching[start:end], HasMore: end < len(matching)}, nil
}

func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case LoadedMsg, ResolvedMsg, debounce.Msg:
		case tea.BatchMsg:
			for _, c := range msg.(tea.BatchMsg) {
				drain(t, m, c)
			}
			return
		default:
			return
		}
		cmd = m.Update(msg)
	}
}

func newModel(src Source) *Model {
	return New(Config{Name: "vehicle_id", Source: src})
}

func TestOpenLoadsFirstPage(t *testing.T) {
	src := newPagedSource(7)
	m := newModel(src)
	cmd := m.Open()
	if m.State() != OpenLoading {
		t.Fatalf("expected loading state, got %v", m.State())
	}
	drain(t, m, cmd)
	if m.State() != OpenIdle {
		t.Fatalf("expected idle, got %v", m.State())
	}
	if len(m.Options()) != 3 || !m.HasMore() {
		t.Fatalf("expected first page with more, got %d options more=%v", len(m.Options()), m.HasMore())
	}
	if src.calls[0] != (fetchCall{term: "", page: 1}) {
		t.Fatalf("unexpected first call %+v", src.calls[0])
	}
}

func TestReopenUsesCachedOptions(t *testing.T) {
	src := newPagedSource(4)
	m := newModel(src)
	drain(t, m, m.Open())
	m.Close()
	if cmd := m.Open(); cmd != nil {
		t.Fatalf("expected cached options to be reused")
	}
	if m.State() != OpenIdle || len(src.calls) != 1 {
		t.Fatalf("unexpected state %v calls %d", m.State(), len(src.calls))
	}
}

func TestScrollingToBottomAppendsNextPage(t *testing.T) {
	src := newPagedSource(7)
	m := newModel(src)
	drain(t, m, m.Open())
	if cmd := m.MoveCursor(1); cmd != nil {
		t.Fatalf("middle of the list must not load more")
	}
	cmd := m.MoveCursor(1)
	if m.State() != OpenLoadingMore {
		t.Fatalf("expected loading more, got %v", m.State())
	}
	drain(t, m, cmd)
	if len(m.Options()) != 6 || m.Page() != 2 || !m.HasMore() {
		t.Fatalf("expected two pages appended, got %d options page %d", len(m.Options()), m.Page())
	}
	drain(t, m, m.MoveCursor(3))
	if len(m.Options()) != 7 || m.HasMore() {
		t.Fatalf("expected all options loaded, got %d more=%v", len(m.Options()), m.HasMore())
	}
	if cmd := m.MoveCursor(1); cmd != nil {
		t.Fatalf("no more pages to load")
	}
}

func TestAppendDeduplicatesByValue(t *testing.T) {
	pages := map[int]Result{
		1: {Options: []Option{{"1", "A"}, {"2", "B"}}, HasMore: true},
		2: {Options: []Option{{"2", "B"}, {"3", "C"}}},
	}
	m := newModel(SourceFunc(func(_ context.Context, _ string, page int) (Result, error) {
		return pages[page], nil
	}))
	drain(t, m, m.Open())
	drain(t, m, m.MoveCursor(1))
	got := m.Options()
	if len(got) != 3 || got[2].Value != "3" {
		t.Fatalf("expected de-duplicated options, got %+v", got)
	}
}

func TestTermChangeRestartsAtFirstPage(t *testing.T) {
	src := newPagedSource(30)
	m := newModel(src)
	drain(t, m, m.Open())
	drain(t, m, m.MoveCursor(2))
	if m.Page() != 2 {
		t.Fatalf("expected page 2 loaded, got %d", m.Page())
	}
	trigger := m.SetTerm("vehicle 2")
	drain(t, m, trigger)
	last := src.calls[len(src.calls)-1]
	if last != (fetchCall{term: "vehicle 2", page: 1}) {
		t.Fatalf("expected page 1 query for the term, got %+v", last)
	}
	for _, opt := range m.Options() {
		if !strings.Contains(opt.Label, "Vehicle 2") {
			t.Fatalf("stale option %q under new term", opt.Label)
		}
	}
	if m.Cursor() != 0 {
		t.Fatalf("expected cursor reset, got %d", m.Cursor())
	}
}

func TestTermChangeClearsOptionsBeforeResult(t *testing.T) {
	src := newPagedSource(10)
	m := newModel(src)
	drain(t, m, m.Open())
	msg := m.SetTerm("7")().(debounce.Msg)
	cmd := m.Update(msg)
	if m.State() != OpenLoading || len(m.Options()) != 0 {
		t.Fatalf("expected cleared list while loading, got %v with %d options", m.State(), len(m.Options()))
	}
	drain(t, m, cmd)
	if got := m.Options(); len(got) != 1 || got[0].Value != "7" {
		t.Fatalf("unexpected options %+v", got)
	}
}

func TestBurstOfKeystrokesQueriesOnce(t *testing.T) {
	src := newPagedSource(10)
	m := newModel(src)
	drain(t, m, m.Open())
	before := len(src.calls)
	var msgs []tea.Msg
	for _, term := range []string{"v", "ve", "veh"} {
		msgs = append(msgs, m.SetTerm(term)())
	}
	var cmds []tea.Cmd
	for _, msg := range msgs {
		if cmd := m.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) != 1 {
		t.Fatalf("expected one query, got %d", len(cmds))
	}
	drain(t, m, cmds[0])
	if len(src.calls)-before != 1 || src.calls[len(src.calls)-1].term != "veh" {
		t.Fatalf("unexpected calls %+v", src.calls[before:])
	}
}

func TestStaleLoadIgnored(t *testing.T) {
	src := newPagedSource(10)
	m := newModel(src)
	first := m.Open()
	msg := m.SetTerm("9")().(debounce.Msg)
	second := m.Update(msg)
	newer := second()
	older := first()
	m.Update(newer)
	m.Update(older)
	if got := m.Options(); len(got) != 1 || got[0].Value != "9" {
		t.Fatalf("older page-1 result replaced the newer one: %+v", got)
	}
}

func TestSelectSetsValueAndCloses(t *testing.T) {
	src := newPagedSource(5)
	m := newModel(src)
	drain(t, m, m.Open())
	drain(t, m, m.SetTerm("Vehicle"))
	m.MoveCursor(1)
	if !m.Select() {
		t.Fatalf("expected selection")
	}
	if m.State() != Closed {
		t.Fatalf("expected closed, got %v", m.State())
	}
	if m.Value() != "2" || m.Label() != "Vehicle 2" {
		t.Fatalf("unexpected selection %q %q", m.Value(), m.Label())
	}
	if m.Term() != "" {
		t.Fatalf("expected term cleared, got %q", m.Term())
	}
}

func TestSelectWithKeys(t *testing.T) {
	m := newModel(Strings("manual", "automatic"))
	drain(t, m, m.Open())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Value() != "automatic" || m.IsOpen() {
		t.Fatalf("expected automatic selected and closed, got %q open=%v", m.Value(), m.IsOpen())
	}
}

func TestEscapeKeepsValue(t *testing.T) {
	m := newModel(Strings("manual", "automatic"))
	m.SetValue("manual")
	drain(t, m, m.Open())
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.IsOpen() || m.Value() != "manual" {
		t.Fatalf("escape must close without changing the value")
	}
	drain(t, m, m.Open())
	m.Blur()
	if m.IsOpen() || m.Value() != "manual" {
		t.Fatalf("blur must close without changing the value")
	}
}

func TestSetValueResolvesLabel(t *testing.T) {
	src := newPagedSource(3)
	m := newModel(src)
	cmd := m.SetValue("2")
	if m.Display() != DefaultPlaceholder {
		t.Fatalf("expected placeholder while resolving, got %q", m.Display())
	}
	if !m.Resolving() {
		t.Fatalf("expected resolving")
	}
	drain(t, m, cmd)
	if m.Label() != "Vehicle 2" || m.Display() != "Vehicle 2" {
		t.Fatalf("expected resolved label, got %q", m.Label())
	}
	if last := src.calls[len(src.calls)-1]; last != (fetchCall{term: "", page: 1}) {
		t.Fatalf("expected page 1 query without term, got %+v", last)
	}
}

func TestSetValueIgnoresSearchTerm(t *testing.T) {
	src := newPagedSource(3)
	m := newModel(src)
	m.input.SetValue("zzz")
	drain(t, m, m.SetValue("3"))
	if m.Label() != "Vehicle 3" {
		t.Fatalf("expected label resolved despite search term, got %q", m.Label())
	}
	if last := src.calls[len(src.calls)-1]; last.term != "" {
		t.Fatalf("resolve must not send the search term, got %q", last.term)
	}
}

func TestSetValueUsesCachedOption(t *testing.T) {
	src := newPagedSource(3)
	m := newModel(src)
	drain(t, m, m.Open())
	calls := len(src.calls)
	if cmd := m.SetValue("1"); cmd != nil {
		t.Fatalf("cached label should not query")
	}
	if m.Label() != "Vehicle 1" || len(src.calls) != calls {
		t.Fatalf("unexpected label %q", m.Label())
	}
}

func TestSetValueNotFoundKeepsPlaceholder(t *testing.T) {
	src := newPagedSource(3)
	m := New(Config{Name: "company_id", Source: src, Placeholder: "Choose company"})
	drain(t, m, m.SetValue("42"))
	if m.Resolving() {
		t.Fatalf("expected resolve to complete")
	}
	if m.Label() != "" || m.Display() != "Choose company" {
		t.Fatalf("expected placeholder, got label %q display %q", m.Label(), m.Display())
	}
	if m.Value() != "42" {
		t.Fatalf("value must be kept, got %q", m.Value())
	}
}

func TestStaleResolveIgnored(t *testing.T) {
	src := newPagedSource(3)
	m := newModel(src)
	first := m.SetValue("1")
	second := m.SetValue("2")
	m.Update(second())
	m.Update(first())
	if m.Value() != "2" || m.Label() != "Vehicle 2" {
		t.Fatalf("expected value 2 resolved, got %q %q", m.Value(), m.Label())
	}
}

func TestFailedLoadKeepsOptions(t *testing.T) {
	src := newPagedSource(7)
	m := newModel(src)
	drain(t, m, m.Open())
	src.fail = errors.New("boom")
	m.MoveCursor(1)
	drain(t, m, m.MoveCursor(1))
	if m.State() != OpenIdle {
		t.Fatalf("expected idle after failure, got %v", m.State())
	}
	if len(m.Options()) != 3 || m.Err() == nil {
		t.Fatalf("expected last good options kept with error, got %d", len(m.Options()))
	}
	if len(src.calls) != 2 {
		t.Fatalf("failures must not be retried automatically, got %d calls", len(src.calls))
	}
}

func TestStaticWhereFiltersOptions(t *testing.T) {
	roles := Strings("admin", "manager", "worker").Where(func(o Option) bool { return o.Value != "admin" })
	res, err := roles.Fetch(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Options) != 2 || res.Options[0].Value != "manager" {
		t.Fatalf("unexpected options %+v", res.Options)
	}
	res, _ = roles.Fetch(context.Background(), "WORK", 1)
	if len(res.Options) != 1 || res.Options[0].Value != "worker" {
		t.Fatalf("unexpected filtered options %+v", res.Options)
	}
}

func TestForeignMessagesIgnored(t *testing.T) {
	a := newModel(newPagedSource(3))
	b := newModel(newPagedSource(3))
	msg := a.Open()()
	b.Open()
	b.Update(msg)
	if b.State() != OpenLoading || len(b.Options()) != 0 {
		t.Fatalf("b must ignore a's results")
	}
}
