// Package listing implements the paginated, searchable list screen shared by
// every resource.
//
// A Screen owns its rows, page position, search term and filters. Every query
// it issues carries a sequence number; only the result of the most recently
// issued query is applied, so out-of-order responses never overwrite newer
// state. Typing is debounced and always restarts at page 1.
package listing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/debounce"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/paging"
	tea "github.com/charmbracelet/bubbletea"
)

// Status is the lifecycle state of a screen.
type Status int

const (
	StatusLoading Status = iota
	StatusEmpty
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Row is one record as displayed by a screen.
type Row struct {
	ID     int
	Label  string
	Cells  []string
	Search string
	Record any
}

// Fetcher loads one page of rows.
type Fetcher func(ctx context.Context, params api.Params) (api.Page[Row], error)

// Remover deletes a record by id.
type Remover func(ctx context.Context, id int) error

// Config describes a screen instance.
type Config struct {
	// Name is used in traces.
	Name string
	// Resource is the plural noun used in user-facing messages.
	Resource    string
	Fetch       Fetcher
	Remove      Remover
	PageSize    int
	SearchDelay time.Duration
	// Scope filters are fixed for the lifetime of the screen, e.g. vehicle_id.
	Scope map[string]string
	// LocalFilter narrows the fetched page client-side instead of sending the
	// search term to the backend.
	LocalFilter bool
}

var nextInstance atomic.Uint64

// LoadedMsg carries the outcome of a page query.
type LoadedMsg struct {
	screen uint64
	Seq    uint64
	Params api.Params
	Page   api.Page[Row]
	Err    error
}

// Target identifies the screen the message belongs to.
func (m LoadedMsg) Target() uint64 { return m.screen }

// DeletedMsg carries the outcome of a confirmed delete.
type DeletedMsg struct {
	screen uint64
	ID     int
	Label  string
	Err    error
}

// Target identifies the screen the message belongs to.
func (m DeletedMsg) Target() uint64 { return m.screen }

// Screen is the state machine behind one resource list.
type Screen struct {
	cfg      Config
	instance uint64

	pager   *paging.Controller
	status  Status
	rows    []Row
	err     error
	search  string
	term    string
	filters map[string]string

	seq             uint64
	issued          api.Params
	unfilteredTotal int

	debouncer *debounce.Debouncer
	pending   *Row
	deleting  bool
}

// New builds a screen in the loading state. Call Load to issue the first
// query.
func New(cfg Config) *Screen {
	s := &Screen{
		cfg:             cfg,
		instance:        nextInstance.Add(1),
		pager:           paging.New(cfg.PageSize),
		status:          StatusLoading,
		filters:         map[string]string{},
		unfilteredTotal: -1,
	}
	s.debouncer = debounce.New(cfg.SearchDelay, s.commitSearch)
	return s
}

func (s *Screen) Instance() uint64               { return s.instance }
func (s *Screen) Name() string                   { return s.cfg.Name }
func (s *Screen) Resource() string               { return s.cfg.Resource }
func (s *Screen) Status() Status                 { return s.status }
func (s *Screen) Err() error                     { return s.err }
func (s *Screen) Pager() *paging.Controller      { return s.pager }
func (s *Screen) Search() string                 { return s.search }
func (s *Screen) Term() string                   { return s.term }
func (s *Screen) LocalFilter() bool              { return s.cfg.LocalFilter }
func (s *Screen) Seq() uint64                    { return s.seq }
func (s *Screen) Issued() api.Params             { return s.issued }
func (s *Screen) Scope() map[string]string       { return cloneMap(s.cfg.Scope) }
func (s *Screen) Filter(key string) string       { return s.filters[key] }
func (s *Screen) Deleting() bool                 { return s.deleting }
func (s *Screen) SearchPending() bool            { return s.debouncer.Pending() }
func (s *Screen) Debouncer() *debounce.Debouncer { return s.debouncer }

// Load issues a query for the current page.
func (s *Screen) Load() tea.Cmd {
	return s.issue(s.pager.Page())
}

// Rows returns the rows to display, after any client-side filtering.
func (s *Screen) Rows() []Row {
	if !s.cfg.LocalFilter {
		return s.rows
	}
	term := strings.ToLower(strings.TrimSpace(s.term))
	if term == "" {
		return s.rows
	}
	out := make([]Row, 0, len(s.rows))
	for _, row := range s.rows {
		haystack := row.Search
		if haystack == "" {
			haystack = row.Label
		}
		if strings.Contains(strings.ToLower(haystack), term) {
			out = append(out, row)
		}
	}
	return out
}

// Row returns the displayed row with the given id.
func (s *Screen) Row(id int) (Row, bool) {
	for _, row := range s.Rows() {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

// SetSearch records the typed term. Remote screens debounce it and restart at
// page 1 once it settles; local screens filter immediately.
func (s *Screen) SetSearch(term string) tea.Cmd {
	s.term = term
	if s.cfg.LocalFilter {
		if s.status != StatusLoading && s.status != StatusError {
			s.refreshStatus()
		}
		return nil
	}
	return s.debouncer.Trigger()
}

// HandleDebounce fires the pending search when msg belongs to this screen.
func (s *Screen) HandleDebounce(msg debounce.Msg) (bool, tea.Cmd) {
	if !s.debouncer.Owns(msg) {
		return false, nil
	}
	return true, s.debouncer.Fire(msg)
}

func (s *Screen) commitSearch() tea.Cmd {
	term := strings.TrimSpace(s.term)
	if term == s.search && s.pager.Loaded() {
		return nil
	}
	s.search = term
	s.pager.Reset()
	return s.issue(1)
}

// SetPage requests page n, clamped to the known page range. The page is
// committed once the response arrives.
func (s *Screen) SetPage(n int) tea.Cmd {
	target := s.pager.Target(n)
	if target == s.pager.Page() && s.status != StatusError && s.pager.Loaded() {
		return nil
	}
	events.Paging.Page(s.cfg.Name, target, s.pager.TotalPages())
	return s.issue(target)
}

func (s *Screen) NextPage() tea.Cmd { return s.SetPage(s.pager.Next()) }

func (s *Screen) PrevPage() tea.Cmd { return s.SetPage(s.pager.Prev()) }

// SetPageSize changes the page size and restarts at page 1.
func (s *Screen) SetPageSize(size int) tea.Cmd {
	if size == s.pager.Size() {
		return nil
	}
	s.pager.SetPageSize(size)
	events.Paging.PageSize(s.cfg.Name, s.pager.Size())
	return s.issue(1)
}

// SetFilter sets or clears (empty value) a structured filter and restarts at
// page 1.
func (s *Screen) SetFilter(key, value string) tea.Cmd {
	value = strings.TrimSpace(value)
	if s.filters[key] == value {
		return nil
	}
	if value == "" {
		delete(s.filters, key)
	} else {
		s.filters[key] = value
	}
	s.pager.Reset()
	return s.issue(1)
}

// Retry re-issues the last query with identical parameters.
func (s *Screen) Retry() tea.Cmd {
	return s.send(s.issued)
}

// Close drops any pending search.
func (s *Screen) Close() {
	s.debouncer.Cancel()
}

func (s *Screen) params(page int) api.Params {
	filters := cloneMap(s.cfg.Scope)
	for k, v := range s.filters {
		if filters == nil {
			filters = map[string]string{}
		}
		filters[k] = v
	}
	p := api.Params{Page: page, Size: s.pager.Size(), Filters: filters}
	if !s.cfg.LocalFilter {
		p.Search = s.search
	}
	return p
}

func (s *Screen) issue(page int) tea.Cmd {
	return s.send(s.params(page))
}

func (s *Screen) send(params api.Params) tea.Cmd {
	s.seq++
	seq := s.seq
	s.issued = params
	s.status = StatusLoading
	s.err = nil
	events.Query.Issue(s.cfg.Name, s.cfg.Resource, seq, params.Page, params.Size, params.Search)
	fetch := s.cfg.Fetch
	instance := s.instance
	resource := s.cfg.Resource
	return func() tea.Msg {
		if fetch == nil {
			return LoadedMsg{screen: instance, Seq: seq, Params: params, Err: fmt.Errorf("no fetcher for %s", resource)}
		}
		page, err := fetch(context.Background(), params)
		return LoadedMsg{screen: instance, Seq: seq, Params: params, Page: page, Err: err}
	}
}

// Apply folds a query result into the screen. Results from superseded queries
// are dropped. An empty page past the first triggers a query for the previous
// page, which is returned.
func (s *Screen) Apply(msg LoadedMsg) tea.Cmd {
	if msg.screen != s.instance {
		return nil
	}
	if msg.Seq != s.seq {
		events.Query.Stale(s.cfg.Name, msg.Seq, s.seq)
		return nil
	}
	if msg.Err != nil {
		s.status = StatusError
		s.err = msg.Err
		events.Query.Failed(s.cfg.Name, msg.Seq, msg.Err)
		return nil
	}
	page := msg.Page
	s.pager.Apply(paging.Envelope{
		Page:      page.Page,
		Size:      page.Size,
		Total:     page.Total,
		Pages:     page.Pages,
		Count:     len(page.Items),
		Requested: msg.Params.Page,
	})
	s.rows = page.Items
	if s.isUnfiltered(msg.Params) {
		s.unfilteredTotal = page.Total
	}
	events.Query.Apply(s.cfg.Name, msg.Seq, len(page.Items), page.Total)
	if s.pager.NeedsStepBack() {
		target := s.pager.StepBack()
		events.Paging.StepBack(s.cfg.Name, s.pager.Page(), target)
		return s.issue(target)
	}
	s.refreshStatus()
	return nil
}

func (s *Screen) isUnfiltered(params api.Params) bool {
	if params.Search != "" {
		return false
	}
	for k := range params.Filters {
		if _, scoped := s.cfg.Scope[k]; !scoped {
			return false
		}
	}
	return true
}

func (s *Screen) refreshStatus() {
	if len(s.Rows()) == 0 {
		s.status = StatusEmpty
		return
	}
	s.status = StatusReady
}

// Filtering reports whether a search term or user filter narrows the list.
func (s *Screen) Filtering() bool {
	if len(s.filters) > 0 {
		return true
	}
	if s.cfg.LocalFilter {
		return strings.TrimSpace(s.term) != ""
	}
	return s.search != ""
}

// EmptyMessage distinguishes an empty collection from a filter that matches
// nothing.
func (s *Screen) EmptyMessage() string {
	if !s.Filtering() || s.unfilteredTotal == 0 {
		return fmt.Sprintf("No %s yet", s.cfg.Resource)
	}
	term := s.search
	if s.cfg.LocalFilter {
		term = strings.TrimSpace(s.term)
	}
	if term != "" {
		return fmt.Sprintf("No %s match %q", s.cfg.Resource, term)
	}
	return fmt.Sprintf("No %s match the current filters", s.cfg.Resource)
}

// ErrorMessage is the user-facing text for the error state.
func (s *Screen) ErrorMessage() string {
	if s.err == nil {
		return ""
	}
	if api.KindOf(s.err) == api.KindForbidden {
		return "Permission denied"
	}
	return fmt.Sprintf("Failed to load %s", s.cfg.Resource)
}

// FilterSummary renders the active user filters as "key=value" pairs.
func (s *Screen) FilterSummary() string {
	if len(s.filters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.filters))
	for k := range s.filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s.filters[k]
	}
	return strings.Join(parts, " ")
}

// RequestDelete marks row for deletion pending confirmation.
func (s *Screen) RequestDelete(row Row) bool {
	if s.cfg.Remove == nil || s.deleting {
		return false
	}
	s.pending = &row
	return true
}

// PendingDelete returns the row awaiting confirmation.
func (s *Screen) PendingDelete() (Row, bool) {
	if s.pending == nil {
		return Row{}, false
	}
	return *s.pending, true
}

func (s *Screen) CancelDelete() {
	s.pending = nil
}

// ConfirmDelete sends the delete for the pending row.
func (s *Screen) ConfirmDelete() tea.Cmd {
	if s.pending == nil || s.cfg.Remove == nil {
		return nil
	}
	row := *s.pending
	s.pending = nil
	s.deleting = true
	remove := s.cfg.Remove
	instance := s.instance
	return func() tea.Msg {
		err := remove(context.Background(), row.ID)
		return DeletedMsg{screen: instance, ID: row.ID, Label: row.Label, Err: err}
	}
}

// HandleDeleted re-queries the current page after a successful delete so
// counts stay authoritative. Failed deletes leave the list untouched.
func (s *Screen) HandleDeleted(msg DeletedMsg) tea.Cmd {
	if msg.screen != s.instance {
		return nil
	}
	s.deleting = false
	if msg.Err != nil {
		return nil
	}
	return s.issue(s.pager.Page())
}

func cloneMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
