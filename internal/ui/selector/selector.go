// Package selector implements the searchable dropdown used by form fields
// that reference another record.
//
// Options are fetched page by page from a Source. Typing in the search box is
// debounced and restarts at page 1 with an empty list; moving the cursor past
// the last option appends the next page. Every fetch carries a sequence
// number and only the most recent one is applied.
package selector

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/debounce"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State is the dropdown lifecycle.
type State int

const (
	Closed State = iota
	OpenLoading
	OpenIdle
	OpenLoadingMore
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenLoading:
		return "loading"
	case OpenIdle:
		return "idle"
	case OpenLoadingMore:
		return "loading-more"
	default:
		return "unknown"
	}
}

// DefaultPlaceholder is shown while no label is known.
const DefaultPlaceholder = "Select..."

// DefaultHeight is the number of options visible at once.
const DefaultHeight = 6

var nextInstance atomic.Uint64

// LoadedMsg carries one page of options.
type LoadedMsg struct {
	selector uint64
	Seq      uint64
	Term     string
	Page     int
	Result   Result
	Err      error
}

// ResolvedMsg carries the page used to find the label of an external value.
type ResolvedMsg struct {
	selector uint64
	Seq      uint64
	Value    string
	Result   Result
	Err      error
}

// Config describes one selector.
type Config struct {
	// Name identifies the field in traces.
	Name        string
	Source      Source
	Placeholder string
	SearchDelay time.Duration
	Height      int
}

// Model is a single dropdown.
type Model struct {
	name        string
	instance    uint64
	source      Source
	placeholder string
	height      int

	state    State
	options  []Option
	seen     map[string]struct{}
	listTerm string
	page     int
	hasMore  bool
	cursor   int
	offset   int
	err      error

	input     textinput.Model
	debouncer *debounce.Debouncer
	seq       uint64

	value      string
	label      string
	resolving  bool
	resolveSeq uint64
}

// New returns a closed selector with no value.
func New(cfg Config) *Model {
	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.CharLimit = 64
	ti.Prompt = "/ "
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	height := cfg.Height
	if height <= 0 {
		height = DefaultHeight
	}
	m := &Model{
		name:        cfg.Name,
		instance:    nextInstance.Add(1),
		source:      cfg.Source,
		placeholder: placeholder,
		height:      height,
		seen:        map[string]struct{}{},
		input:       ti,
	}
	m.debouncer = debounce.New(cfg.SearchDelay, m.commitTerm)
	return m
}

func (m *Model) State() State        { return m.state }
func (m *Model) IsOpen() bool        { return m.state != Closed }
func (m *Model) Value() string       { return m.value }
func (m *Model) Label() string       { return m.label }
func (m *Model) Term() string        { return m.input.Value() }
func (m *Model) Page() int           { return m.page }
func (m *Model) HasMore() bool       { return m.hasMore }
func (m *Model) Cursor() int         { return m.cursor }
func (m *Model) Err() error          { return m.err }
func (m *Model) Resolving() bool     { return m.resolving }
func (m *Model) Placeholder() string { return m.placeholder }

// Options returns a copy of the loaded options.
func (m *Model) Options() []Option {
	return append([]Option(nil), m.options...)
}

// Display is the text shown in the closed control: the label, or the
// placeholder while none is known.
func (m *Model) Display() string {
	if m.value == "" || m.label == "" {
		return m.placeholder
	}
	return m.label
}

// Open shows the dropdown. A page-1 query is issued unless options for the
// current term are already cached.
func (m *Model) Open() tea.Cmd {
	if m.state != Closed {
		return nil
	}
	events.Selector.Open(m.name)
	m.input.Focus()
	term := strings.TrimSpace(m.input.Value())
	if len(m.options) > 0 && m.listTerm == term {
		m.state = OpenIdle
		m.clampCursor()
		return nil
	}
	m.reset()
	m.state = OpenLoading
	return m.fetch(term, 1)
}

// Close hides the dropdown without touching the value.
func (m *Model) Close() {
	if m.state == Closed {
		return
	}
	m.debouncer.Cancel()
	m.input.Blur()
	m.state = Closed
	events.Selector.Close(m.name)
}

// Blur closes the dropdown when focus leaves it.
func (m *Model) Blur() { m.Close() }

// SetTerm updates the search box and schedules a debounced re-query.
func (m *Model) SetTerm(term string) tea.Cmd {
	if m.input.Value() != term {
		m.input.SetValue(term)
		m.input.CursorEnd()
	}
	return m.debouncer.Trigger()
}

func (m *Model) commitTerm() tea.Cmd {
	if m.state == Closed {
		return nil
	}
	term := strings.TrimSpace(m.input.Value())
	if term == m.listTerm && len(m.options) > 0 {
		return nil
	}
	m.reset()
	m.state = OpenLoading
	return m.fetch(term, 1)
}

// MoveCursor moves the highlight by delta. Reaching the last option while
// more pages exist loads the next page.
func (m *Model) MoveCursor(delta int) tea.Cmd {
	if m.state == Closed || len(m.options) == 0 {
		return nil
	}
	m.cursor += delta
	m.clampCursor()
	if m.cursor == len(m.options)-1 {
		return m.LoadMore()
	}
	return nil
}

// LoadMore appends the next page when one exists and nothing is loading.
func (m *Model) LoadMore() tea.Cmd {
	if m.state != OpenIdle || !m.hasMore {
		return nil
	}
	m.state = OpenLoadingMore
	return m.fetch(m.listTerm, m.page+1)
}

// Select commits the highlighted option, clears the term and closes.
func (m *Model) Select() bool {
	if m.state == Closed || m.cursor < 0 || m.cursor >= len(m.options) {
		return false
	}
	opt := m.options[m.cursor]
	m.value = opt.Value
	m.label = opt.Label
	m.resolving = false
	m.input.SetValue("")
	events.Selector.Select(m.name, opt.Value, opt.Label)
	m.Close()
	return true
}

// Clear drops the value.
func (m *Model) Clear() {
	m.value = ""
	m.label = ""
	m.resolving = false
}

// SetValue sets the value from outside. When no loaded option carries its
// label, a page-1 query ignoring the search term resolves it; the placeholder
// is shown until then, and kept if the value is not found.
func (m *Model) SetValue(value string) tea.Cmd {
	m.value = value
	m.label = ""
	m.resolving = false
	if value == "" {
		return nil
	}
	if opt, ok := m.find(m.options, value); ok {
		m.label = opt.Label
		return nil
	}
	m.resolving = true
	m.resolveSeq++
	seq := m.resolveSeq
	instance := m.instance
	source := m.source
	events.Selector.Fetch(m.name, "", 1, seq)
	return func() tea.Msg {
		if source == nil {
			return ResolvedMsg{selector: instance, Seq: seq, Value: value, Err: fmt.Errorf("no option source")}
		}
		res, err := source.Fetch(context.Background(), "", 1)
		return ResolvedMsg{selector: instance, Seq: seq, Value: value, Result: res, Err: err}
	}
}

// SetLabel records a known label for the current value, e.g. from the record
// being edited, so no resolve query is needed.
func (m *Model) SetLabel(label string) {
	if m.value == "" {
		return
	}
	m.label = label
	m.resolving = false
}

func (m *Model) reset() {
	m.options = nil
	m.seen = map[string]struct{}{}
	m.page = 0
	m.hasMore = false
	m.cursor = 0
	m.offset = 0
	m.err = nil
}

func (m *Model) fetch(term string, page int) tea.Cmd {
	m.seq++
	seq := m.seq
	instance := m.instance
	source := m.source
	events.Selector.Fetch(m.name, term, page, seq)
	return func() tea.Msg {
		if source == nil {
			return LoadedMsg{selector: instance, Seq: seq, Term: term, Page: page, Err: fmt.Errorf("no option source")}
		}
		res, err := source.Fetch(context.Background(), term, page)
		return LoadedMsg{selector: instance, Seq: seq, Term: term, Page: page, Result: res, Err: err}
	}
}

// Update routes selector messages and, while open, key presses. Messages
// addressed to other selectors are ignored.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.applyLoaded(msg)
		return nil
	case ResolvedMsg:
		m.applyResolved(msg)
		return nil
	case debounce.Msg:
		if !m.debouncer.Owns(msg) {
			return nil
		}
		return m.debouncer.Fire(msg)
	case tea.KeyMsg:
		if m.state == Closed {
			return nil
		}
		return m.handleKey(msg)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "ctrl+p":
		return m.MoveCursor(-1)
	case "down", "ctrl+n":
		return m.MoveCursor(1)
	case "pgup":
		return m.MoveCursor(-m.height)
	case "pgdown":
		return m.MoveCursor(m.height)
	case "enter":
		m.Select()
		return nil
	case "esc":
		m.Close()
		return nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.debouncer.Trigger())
}

func (m *Model) applyLoaded(msg LoadedMsg) {
	if msg.selector != m.instance {
		return
	}
	if msg.Seq != m.seq {
		events.Query.Stale(m.name, msg.Seq, m.seq)
		return
	}
	if m.state != Closed {
		m.state = OpenIdle
	}
	if msg.Err != nil {
		m.err = msg.Err
		events.Query.Failed(m.name, msg.Seq, msg.Err)
		return
	}
	m.err = nil
	if msg.Page <= 1 {
		m.options = nil
		m.seen = map[string]struct{}{}
	}
	for _, opt := range msg.Result.Options {
		if _, dup := m.seen[opt.Value]; dup {
			continue
		}
		m.seen[opt.Value] = struct{}{}
		m.options = append(m.options, opt)
	}
	m.page = msg.Page
	m.hasMore = msg.Result.HasMore
	m.listTerm = msg.Term
	m.clampCursor()
	events.Query.Apply(m.name, msg.Seq, len(msg.Result.Options), len(m.options))
	if m.resolving && m.label == "" {
		if opt, ok := m.find(m.options, m.value); ok {
			m.label = opt.Label
			m.resolving = false
		}
	}
}

func (m *Model) applyResolved(msg ResolvedMsg) {
	if msg.selector != m.instance || msg.Seq != m.resolveSeq || msg.Value != m.value {
		return
	}
	if !m.resolving {
		return
	}
	m.resolving = false
	if msg.Err != nil {
		events.Query.Failed(m.name, msg.Seq, msg.Err)
		return
	}
	if opt, ok := m.find(msg.Result.Options, msg.Value); ok {
		m.label = opt.Label
	}
}

func (m *Model) find(opts []Option, value string) (Option, bool) {
	for _, opt := range opts {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

func (m *Model) clampCursor() {
	if len(m.options) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.options) {
		m.cursor = len(m.options) - 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// View renders the closed control, or the search box and visible options
// while open.
func (m *Model) View() string {
	styles := theme.Default()
	display := m.Display()
	if display == m.placeholder && styles.Placeholder != nil {
		display = styles.Placeholder.Render(display)
	}
	if m.state == Closed {
		return display + " ▾"
	}
	lines := []string{display + " ▴", m.input.View()}
	end := m.offset + m.height
	if end > len(m.options) {
		end = len(m.options)
	}
	for i := m.offset; i < end; i++ {
		label := m.options[i].Label
		if i == m.cursor {
			if styles.SelectedItem != nil {
				label = styles.SelectedItem.Render("▌ " + label)
			} else {
				label = "▌ " + label
			}
		} else {
			label = "  " + label
		}
		lines = append(lines, label)
	}
	switch {
	case m.state == OpenLoading:
		lines = append(lines, styles.Loading.Render("Loading..."))
	case m.state == OpenLoadingMore:
		lines = append(lines, styles.Loading.Render("Loading more..."))
	case m.err != nil:
		lines = append(lines, styles.Error.Render("Failed to load options"))
	case len(m.options) == 0:
		lines = append(lines, styles.Info.Render("No matches"))
	case m.hasMore:
		lines = append(lines, styles.Info.Render(fmt.Sprintf("%d loaded, more below", len(m.options))))
	}
	if styles.Dropdown != nil {
		return styles.Dropdown.Render(strings.Join(lines, "\n"))
	}
	return strings.Join(lines, "\n")
}
