package ui

import (
	"reflect"
	"strings"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/backend"
	"github.com/PawelWisn/Fleet-Flow/internal/data/dispatcher"
	"github.com/PawelWisn/Fleet-Flow/internal/debounce"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/PawelWisn/Fleet-Flow/internal/paging"
	"github.com/PawelWisn/Fleet-Flow/internal/state"
	"github.com/PawelWisn/Fleet-Flow/internal/theme"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/command"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/form"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/listing"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/selector"
	uistate "github.com/PawelWisn/Fleet-Flow/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

type Mode int

const (
	ModeMenu Mode = iota
	ModeList
	ModeForm
	ModeConfirm
	ModeSignIn
	ModeNotFound
	ModeFallback
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "menu"
	case ModeList:
		return "list"
	case ModeForm:
		return "form"
	case ModeConfirm:
		return "confirm"
	case ModeSignIn:
		return "sign-in"
	case ModeNotFound:
		return "not-found"
	case ModeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

const (
	menuHeaderSeparator = "→"
	defaultRootTitle    = "main menu"
)

var styles = theme.Default()

var headerSegmentCleaner = strings.NewReplacer("_", " ", "-", " ")

type msgHandler func(tea.Msg) tea.Cmd

func newLevel(id, title string, items []menu.Item, node *menu.Node) *level {
	return uistate.NewLevel(id, title, items, node)
}

// Options configures a Model.
type Options struct {
	Client      *api.Client
	Watcher     *backend.Watcher
	Width       int
	Height      int
	ShowFooter  bool
	Verbose     bool
	RootMenu    string
	PageSize    int
	SearchDelay time.Duration
	DownloadDir string
	// Email prefills the sign-in form.
	Email string
	// StaticCursor disables the filter cursor blink.
	StaticCursor bool
}

// Model implements the Bubble Tea model for the fleet console.
type Model struct {
	stack             []*level
	loading           bool
	pendingID         string
	pendingLabel      string
	errMsg            string
	infoMsg           string
	infoExpire        time.Time
	width             int
	height            int
	fixedWidth        bool
	fixedHeight       bool
	backend           *backend.Watcher
	health            connectionHealth
	showFooter        bool
	verbose           bool
	filterCursor      cursor.Model
	filterCursorDirty bool

	preview    map[string]*previewData
	previewSeq int

	handlers map[reflect.Type]msgHandler

	registry   *menu.Registry
	bus        *command.Bus
	mode       Mode
	rootMenu   string
	rootMenuID string
	rootTitle  string
	client     *api.Client
	session    state.SessionStore
	upcoming   state.UpcomingStore
	dispatcher *dispatcher.Dispatcher
	keys       keyMap
	help       help.Model

	pageSize    int
	searchDelay time.Duration
	downloadDir string
	email       string

	record    *recordForm
	formSeq   int
	signIn    *form.Form
	signingIn bool
	restoring bool
	notFound  string
	fallback  string
}

// NewModel initialises the UI. The console starts on the sign-in screen; Init
// tries to restore an existing backend session.
func NewModel(opts Options) *Model {
	registry := menu.BuildRegistry()
	session := state.NewSessionStore()
	upcoming := state.NewUpcomingStore()
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = paging.DefaultSize
	}
	m := &Model{
		registry:     registry,
		bus:          command.New(),
		backend:      opts.Watcher,
		showFooter:   opts.ShowFooter,
		verbose:      opts.Verbose,
		mode:         ModeSignIn,
		rootMenu:     opts.RootMenu,
		rootTitle:    defaultRootTitle,
		client:       opts.Client,
		session:      session,
		upcoming:     upcoming,
		dispatcher:   dispatcher.New(session, upcoming),
		keys:         newKeyMap(),
		help:         help.New(),
		preview:      make(map[string]*previewData),
		pageSize:     pageSize,
		searchDelay:  opts.SearchDelay,
		downloadDir:  opts.DownloadDir,
		email:        opts.Email,
		restoring:    opts.Client != nil,
	}
	m.stack = []*level{m.rootLevel()}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	if opts.StaticCursor {
		c.SetMode(cursor.CursorStatic)
	}
	m.filterCursor = c
	m.signIn = newSignInForm(m.email)
	m.registerHandlers()
	return m
}

func (m *Model) rootLevel() *level {
	return newLevel("root", "Main Menu", menu.RootItems(m.session), m.registry.Root())
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, nextBackendEvent(m.backend))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.client != nil {
		cmds = append(cmds, restoreSessionCmd(m.client))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Mode reports the screen currently shown.
func (m *Model) Mode() Mode {
	if m.mode == ModeMenu && m.currentList() != nil {
		return ModeList
	}
	return m.mode
}

// Update responds to Bubble Tea messages. A panic while handling msg switches
// to the fallback screen instead of tearing down the program.
func (m *Model) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.enterFallback("update", r)
			model, cmd = m, nil
		}
	}()
	cmds := make([]tea.Cmd, 0, 4)
	if c := m.updateFilterCursorModel(msg); c != nil {
		cmds = append(cmds, c)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if c := handler(msg); c != nil {
			cmds = append(cmds, c)
		}
		return m, m.finishUpdate(cmds)
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):           m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):    m.handleWindowSizeMsg,
		reflect.TypeOf(tea.MouseMsg{}):         m.handleMouseMsg,
		reflect.TypeOf(categoryLoadedMsg{}):    m.handleCategoryLoadedMsg,
		reflect.TypeOf(menu.ActionResult{}):    m.handleActionResultMsg,
		reflect.TypeOf(menu.OpenListMsg{}):     m.handleOpenListMsg,
		reflect.TypeOf(menu.OpenFormMsg{}):     m.handleOpenFormMsg,
		reflect.TypeOf(menu.SignedOutMsg{}):    m.handleSignedOutMsg,
		reflect.TypeOf(listing.LoadedMsg{}):    m.handleListLoadedMsg,
		reflect.TypeOf(listing.DeletedMsg{}):   m.handleDeletedMsg,
		reflect.TypeOf(debounce.Msg{}):         m.handleDebounceMsg,
		reflect.TypeOf(selector.LoadedMsg{}):   m.handleSelectorMsg,
		reflect.TypeOf(selector.ResolvedMsg{}): m.handleSelectorMsg,
		reflect.TypeOf(previewLoadedMsg{}):     m.handlePreviewLoadedMsg,
		reflect.TypeOf(formValuesMsg{}):        m.handleFormValuesMsg,
		reflect.TypeOf(recordSavedMsg{}):       m.handleRecordSavedMsg,
		reflect.TypeOf(signedInMsg{}):          m.handleSignedInMsg,
		reflect.TypeOf(sessionRestoredMsg{}):   m.handleSessionRestoredMsg,
		reflect.TypeOf(backendEventMsg{}):      m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):       m.handleBackendDoneMsg,
		reflect.TypeOf(command.PanicMsg{}):     m.handlePanicMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// finishUpdate batches the commands of one Update call. Every command is
// guarded so a panic inside it comes back as a command.PanicMsg.
func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	guarded := make([]tea.Cmd, 0, len(cmds))
	for _, cmd := range cmds {
		if cmd != nil {
			guarded = append(guarded, command.Guard("update", cmd))
		}
	}
	switch len(guarded) {
	case 0:
		return nil
	case 1:
		return guarded[0]
	}
	return tea.Batch(guarded...)
}

func (m *Model) handlePanicMsg(msg tea.Msg) tea.Cmd {
	p, ok := msg.(command.PanicMsg)
	if !ok {
		return nil
	}
	m.enterFallback(p.ID, p.Value)
	return nil
}

func (m *Model) enterFallback(where string, recovered interface{}) {
	events.App.Panic(where, recovered)
	m.mode = ModeFallback
	m.fallback = "Something went wrong."
	m.stopLoading()
}

// leaveFallback returns to the main menu, or to sign-in when the session is
// gone.
func (m *Model) leaveFallback() {
	m.fallback = ""
	m.closeAllLists()
	m.stack = []*level{m.rootLevel()}
	m.record = nil
	if m.session.SignedIn() {
		m.mode = ModeMenu
		return
	}
	m.mode = ModeSignIn
}
