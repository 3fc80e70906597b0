package command

import (
	"fmt"

	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
)

// Request is one invocation of a menu action on an item.
type Request struct {
	ID      string
	Label   string
	Handler menu.Action
	Item    menu.Item
}

// PanicMsg replaces the message of a command that panicked.
type PanicMsg struct {
	ID    string
	Value interface{}
}

// Bus runs menu actions off the update loop and traces their lifecycle.
type Bus struct{}

func New() *Bus {
	return &Bus{}
}

// Execute returns a command running req. The handler's own command is run
// inline so its result message is traced with the request.
func (b *Bus) Execute(ctx menu.Context, req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return Guard(req.ID, func() tea.Msg { return b.run(ctx, req) })
}

func (b *Bus) run(ctx menu.Context, req Request) tea.Msg {
	if req.Handler == nil {
		events.Command.Skip(req.ID, req.Label)
		return nil
	}
	cmd := req.Handler(ctx, req.Item)
	if cmd == nil {
		events.Command.NoOp(req.ID, req.Label)
		return nil
	}
	msg := cmd()
	events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
	return msg
}

// Guard converts a panic in cmd into a PanicMsg. Commands of a returned
// batch are guarded as well.
func Guard(id string, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() (msg tea.Msg) {
		defer recoverInto(id, &msg)
		msg = cmd()
		batch, ok := msg.(tea.BatchMsg)
		if !ok {
			return msg
		}
		guarded := make(tea.BatchMsg, len(batch))
		for i, c := range batch {
			guarded[i] = Guard(id, c)
		}
		return guarded
	}
}

func recoverInto(id string, msg *tea.Msg) {
	r := recover()
	if r == nil {
		return
	}
	events.Command.Panic(id, r)
	logging.Error(fmt.Errorf("command %s panicked: %v", id, r))
	*msg = PanicMsg{ID: id, Value: r}
}
