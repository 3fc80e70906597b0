package ui

import tea "github.com/charmbracelet/bubbletea"

// Harness feeds messages to a Model and runs the commands it returns inline,
// so a test observes the settled state after every Send. Ticks and other
// commands that never return are not supported.
type Harness struct {
	model *Model
	quit  bool
}

func NewHarness(model *Model) *Harness {
	return &Harness{model: model}
}

// Send delivers msg and runs the resulting commands to completion.
func (h *Harness) Send(msg tea.Msg) {
	if h.model != nil && !h.quit {
		h.processCmd(h.deliver(msg))
	}
}

func (h *Harness) deliver(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	if m, ok := next.(*Model); ok {
		h.model = m
	}
	return cmd
}

// processCmd runs cmd and every command it leads to, depth first in batch
// order.
func (h *Harness) processCmd(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 && !h.quit {
		cmd, queue = queue[0], queue[1:]
		if cmd == nil {
			continue
		}
		switch msg := cmd().(type) {
		case nil:
		case tea.QuitMsg:
			h.quit = true
		case tea.BatchMsg:
			queue = append(append([]tea.Cmd{}, msg...), queue...)
		default:
			queue = append([]tea.Cmd{h.deliver(msg)}, queue...)
		}
	}
}

// Quit reports whether the model asked the program to exit.
func (h *Harness) Quit() bool { return h.quit }

func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

func (h *Harness) Model() *Model { return h.model }
