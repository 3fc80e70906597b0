package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	"github.com/PawelWisn/Fleet-Flow/internal/resource"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/form"
	"github.com/PawelWisn/Fleet-Flow/internal/ui/selector"
	tea "github.com/charmbracelet/bubbletea"
)

// recordForm is an open create or edit form.
type recordForm struct {
	desc    resource.Descriptor
	id      int
	form    *form.Form
	seq     int
	loading bool
	saving  bool
	// list is the screen refreshed after a successful save.
	list uint64
}

type formValuesMsg struct {
	seq    int
	values map[string]any
	err    error
}

type recordSavedMsg struct {
	seq    int
	values map[string]any
	err    error
}

// openForm shows the create form (id == 0) or loads the record into the edit
// form.
func (m *Model) openForm(desc resource.Descriptor, id int) tea.Cmd {
	if !desc.CanManage(m.session) {
		events.Session.Forbidden(desc.Name)
		m.errMsg = "Permission denied"
		return nil
	}
	m.formSeq++
	rf := &recordForm{desc: desc, id: id, form: desc.NewForm(m.env(), id), seq: m.formSeq}
	if v := m.currentList(); v != nil && v.desc.Name == desc.Name {
		rf.list = v.screen.Instance()
	}
	m.record = rf
	m.mode = ModeForm
	m.errMsg = ""
	m.forceClearInfo()
	if id == 0 {
		events.UI.Screen(desc.Name + ":new")
		return nil
	}
	events.UI.Screen(desc.Name + ":edit")
	rf.loading = true
	client := m.client
	seq := rf.seq
	return func() tea.Msg {
		if client == nil {
			return formValuesMsg{seq: seq, err: fmt.Errorf("%s: no api client", desc.Name)}
		}
		values, err := desc.Values(context.Background(), client, id)
		return formValuesMsg{seq: seq, values: values, err: err}
	}
}

func (m *Model) handleOpenFormMsg(msg tea.Msg) tea.Cmd {
	open, ok := msg.(menu.OpenFormMsg)
	if !ok {
		return nil
	}
	m.stopLoading()
	desc, found := resource.Find(open.Resource)
	if !found {
		m.errMsg = fmt.Sprintf("Unknown resource %q", open.Resource)
		return nil
	}
	return m.openForm(desc, open.ID)
}

func (m *Model) handleFormValuesMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(formValuesMsg)
	if !ok {
		return nil
	}
	rf := m.record
	if rf == nil || rf.seq != loaded.seq {
		return nil
	}
	rf.loading = false
	if loaded.err != nil {
		if cmd, handled := m.escalate(loaded.err); handled {
			return cmd
		}
		if api.KindOf(loaded.err) == api.KindNotFound {
			m.showNotFound(fmt.Sprintf("%s #%d was not found.", rf.desc.Singular, rf.id))
			return nil
		}
		rf.form.SetError(userMessage(loaded.err, "load "+rf.desc.Singular))
		return nil
	}
	return rf.form.SetValues(loaded.values)
}

// handleRecordFormMsg feeds keys and selector results to the open form.
func (m *Model) handleRecordFormMsg(msg tea.Msg) tea.Cmd {
	rf := m.record
	if rf == nil {
		m.mode = ModeMenu
		return nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" {
			return tea.Quit
		}
		if rf.saving || rf.loading {
			if keyMsg.Type == tea.KeyEsc && rf.loading {
				m.closeForm()
			}
			return nil
		}
	}
	cmd, done, cancel := rf.form.Update(msg)
	if cancel {
		m.closeForm()
		return cmd
	}
	if done {
		rf.saving = true
		rf.form.SetError("")
		return tea.Batch(cmd, m.saveCmd(rf))
	}
	return cmd
}

func (m *Model) saveCmd(rf *recordForm) tea.Cmd {
	client := m.client
	desc := rf.desc
	id := rf.id
	f := rf.form
	seq := rf.seq
	return func() tea.Msg {
		if client == nil {
			return recordSavedMsg{seq: seq, err: fmt.Errorf("%s: no api client", desc.Name)}
		}
		values, err := desc.Save(context.Background(), client, id, f)
		return recordSavedMsg{seq: seq, values: values, err: err}
	}
}

func (m *Model) handleRecordSavedMsg(msg tea.Msg) tea.Cmd {
	saved, ok := msg.(recordSavedMsg)
	if !ok {
		return nil
	}
	rf := m.record
	if rf == nil || rf.seq != saved.seq {
		return nil
	}
	rf.saving = false
	if err := saved.err; err != nil {
		events.Action.Error(err)
		if cmd, handled := m.escalate(err); handled {
			return cmd
		}
		switch {
		case errors.Is(err, resource.ErrNoFile):
			rf.form.SetFieldErrors(map[string]string{"file": "Choose a file to upload"})
			rf.form.SetError("Check your inputs")
		case api.KindOf(err) == api.KindValidation:
			rf.form.SetError("Check your inputs")
			if fields := api.FieldErrors(err); len(fields) > 0 {
				rf.form.SetFieldErrors(fields)
			}
		case api.KindOf(err) == api.KindNotFound && rf.id != 0:
			m.showNotFound(fmt.Sprintf("%s #%d was not found.", rf.desc.Singular, rf.id))
		default:
			rf.form.SetError(userMessage(err, "save "+rf.desc.Singular))
		}
		return nil
	}
	verb := "Created"
	if rf.id != 0 {
		verb = "Saved"
	}
	info := fmt.Sprintf("%s %s", verb, rf.desc.Singular)
	events.Action.Success(info)
	m.closeForm()
	m.setInfo(info)
	if lvl := m.findList(rf.list); lvl != nil {
		m.clearPreview(lvl.ID)
		return listFor(lvl).screen.Load()
	}
	return nil
}

func (m *Model) closeForm() {
	m.record = nil
	m.mode = ModeMenu
}

func (m *Model) handleSelectorMsg(msg tea.Msg) tea.Cmd {
	if m.mode != ModeForm || m.record == nil {
		return nil
	}
	cmd, _, _ := m.record.form.Update(msg)
	if escalated, handled := m.escalate(selectorErr(msg)); handled {
		return escalated
	}
	return cmd
}

// selectorErr reports the query error carried by a selector message. The
// selector keeps its last options on failure; an expired session still ends
// the form.
func selectorErr(msg tea.Msg) error {
	switch msg := msg.(type) {
	case selector.LoadedMsg:
		return msg.Err
	case selector.ResolvedMsg:
		return msg.Err
	}
	return nil
}

func (m *Model) showNotFound(message string) {
	m.record = nil
	m.notFound = message
	m.mode = ModeNotFound
}

func (m *Model) handleNotFoundKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "enter":
		m.notFound = ""
		m.mode = ModeMenu
		if v := m.currentList(); v != nil {
			return v.screen.Load()
		}
	}
	return nil
}
