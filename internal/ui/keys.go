package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the menu and list screens. Printable keys
// belong to the filter, so every list command sits on a control key.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	Enter    key.Binding
	Back     key.Binding
	Quit     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	PageSize key.Binding
	Status   key.Binding
	Retry    key.Binding
	New      key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Home:     key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
		End:      key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		PrevPage: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next page")),
		PageSize: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "page size")),
		Status:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "status")),
		Retry:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry")),
		New:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Confirm:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	}
}

func (k keyMap) menuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Quit}
}

// listHelp hides bindings the current list cannot use.
func (k keyMap) listHelp(v *listView, canManage bool) []key.Binding {
	bindings := []key.Binding{k.Enter}
	if v == nil || v.screen.Pager().HasPrev() {
		bindings = append(bindings, k.PrevPage)
	}
	if v == nil || v.screen.Pager().HasNext() {
		bindings = append(bindings, k.NextPage)
	}
	bindings = append(bindings, k.PageSize)
	if v != nil && v.desc.FilterKey != "" {
		bindings = append(bindings, k.Status)
	}
	if canManage {
		bindings = append(bindings, k.New, k.Delete)
	}
	if v != nil && v.screen.Err() != nil {
		bindings = append(bindings, k.Retry)
	}
	return append(bindings, k.Back)
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}
