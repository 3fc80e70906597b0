package ui

import (
	"unicode"

	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	uistate "github.com/PawelWisn/Fleet-Flow/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterEdits are the keys that move the caret or delete from the filter
// line. Everything printable is typed into it.
var filterEdits = map[string]uistate.Edit{
	"ctrl+u":    uistate.EditClear,
	"ctrl+w":    uistate.EditDeleteWord,
	"ctrl+a":    uistate.EditHome,
	"ctrl+e":    uistate.EditEnd,
	"alt+b":     uistate.EditWordLeft,
	"alt+f":     uistate.EditWordRight,
	"left":      uistate.EditLeft,
	"right":     uistate.EditRight,
	"backspace": uistate.EditBackspace,
	"ctrl+h":    uistate.EditBackspace,
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

// handleTextInput applies msg to the filter of the current level. Keys that
// change nothing are reported as unhandled so navigation can use them.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.currentLevel()
	if m.loading || current == nil {
		return false, nil
	}
	caret := current.Query.Caret()
	if edit, ok := filterEdits[msg.String()]; ok {
		if !current.EditQuery(edit) {
			return false, nil
		}
		events.Filter.Edit(current.ID, edit.String(), current.Filter(), current.Query.Caret())
		if !edit.Mutates() {
			m.caretMoved(current, caret)
			return true, nil
		}
		return true, m.filterEdited(current, caret)
	}
	text, ok := typedText(msg)
	if !ok || !current.InsertQuery(text) {
		return false, nil
	}
	events.Filter.Type(current.ID, current.Filter())
	return true, m.filterEdited(current, caret)
}

// typedText returns the printable text carried by msg.
func typedText(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return " ", true
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return "", false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return "", false
			}
		}
		return string(msg.Runes), true
	}
	return "", false
}

// caretMoved restarts the caret blink when the caret left caretBefore.
func (m *Model) caretMoved(l *level, caretBefore int) {
	if caretBefore != l.Query.Caret() {
		m.filterCursorDirty = true
	}
}

// filterEdited runs after the filter text changed. List levels pass the text
// on to their screen as the search term.
func (m *Model) filterEdited(l *level, caretBefore int) tea.Cmd {
	m.caretMoved(l, caretBefore)
	m.forceClearInfo()
	m.errMsg = ""
	m.syncViewport(l)
	if levelHasPreview(l) {
		return tea.Batch(m.searchChanged(l), m.ensurePreviewForLevel(l))
	}
	return nil
}

// clearFilter empties the filter of l without a search; used when a level is
// left through enter.
func (m *Model) clearFilter(l *level) {
	caret := l.Query.Caret()
	l.SetQuery("", 0)
	m.caretMoved(l, caret)
}

// filterPrompt renders the filter line: the typed text with the caret drawn
// over the rune it sits on, or a placeholder.
func (m *Model) filterPrompt() (string, *lipgloss.Style) {
	m.styleFilterCursor()
	prompt := "» "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	current := m.currentLevel()
	if current == nil {
		return prompt, styles.Filter
	}
	text := []rune(current.Filter())
	if len(text) == 0 {
		placeholder := []rune(m.filterPlaceholder(current))
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		return prompt + m.renderFilterCursor(string(placeholder[:1])) + renderWith(styles.FilterPlaceholder, string(placeholder[1:])), nil
	}
	caret := current.Query.Caret()
	under, after := " ", ""
	if caret < len(text) {
		under = string(text[caret])
		after = string(text[caret+1:])
	}
	return prompt + renderWith(styles.Filter, string(text[:caret])) + m.renderFilterCursor(under) + renderWith(styles.Filter, after), nil
}

func (m *Model) filterPlaceholder(l *level) string {
	if v := listFor(l); v != nil && v.desc.Searchable {
		return "(type to search)"
	}
	return "(type to filter)"
}

func (m *Model) styleFilterCursor() {
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	m.filterCursor.TextStyle = lipgloss.Style{}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	}
}

func renderWith(style *lipgloss.Style, value string) string {
	if style == nil || value == "" {
		return value
	}
	return style.Render(value)
}

// renderFilterCursor draws char as the caret. A blinking caret in its off
// phase shows the plain character.
func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)
	base := m.filterCursor.TextStyle.Copy().Inline(true)
	switch {
	case m.filterCursor.Blink:
		return base.Render(char)
	case styles.Cursor != nil:
		return base.Inherit(styles.Cursor.Copy().Inline(true)).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
