package ui

import (
	"strings"
	"testing"

	"github.com/PawelWisn/Fleet-Flow/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel() *Model {
	return NewModel(Options{StaticCursor: true})
}

func TestHandleTextInputAppendsRunes(t *testing.T) {
	m := newTestModel()
	current := m.currentLevel()
	current.UpdateItems([]menu.Item{{ID: "one", Label: "one"}})
	handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	if !handled {
		t.Fatalf("expected key press to be handled")
	}
	if current.Filter() != "abc" {
		t.Fatalf("expected filter 'abc', got %q", current.Filter())
	}
	if pos := current.Query.Caret(); pos != 3 {
		t.Fatalf("expected cursor at end, got %d", pos)
	}
}

func TestHandleTextInputCursorMovement(t *testing.T) {
	m := newTestModel()
	current := m.currentLevel()
	current.UpdateItems([]menu.Item{{ID: "one", Label: "one"}})
	current.SetQuery("abc", 3)

	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyLeft}); !handled {
		t.Fatalf("expected left arrow to be handled")
	}
	if pos := current.Query.Caret(); pos != 2 {
		t.Fatalf("expected cursor at 2 after left, got %d", pos)
	}

	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyRight}); !handled {
		t.Fatalf("expected right arrow to be handled")
	}
	if pos := current.Query.Caret(); pos != 3 {
		t.Fatalf("expected cursor back at 3, got %d", pos)
	}
}

func TestHandleTextInputIgnoredWhileLoading(t *testing.T) {
	m := newTestModel()
	m.loading = true
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); handled {
		t.Fatalf("expected input to be ignored while loading")
	}
}

func TestFilterPromptPlaceholder(t *testing.T) {
	m := newTestModel()
	current := m.currentLevel()
	current.SetQuery("", 0)
	prompt, _ := m.filterPrompt()
	if !strings.Contains(prompt, "type to filter") {
		t.Fatalf("expected placeholder in prompt, got %q", prompt)
	}
}

func TestHandleTextInputEditKeys(t *testing.T) {
	m := newTestModel()
	current := m.currentLevel()
	current.UpdateItems([]menu.Item{{ID: "one", Label: "one"}})
	current.SetQuery("ford focus", 10)

	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlW}); !handled {
		t.Fatalf("expected ctrl+w to be handled")
	}
	if current.Filter() != "ford " {
		t.Fatalf("expected last word deleted, got %q", current.Filter())
	}
	m.handleTextInput(tea.KeyMsg{Type: tea.KeyBackspace})
	if current.Filter() != "ford" {
		t.Fatalf("expected trailing space removed, got %q", current.Filter())
	}
	m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlU})
	if current.Filter() != "" {
		t.Fatalf("expected filter cleared, got %q", current.Filter())
	}
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyCtrlU}); handled {
		t.Fatalf("clearing an empty filter should fall through")
	}
}

func TestHandleTextInputRejectsAltRunes(t *testing.T) {
	m := newTestModel()
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}); handled {
		t.Fatalf("expected alt+x to fall through")
	}
	if handled, _ := m.handleTextInput(tea.KeyMsg{Type: tea.KeySpace}); !handled {
		t.Fatalf("expected space to be typed")
	}
	if got := m.currentLevel().Filter(); got != " " {
		t.Fatalf("expected a space in the filter, got %q", got)
	}
}
