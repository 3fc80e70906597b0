package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// The screens below replace the menu entirely and are built from
// pre-rendered blocks.

func (m *Model) viewSignIn() string {
	blocks := []string{styles.Header.Render("Fleet-Flow"), "", m.signIn.View()}
	if m.signingIn || m.restoring {
		blocks = append(blocks, "", styles.Loading.Render("Signing in…"))
	}
	if info := m.currentInfo(); info != "" {
		blocks = append(blocks, "", styles.Info.Render(info))
	}
	return m.fitView(blocks)
}

func (m *Model) viewRecordForm() string {
	blocks := []string{styles.Header.Render(m.menuHeader()), ""}
	if m.record.loading {
		blocks = append(blocks, styles.Loading.Render("Loading…"))
		return m.fitView(blocks)
	}
	blocks = append(blocks, m.record.form.View())
	if m.record.saving {
		blocks = append(blocks, "", styles.Loading.Render("Saving…"))
	}
	return m.fitView(blocks)
}

func (m *Model) viewMessage(message string, style *lipgloss.Style, hint string) string {
	return m.fitView([]string{
		styles.Header.Render(m.menuHeader()),
		"",
		style.Render(message),
		"",
		styles.Help.Render(hint),
	})
}

func (m *Model) viewFallback() string {
	return m.fitView([]string{styles.Fallback.Render(m.fallback + "\n\nenter to return to the main menu, ctrl+c to quit")})
}

// fitView joins blocks and drops the rows below the terminal height.
func (m *Model) fitView(blocks []string) string {
	rows := strings.Split(strings.Join(blocks, "\n"), "\n")
	if m.height > 0 && len(rows) > m.height {
		rows = rows[:m.height]
	}
	return strings.Join(rows, "\n")
}
