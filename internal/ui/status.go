package ui

import (
	"fmt"
	"strings"
	"time"
)

const infoTTL = 5 * time.Second

// setInfo shows message below the menu. It survives clearInfo until infoTTL
// has passed.
func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(infoTTL)
}

func (m *Model) clearInfo() {
	if m.infoExpire.IsZero() || time.Now().After(m.infoExpire) {
		m.forceClearInfo()
	}
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.forceClearInfo()
	}
	return m.infoMsg
}

// statusLine is the first row of the bottom bar. Pending confirmations win
// over errors, errors over progress and progress over connection problems.
func (m *Model) statusLine() textLine {
	v := m.currentList()
	if m.mode == ModeConfirm && v != nil {
		if row, ok := v.screen.PendingDelete(); ok {
			return textLine{text: fmt.Sprintf("Delete %s? (y/n)", row.Label), style: styles.Confirm}
		}
	}
	switch {
	case m.errMsg != "":
		return textLine{text: "Error: " + m.errMsg, style: styles.Error}
	case m.loading && m.pendingLabel != "":
		return textLine{text: fmt.Sprintf("Loading %s…", m.pendingLabel), style: styles.Loading}
	case v != nil && v.screen.Deleting():
		return textLine{text: "Deleting…", style: styles.Loading}
	}
	if msg, failing := m.health.problem(); failing {
		return textLine{text: "Connection problem: " + msg, style: styles.Warning}
	}
	return textLine{}
}

func (m *Model) footerText() string {
	if m.mode == ModeConfirm {
		return m.help.ShortHelpView(m.keys.confirmHelp())
	}
	if v := m.currentList(); v != nil {
		return m.help.ShortHelpView(m.keys.listHelp(v, v.desc.CanManage(m.session)))
	}
	return m.help.ShortHelpView(m.keys.menuHelp())
}

// titleLines is the breadcrumb followed, once signed in, by the account line.
func (m *Model) titleLines() []textLine {
	var lines []textLine
	if header := m.menuHeader(); header != "" {
		lines = append(lines, textLine{text: header, style: styles.Header})
	}
	if account := m.accountLine(); account != "" {
		lines = append(lines, textLine{text: account, style: styles.Help})
	}
	return lines
}

func (m *Model) accountLine() string {
	if m.session == nil {
		return ""
	}
	user, ok := m.session.User()
	if !ok {
		return ""
	}
	parts := []string{fmt.Sprintf("%s (%s)", user.DisplayLabel(), user.Role)}
	if n := m.upcoming.Total(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d upcoming", n))
	}
	return strings.Join(parts, " • ")
}
