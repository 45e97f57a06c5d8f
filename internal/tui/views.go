package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeHelp {
		return m.renderHelp()
	}

	body := m.list.View()
	if m.config.ShowSummary {
		if m.width >= 120 {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", m.summary.View())
		} else {
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.summary.View())
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderPromptLine(),
		m.renderStatusLine(),
		m.help.ShortHelpView(m.keymap.ShortHelp()),
	)
}

// renderHeader shows the title, the criteria that are cycled by single keys,
// and the active-filter badge.
func (m Model) renderHeader() string {
	c := m.session.Criteria()

	title := m.theme.Title.Render("Claims")
	switch m.session.Source() {
	case engine.SourceCached:
		title += " " + m.theme.StatusWarning.Render("(offline)")
	case engine.SourceNone:
		if !m.loading {
			title += " " + m.theme.StatusPending.Render("(no data)")
		}
	}

	parts := []string{
		"status: " + string(c.StatusScope),
		"sort: " + string(c.SortKey),
		"role: " + string(c.ProviderFilter),
		"policy: " + c.PolicyFilter,
	}
	line := m.theme.Subtitle.Render(strings.Join(parts, "  "))
	if badge := m.summary.Badge(); badge != "" {
		line += "  " + badge
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, line)
}

func (m Model) renderPromptLine() string {
	switch m.mode {
	case modePrompt:
		return m.input.View()
	case modeConfirm:
		return m.theme.Bold.Render(actionQuestion(m.pendingAction, m.pendingClaim)) + " " +
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("[y/n]")
	default:
		return ""
	}
}

func (m Model) renderStatusLine() string {
	text := m.status
	if m.loading {
		text = fmt.Sprintf("%s %s", m.spinner.View(), text)
	}
	if m.statusIsError {
		return m.theme.StatusError.Render(text)
	}
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(text)
}

func (m Model) renderHelp() string {
	full := m.help
	full.ShowAll = true
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("Keys"),
		"",
		full.View(m.keymap),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press any key to return"),
	)
	return m.theme.RoundedBox.Render(content)
}
