package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/Veraticus/claimdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// SummaryPanelModel displays the counts and totals of the visible claims and
// how many filters are in effect.
type SummaryPanelModel struct {
	theme       themes.Theme
	filters     []string
	progressBar progress.Model
	summary     report.Summary
	activeCount int
	active      bool
	width       int
	compact     bool
}

// NewSummaryPanel creates an empty summary panel.
func NewSummaryPanel(theme themes.Theme) SummaryPanelModel {
	prog := progress.New(progress.WithSolidFill(string(theme.Success)))
	prog.ShowPercentage = false
	prog.Width = 30

	return SummaryPanelModel{
		theme:       theme,
		progressBar: prog,
		width:       40,
	}
}

// SetSummary replaces the summary shown.
func (m *SummaryPanelModel) SetSummary(summary report.Summary) {
	m.summary = summary
}

// SetFilters records the active-filter count, whether anything differs from
// defaults, and a short description of each change.
func (m *SummaryPanelModel) SetFilters(count int, active bool, descriptions []string) {
	m.activeCount = count
	m.active = active
	m.filters = descriptions
}

// SetCompact switches between the one-line and the boxed layout.
func (m *SummaryPanelModel) SetCompact(compact bool) {
	m.compact = compact
}

// Resize sets the panel width.
func (m *SummaryPanelModel) Resize(width int) {
	m.width = width
	m.progressBar.Width = max(min(width-4, 40), 10)
}

// Badge renders the active-filter indicator, or nothing when the view is unfiltered.
func (m SummaryPanelModel) Badge() string {
	if !m.active {
		return ""
	}
	if m.activeCount == 0 {
		return m.theme.Badge.Render("scoped")
	}
	label := "filter"
	if m.activeCount > 1 {
		label = "filters"
	}
	return m.theme.Badge.Render(fmt.Sprintf("%d %s", m.activeCount, label))
}

// View renders the panel.
func (m SummaryPanelModel) View() string {
	if m.compact {
		return m.renderCompact()
	}
	return m.renderFull()
}

func (m SummaryPanelModel) renderCompact() string {
	s := m.summary
	line := fmt.Sprintf("%d claims | %s %s | %s %s | %s %s",
		s.TotalClaims,
		m.theme.StatusSuccess.Render("✓"), cli.FormatMoney(s.TotalApprovedAmount),
		m.theme.StatusError.Render("✗"), cli.FormatMoney(s.TotalRejectedAmount),
		m.theme.StatusWarning.Render("…"), cli.FormatMoney(s.TotalPendingAmount),
	)
	if badge := m.Badge(); badge != "" {
		line += " " + badge
	}
	return line
}

func (m SummaryPanelModel) renderFull() string {
	s := m.summary

	items := []struct {
		style  lipgloss.Style
		label  string
		count  int
		amount float64
	}{
		{style: m.theme.StatusSuccess, label: "Approved", count: s.ApprovedClaims, amount: s.TotalApprovedAmount},
		{style: m.theme.StatusError, label: "Rejected", count: s.RejectedClaims, amount: s.TotalRejectedAmount},
		{style: m.theme.StatusWarning, label: "Pending", count: s.PendingClaims, amount: s.TotalPendingAmount},
	}

	lines := []string{
		m.theme.Title.Render(fmt.Sprintf("%d claims", s.TotalClaims)),
	}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%-9s %s %12s",
			item.label+":",
			item.style.Render(fmt.Sprintf("%4d", item.count)),
			cli.FormatMoney(item.amount),
		))
	}

	lines = append(lines, "", m.theme.Subtitle.Render("Approved share of amount"), m.progressBar.ViewAs(approvedShare(s)))

	if m.active {
		lines = append(lines, "", m.Badge())
		for _, f := range m.filters {
			lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.Muted).Render("• "+f))
		}
	}

	return m.theme.RoundedBox.Width(m.width).Render(strings.Join(lines, "\n"))
}

func approvedShare(s report.Summary) float64 {
	total := s.TotalApprovedAmount + s.TotalRejectedAmount + s.TotalPendingAmount
	if total <= 0 {
		return 0
	}
	return s.TotalApprovedAmount / total
}
