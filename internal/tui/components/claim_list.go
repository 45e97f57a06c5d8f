package components

import (
	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/Veraticus/claimdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ClaimListModel shows the visible claims of a report as a table.
type ClaimListModel struct {
	theme  themes.Theme
	rows   []report.Row
	table  table.Model
	width  int
	height int
}

// NewClaimList creates an empty claim table.
func NewClaimList(theme themes.Theme) ClaimListModel {
	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return ClaimListModel{
		theme:  theme,
		table:  t,
		width:  80,
		height: 10,
	}
}

// Update forwards navigation keys to the table.
func (m ClaimListModel) Update(msg tea.Msg) (ClaimListModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table, or a placeholder when nothing matches.
func (m ClaimListModel) View() string {
	if len(m.rows) == 0 {
		return lipgloss.NewStyle().
			Foreground(m.theme.Muted).
			Width(m.width).
			Height(m.height).
			Render("No claims match the current filters.")
	}
	return m.table.View()
}

// SetRows replaces the visible claims, keeping the cursor on the same claim
// when it is still visible.
func (m *ClaimListModel) SetRows(rows []report.Row) {
	selectedID := ""
	if row, ok := m.Selected(); ok {
		selectedID = row.Claim.ID
	}

	m.rows = rows
	tableRows := make([]table.Row, 0, len(rows))
	cursor := 0
	for i, row := range rows {
		if row.Claim.ID == selectedID {
			cursor = i
		}
		tableRows = append(tableRows, buildRow(row))
	}
	m.table.SetRows(tableRows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

// Selected returns the claim under the cursor.
func (m ClaimListModel) Selected() (report.Row, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return report.Row{}, false
	}
	return m.rows[cursor], true
}

// Len returns the number of visible claims.
func (m ClaimListModel) Len() int {
	return len(m.rows)
}

// Resize fits the table into the given area.
func (m *ClaimListModel) Resize(width, height int) {
	m.width = width
	m.height = max(height, 3)
	m.table.SetColumns(columnsFor(width))
	m.table.SetHeight(m.height)
	m.table.SetWidth(width)
}

func buildRow(row report.Row) table.Row {
	c := row.Claim
	member := c.MemberName
	if member == "" {
		member = cli.Missing
	}
	policy := c.PolicyName
	if policy == "" {
		policy = cli.Missing
	}
	return table.Row{
		statusLabel(row.Status),
		c.ID,
		cli.FormatDate(c.CreatedAt),
		member,
		policy,
		cli.FormatRole(c.ProviderRole),
		cli.FormatAmount(c),
	}
}

func statusLabel(status model.Status) string {
	switch status {
	case model.StatusApproved:
		return "✓ approved"
	case model.StatusRejected:
		return "✗ rejected"
	default:
		return "… pending"
	}
}

// columnsFor splits the width between the columns, giving what is left to the
// member and policy names.
func columnsFor(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Status", Width: 10},
		{Title: "ID", Width: 10},
		{Title: "Date", Width: 10},
		{Title: "Provider", Width: 16},
		{Title: "Amount", Width: 12},
	}
	used := 0
	for _, col := range fixed {
		used += col.Width + 2
	}
	flexible := max((width-used-4)/2, 10)

	return []table.Column{
		fixed[0],
		fixed[1],
		fixed[2],
		{Title: "Member", Width: flexible},
		{Title: "Policy", Width: flexible},
		fixed[3],
		fixed[4],
	}
}
