package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/claimdesk/internal/cli"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/report"
	"github.com/Veraticus/claimdesk/internal/tui/components"
	"github.com/Veraticus/claimdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the claims browser. All filtering happens in the session; the model
// only forwards key presses to one session setter each and re-renders.
type Model struct {
	ctx           context.Context
	session       *engine.Session
	theme         themes.Theme
	keymap        KeyMap
	help          help.Model
	spinner       spinner.Model
	list          components.ClaimListModel
	summary       components.SummaryPanelModel
	input         textinput.Model
	status        string
	savedQuery    string
	pendingClaim  string
	pendingAction model.ActionType
	config        Config
	width         int
	height        int
	mode          mode
	prompt        promptKind
	loading       bool
	statusIsError bool
	quitting      bool
}

// NewModel creates a browser over the session. Init starts the first fetch.
func NewModel(ctx context.Context, session *engine.Session, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.CharLimit = 80
	input.Cursor.SetMode(cursor.CursorStatic)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		session: session,
		config:  cfg,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: spin,
		list:    components.NewClaimList(cfg.Theme),
		summary: components.NewSummaryPanel(cfg.Theme),
		input:   input,
		width:   cfg.Width,
		height:  cfg.Height,
		mode:    modeBrowse,
		loading: true,
	}
	m.handleResize()
	m.sync()
	return m
}

// Init starts the spinner and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reportLoadedMsg:
		m.loading = false
		m.sync()
		if msg.err != nil {
			m.setError(m.loadFailure(msg.err))
		} else {
			m.setStatus(fmt.Sprintf("Loaded %d claims", m.session.Snapshot().Len()))
		}
		return m, nil

	case actionDoneMsg:
		m.loading = false
		m.sync()
		if msg.err != nil {
			m.setError(fmt.Sprintf("Claim %s: %s", msg.claimID, common.UserMessage(msg.err)))
		} else {
			m.setStatus(fmt.Sprintf("Claim %s %s", msg.claimID, actionVerb(msg.action)))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.handlePromptKeys(msg)
		case modeConfirm:
			return m.handleConfirmKeys(msg)
		case modeHelp:
			m.mode = modeBrowse
			return m, nil
		default:
			return m.handleBrowseKeys(msg)
		}
	}

	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.setStatus("Refreshing…")
		return m, tea.Batch(m.spinner.Tick, m.reload())

	case key.Matches(msg, m.keymap.Search):
		m.savedQuery = m.session.Criteria().SearchQuery
		return m.openPrompt(promptSearch, "Search: ", m.savedQuery), nil

	case key.Matches(msg, m.keymap.Amount):
		c := m.session.Criteria()
		return m.openPrompt(promptAmount, "Amount (min-max): ", formatAmountRange(c)), nil

	case key.Matches(msg, m.keymap.Dates):
		return m.openPrompt(promptDates, "Dates (YYYY-MM-DD..YYYY-MM-DD): ", formatDateRange(m.session.Criteria())), nil

	case key.Matches(msg, m.keymap.CycleScope):
		m.session.SetStatusScope(next(report.Scopes, m.session.Criteria().StatusScope))
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.CycleSort):
		m.session.SetSortKey(next(report.SortKeys, m.session.Criteria().SortKey))
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.CycleRole):
		m.session.SetProviderFilter(next(report.ProviderFilters, m.session.Criteria().ProviderFilter))
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.CyclePolicy):
		policies := append([]string{report.PolicyAll}, m.session.Policies()...)
		m.session.SetPolicyFilter(next(policies, m.session.Criteria().PolicyFilter))
		m.sync()
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.session.Clear()
		m.sync()
		m.setStatus("Filters cleared")
		return m, nil

	case key.Matches(msg, m.keymap.MarkPaid):
		return m.startAction(model.ActionMarkPaid), nil

	case key.Matches(msg, m.keymap.Approve):
		return m.startAction(model.ActionApprove), nil

	case key.Matches(msg, m.keymap.Return):
		return m.startAction(model.ActionReturnForReview), nil

	case key.Matches(msg, m.keymap.Reject):
		return m.startAction(model.ActionReject), nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// startAction asks for a reason or a confirmation before touching the claim
// under the cursor.
func (m Model) startAction(action model.ActionType) Model {
	if m.loading {
		m.setError("Wait for the current request to finish")
		return m
	}
	row, ok := m.list.Selected()
	if !ok {
		m.setError("No claim selected")
		return m
	}

	m.pendingAction = action
	m.pendingClaim = row.Claim.ID
	if action.RequiresReason() {
		return m.openPrompt(promptReason, fmt.Sprintf("Reason to %s claim %s: ", actionName(action), row.Claim.ID), "")
	}
	m.mode = modeConfirm
	return m
}

func (m Model) openPrompt(kind promptKind, label, value string) Model {
	m.mode = modePrompt
	m.prompt = kind
	m.input.Prompt = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

func (m Model) closePrompt() Model {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		if m.prompt == promptSearch {
			m.session.SetSearchQuery(m.savedQuery)
			m.sync()
		}
		return m.closePrompt(), nil

	case key.Matches(msg, m.keymap.Confirm):
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.prompt == promptSearch {
		m.session.SetSearchQuery(m.input.Value())
		m.sync()
	}
	return m, cmd
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	switch m.prompt {
	case promptSearch:
		m.session.SetSearchQuery(value)

	case promptAmount:
		minAmount, maxAmount, err := parseAmountRange(value, m.session.Criteria().Ceiling())
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.session.SetAmountRange(minAmount, maxAmount)

	case promptDates:
		from, to, err := parseDateRange(value)
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.session.SetDateFrom(from)
		m.session.SetDateTo(to)

	case promptReason:
		reason := strings.TrimSpace(value)
		if reason == "" {
			m.setError("A reason is required")
			return m, nil
		}
		m = m.closePrompt()
		m.loading = true
		m.setStatus(fmt.Sprintf("Sending claim %s…", m.pendingClaim))
		return m, tea.Batch(m.spinner.Tick, m.runAction(m.pendingAction, m.pendingClaim, reason))
	}

	m = m.closePrompt()
	m.sync()
	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = modeBrowse
		m.loading = true
		m.setStatus(fmt.Sprintf("Sending claim %s…", m.pendingClaim))
		return m, tea.Batch(m.spinner.Tick, m.runAction(m.pendingAction, m.pendingClaim, ""))
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.setStatus("Cancelled")
	}
	return m, nil
}

// sync copies the session's current result into the table and summary panel.
func (m *Model) sync() {
	m.list.SetRows(m.session.Result().Rows())
	m.summary.SetSummary(m.session.Result().Summary)
	m.summary.SetFilters(
		m.session.ActiveCount(),
		m.session.IsActive(),
		cli.DescribeCriteria(m.session.Criteria(), m.session.Defaults()),
	)
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	const chrome = 6 // header, prompt line, status line, help line and spacing
	if !m.config.ShowSummary {
		m.list.Resize(m.width, m.height-chrome)
		return
	}

	if m.width >= 120 {
		panel := 38
		m.summary.SetCompact(false)
		m.summary.Resize(panel)
		m.list.Resize(m.width-panel-4, m.height-chrome)
		return
	}

	m.summary.SetCompact(true)
	m.summary.Resize(m.width)
	m.list.Resize(m.width, m.height-chrome-1)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusIsError = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusIsError = true
}

func (m Model) loadFailure(err error) string {
	msg := "Could not load claims: " + common.UserMessage(err)
	switch m.session.Source() {
	case engine.SourceCached:
		snap := m.session.Snapshot()
		return fmt.Sprintf("%s (showing saved snapshot from %s)", msg, snap.FetchedAt.Local().Format("2006-01-02 15:04"))
	case engine.SourceLive:
		return msg + " (showing the last report received)"
	default:
		return msg
	}
}

func actionName(action model.ActionType) string {
	if action == model.ActionReturnForReview {
		return "return"
	}
	return string(action)
}
