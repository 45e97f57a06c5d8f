package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/claimdesk/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// refresh fetches the report in the background.
func (m Model) refresh() tea.Cmd {
	return m.load(m.session.Refresh)
}

// reload re-fetches on the user's request, bypassing any client-side cache.
func (m Model) reload() tea.Cmd {
	return m.load(m.session.Reload)
}

func (m Model) load(fetch func(context.Context) error) tea.Cmd {
	ctx, timeout := m.ctx, m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return reportLoadedMsg{err: fetch(ctx)}
	}
}

// runAction sends one claim mutation in the background. The session re-fetches
// on success, so the message only carries the outcome.
func (m Model) runAction(action model.ActionType, claimID, reason string) tea.Cmd {
	session := m.session
	ctx, timeout := m.ctx, m.config.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		switch action {
		case model.ActionMarkPaid:
			err = session.MarkAsPaid(ctx, claimID)
		case model.ActionReturnForReview:
			err = session.ReturnForReview(ctx, claimID, reason)
		case model.ActionApprove:
			err = session.Approve(ctx, claimID)
		case model.ActionReject:
			err = session.Reject(ctx, claimID, reason)
		default:
			err = fmt.Errorf("unsupported action %q", action)
		}
		return actionDoneMsg{action: action, claimID: claimID, err: err}
	}
}

// actionVerb describes a finished action for the status line.
func actionVerb(action model.ActionType) string {
	switch action {
	case model.ActionMarkPaid:
		return "marked as paid"
	case model.ActionReturnForReview:
		return "returned for review"
	case model.ActionApprove:
		return "approved"
	case model.ActionReject:
		return "rejected"
	default:
		return string(action)
	}
}

// actionQuestion is asked before an action that takes no reason.
func actionQuestion(action model.ActionType, claimID string) string {
	switch action {
	case model.ActionMarkPaid:
		return fmt.Sprintf("Mark claim %s as paid?", claimID)
	case model.ActionApprove:
		return fmt.Sprintf("Approve claim %s?", claimID)
	default:
		return fmt.Sprintf("Apply %s to claim %s?", action, claimID)
	}
}
