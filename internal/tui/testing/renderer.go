// Package testing provides test utilities for TUI models.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TestRenderer drives a Bubble Tea model without a terminal. Commands returned
// by an update are run once and their messages fed back; commands produced by
// those follow-up updates are dropped, so tickers never loop.
type TestRenderer struct {
	// Output contains the last rendered view
	Output string

	// Messages contains every message delivered to the model
	Messages []tea.Msg

	// UpdateCount tracks how many times Update was called
	UpdateCount int
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{}
}

// Render renders the model and captures its output.
func (r *TestRenderer) Render(model tea.Model) string {
	r.Output = model.View()
	return r.Output
}

// Update delivers one message and captures the result without running commands.
func (r *TestRenderer) Update(model tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	r.Messages = append(r.Messages, msg)
	r.UpdateCount++

	next, cmd := model.Update(msg)
	r.Output = next.View()
	return next, cmd
}

// Send delivers each message in turn, settling the commands each one returns.
func (r *TestRenderer) Send(model tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		var cmd tea.Cmd
		model, cmd = r.Update(model, msg)
		model = r.Run(model, cmd)
	}
	return model
}

// Run executes cmd, expanding batches, and feeds the resulting messages to the model.
func (r *TestRenderer) Run(model tea.Model, cmd tea.Cmd) tea.Model {
	for _, msg := range collect(cmd) {
		model, _ = r.Update(model, msg)
	}
	return model
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
