package tui

import "github.com/Veraticus/claimdesk/internal/model"

// reportLoadedMsg reports the end of a refresh. The session already holds
// whatever snapshot survived; err says why the live fetch failed, if it did.
type reportLoadedMsg struct {
	err error
}

// actionDoneMsg reports the end of a claim mutation and the re-fetch after it.
type actionDoneMsg struct {
	err     error
	claimID string
	action  model.ActionType
}

// mode is what the keyboard is currently driving.
type mode int

const (
	modeBrowse mode = iota
	modePrompt
	modeConfirm
	modeHelp
)

// promptKind says what the text input is collecting.
type promptKind int

const (
	promptSearch promptKind = iota
	promptAmount
	promptDates
	promptReason
)
