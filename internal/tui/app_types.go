package tui

import (
	"time"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/model"
	"activities-cli/internal/syncctl"

	tea "github.com/charmbracelet/bubbletea"
)

type focusArea int

const (
	focusList focusArea = iota
	focusForm
)

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmUnregister
)

// fetchDoneMsg carries a GET /activities result and the ticket it was issued with.
type fetchDoneMsg struct {
	ticket syncctl.Ticket
	snap   model.Snapshot
	err    error
}

type mutationDoneMsg struct {
	outcome dispatch.Outcome
}

// feedbackHideMsg fires when a feedback message's TTL elapses.
type feedbackHideMsg struct{ ticket syncctl.Ticket }

type flashDoneMsg struct{ seq int }

// clockTickMsg re-renders the "synced ... ago" line.
type clockTickMsg struct{}

const clockInterval = 15 * time.Second

// tickFunc schedules fn after d. It is tea.Tick in production.
type tickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd
