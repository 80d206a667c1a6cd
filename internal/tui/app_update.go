package tui

import (
	"log/slog"
	"strings"
	"time"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/syncctl"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const flashDuration = 2 * time.Second

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case fetchDoneMsg:
		var applied bool
		m.state, applied = m.state.ApplyFetch(msg.ticket, msg.snap, msg.err, m.now())
		if !applied {
			m.logger.Debug("dropped superseded fetch", slog.Uint64("ticket", uint64(msg.ticket)))
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("fetch failed", slog.Any("error", msg.err), slog.Bool("stale", m.state.Stale()))
		}
		m.reconcileSelection()
		m.layout()
		return m, nil

	case mutationDoneMsg:
		return m.applyOutcome(msg.outcome)

	case feedbackHideMsg:
		// Only the latest message's timer hides it.
		m.state = m.state.HideFeedback(msg.ticket)
		return m, nil

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard", slog.Any("error", msg.err))
			return m.setFlash("Copy failed: " + msg.err.Error())
		}
		return m.setFlash("Copied " + msg.text)

	case clockTickMsg:
		return m, m.clockCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal == modalConfirmUnregister {
		return m.updateConfirmModal(msg)
	}
	if key.Matches(msg, m.keys.Focus) {
		return m.toggleFocus()
	}
	if m.focus == focusForm {
		return m.updateForm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		var cmd tea.Cmd
		m, cmd = m.beginFetch()
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.Unregister):
		return m.openConfirm(), nil
	case key.Matches(msg, m.keys.Copy):
		if a, ok := m.selectedAction(); ok {
			return m, copyCmd(a.Participant)
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusList {
		m.focus = focusForm
		cmd := m.email.Focus()
		m.layout()
		return m, cmd
	}
	m.focus = focusList
	m.email.Blur()
	m.layout()
	return m, nil
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.focus = focusList
		m.email.Blur()
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.PrevOption):
		m.cycleOption(-1)
		return m, nil
	case key.Matches(msg, m.keys.NextOption):
		m.cycleOption(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	return m, cmd
}

// submit sends the sign-up form. A second submit while one is in flight is
// ignored.
func (m appModel) submit() (tea.Model, tea.Cmd) {
	next, ok := m.state.BeginSubmit()
	if !ok {
		return m, nil
	}
	m.state = next
	return m, m.registerCmd(m.activity, strings.TrimSpace(m.email.Value()))
}

func (m appModel) openConfirm() appModel {
	a, ok := m.selectedAction()
	if !ok {
		return m
	}
	m.pending = dispatchTarget{activity: a.Activity, participant: a.Participant, prompt: a.Prompt()}
	m.modal = modalConfirmUnregister
	m.confirmFocus = confirmFocusCancel
	return m
}

func (m appModel) updateConfirmModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n", "N":
		return m.closeConfirm(), nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "y", "Y":
		return m.confirmUnregister()
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return m.confirmUnregister()
		}
		return m.closeConfirm(), nil
	}
	return m, nil
}

// closeConfirm declines: nothing is sent and nothing else changes.
func (m appModel) closeConfirm() appModel {
	m.modal = modalNone
	m.pending = dispatchTarget{}
	return m
}

func (m appModel) confirmUnregister() (tea.Model, tea.Cmd) {
	p := m.pending
	m = m.closeConfirm()
	release, ok := m.guard.Acquire(syncctl.Key{Op: dispatch.OpUnregister, Activity: p.activity, Participant: p.participant})
	if !ok {
		return m, nil
	}
	return m, m.unregisterCmd(p.activity, p.participant, release)
}

func (m appModel) applyOutcome(out dispatch.Outcome) (tea.Model, tea.Cmd) {
	var (
		t      syncctl.Ticket
		resync bool
	)
	m.state, t, resync = m.state.ApplyOutcome(out, m.now())
	cmds := []tea.Cmd{
		m.tick(out.Feedback.TTL, func(time.Time) tea.Msg { return feedbackHideMsg{ticket: t} }),
	}
	if out.ClearForm {
		m.activity = ""
		m.email.Reset()
	}
	if resync {
		var fetch tea.Cmd
		m, fetch = m.beginFetch()
		cmds = append(cmds, fetch)
	}
	m.layout()
	return m, tea.Batch(cmds...)
}

func (m appModel) setFlash(text string) (tea.Model, tea.Cmd) {
	m.flash = text
	m.flashSeq++
	seq := m.flashSeq
	return m, m.tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

// reconcileSelection drops a chosen activity the new view no longer offers.
// The list keeps its own row selection in layout.
func (m *appModel) reconcileSelection() {
	if m.activity != "" && !m.state.View.HasOption(m.activity) {
		m.activity = ""
	}
}

// cycleOption moves through the placeholder followed by every option.
func (m *appModel) cycleOption(delta int) {
	opts := m.state.View.Options
	if len(opts) == 0 {
		m.activity = ""
		return
	}
	idx := -1
	for i, o := range opts {
		if o.Value == m.activity {
			idx = i
			break
		}
	}
	n := len(opts) + 1
	next := ((idx+1+delta)%n+n)%n - 1
	if next < 0 {
		m.activity = ""
		return
	}
	m.activity = opts[next].Value
}
