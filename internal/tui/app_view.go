package tui

import (
	"strings"

	"activities-cli/internal/render"
	"activities-cli/internal/syncctl"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeLines is header, stale line, form block, feedback and help.
	chromeLines = 9
)

func (m appModel) screenSize() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// layout sizes the list and rebuilds its rows from the current view.
func (m *appModel) layout() {
	w, h := m.screenSize()
	listH := h - chromeLines
	if m.showHelp {
		listH -= 3
	}
	if listH < 3 {
		listH = 3
	}
	m.list.SetSize(w, listH)
	m.list.SetDelegate(newActivityRowsDelegate(m.focus == focusList))
	m.setItems(m.listItems(w))
}

func (m appModel) View() string {
	w, h := m.screenSize()
	if m.modal == modalConfirmUnregister {
		box := renderConfirmModal(w, "Unregister", m.pending.prompt, "Unregister", "Cancel", m.confirmFocus)
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
	}

	var b strings.Builder
	b.WriteString(truncate(styleTitle().Render(m.title)+" "+m.statusLine(), w))
	b.WriteString("\n")
	b.WriteString(truncate(m.staleLine(), w))
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	b.WriteString(m.formView(w))
	b.WriteString("\n")
	b.WriteString(truncate(m.feedbackLine(), w))
	b.WriteString("\n")
	if m.focus == focusForm {
		b.WriteString(m.help.View(formKeys{k: m.keys}))
	} else if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m appModel) statusLine() string {
	switch {
	case m.state.Phase == syncctl.Loading:
		return m.spinner.View() + " syncing"
	case !m.state.SyncedAt.IsZero():
		return styleMuted().Render("synced " + humanize.RelTime(m.state.SyncedAt, m.now(), "ago", "from now"))
	}
	return ""
}

// staleLine is shown when a re-sync failed and the last good data is displayed.
func (m appModel) staleLine() string {
	if !m.state.Stale() {
		return ""
	}
	since := "earlier"
	if !m.state.SyncedAt.IsZero() {
		since = humanize.RelTime(m.state.SyncedAt, m.now(), "ago", "from now")
	}
	return styleStale().Render("! " + m.state.View.Notice + " Showing data from " + since + ".")
}

func (m appModel) formView(width int) string {
	label := render.SelectPlaceholder
	if m.activity != "" {
		label = plain(m.activity)
	}
	head := styleCardName().Render("Sign up for an activity")
	activity := "Activity: ‹ " + label + " ›"
	email := "Email:    " + m.email.View()
	if m.focus == focusForm {
		activity = lipgloss.NewStyle().Foreground(colorAccent).Render(activity)
	}
	submit := styleMuted().Render("[enter] Sign Up")
	if m.state.Submitting {
		submit = m.spinner.View() + " Signing up..."
	}
	return clampLines(strings.Join([]string{head, activity, email, submit}, "\n"), width)
}

func (m appModel) feedbackLine() string {
	if m.state.FeedbackVisible && m.state.Feedback.Text != "" {
		return styleFeedback(m.state.Feedback.IsError()).Render(plain(m.state.Feedback.Text))
	}
	if m.flash != "" {
		return styleMuted().Render(m.flash)
	}
	return ""
}
