package tui

import (
	"fmt"
	"io"
	"strings"

	"activities-cli/internal/render"
	"activities-cli/internal/syncctl"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// lineItem is a display-only line of an activity card.
type lineItem struct{ text string }

func (lineItem) FilterValue() string { return "" }

// participantItem is a selectable roster row; its descriptor drives unregister.
type participantItem struct{ action render.Action }

func (it participantItem) FilterValue() string { return it.action.Participant }

type activityRowsDelegate struct {
	// active is false while the form has focus, so no row looks selected.
	active bool

	normal   lipgloss.Style
	selected lipgloss.Style
}

func newActivityRowsDelegate(active bool) activityRowsDelegate {
	return activityRowsDelegate{
		active:   active,
		normal:   lipgloss.NewStyle(),
		selected: styleSelectedRow(),
	}
}

func (d activityRowsDelegate) Height() int  { return 1 }
func (d activityRowsDelegate) Spacing() int { return 0 }
func (d activityRowsDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d activityRowsDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	switch it := item.(type) {
	case participantItem:
		line := "  • " + plain(it.action.Participant)
		if d.active && index == m.Index() {
			fmt.Fprint(w, d.selected.Render(fitWidth(line+"  ✕", contentW)))
			return
		}
		fmt.Fprint(w, d.normal.Render(fitWidth(line, contentW)))
	case lineItem:
		fmt.Fprint(w, fitWidth(it.text, contentW))
	default:
		fmt.Fprint(w, fitWidth(fmt.Sprint(item), contentW))
	}
}

// fitWidth pads or cuts line to exactly width columns.
func fitWidth(line string, width int) string {
	lineW := xansi.StringWidth(line)
	if lineW < width {
		return line + strings.Repeat(" ", width-lineW)
	}
	if lineW > width {
		return truncate(line, width)
	}
	return line
}

func newActivityList() list.Model {
	l := list.New(nil, newActivityRowsDelegate(true), defaultWidth, defaultHeight-chromeLines)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// listItems flattens the view into list rows: card lines are display-only,
// roster rows are selectable.
func (m appModel) listItems(width int) []list.Item {
	v := m.state.View
	if len(v.Cards) == 0 {
		switch {
		case v.Notice != "":
			return []list.Item{lineItem{text: styleFeedback(true).Render(v.Notice)}}
		case m.state.Phase == syncctl.Loading || m.state.Phase == syncctl.Idle:
			return []list.Item{lineItem{text: styleMuted().Render("Loading activities...")}}
		default:
			return []list.Item{lineItem{text: styleMuted().Render("No activities.")}}
		}
	}

	var items []list.Item
	line := func(s string) { items = append(items, lineItem{text: s}) }
	for i, c := range v.Cards {
		if i > 0 {
			line("")
		}
		line(styleCardName().Render(plain(c.Name)))
		if desc := renderMarkdown(plainBlock(c.Description), width-2); desc != "" {
			for _, ln := range strings.Split(desc, "\n") {
				line(ln)
			}
		}
		line("Schedule: " + plain(c.Schedule))
		line(fmt.Sprintf("Availability: %d spots left", c.SpotsLeft))
		line("Participants:")
		if c.NoParticipants {
			line("  " + styleMuted().Italic(true).Render(render.NoParticipants))
		}
		for _, r := range c.Rows {
			items = append(items, participantItem{action: r.Action})
		}
	}
	return items
}

func (m appModel) selectedAction() (render.Action, bool) {
	it, ok := m.list.SelectedItem().(participantItem)
	return it.action, ok
}

func participantIndexes(items []list.Item) []int {
	var out []int
	for i, it := range items {
		if _, ok := it.(participantItem); ok {
			out = append(out, i)
		}
	}
	return out
}

// setItems replaces the rows and keeps the same participant selected. When it
// is gone the row at the same roster position (clamped) is selected.
func (m *appModel) setItems(items []list.Item) {
	prev, had := m.selectedAction()
	ord := 0
	for _, i := range participantIndexes(m.list.Items()) {
		if i < m.list.Index() {
			ord++
		}
	}

	m.list.SetItems(items)
	rows := participantIndexes(items)
	if len(rows) == 0 {
		m.list.Select(0)
		return
	}
	if had {
		for _, i := range rows {
			if items[i].(participantItem).action == prev {
				m.list.Select(i)
				return
			}
		}
	}
	if ord >= len(rows) {
		ord = len(rows) - 1
	}
	m.list.Select(rows[ord])
}

// moveSelection steps to the next roster row in direction delta, skipping
// card lines. At either end the selection stays put.
func (m *appModel) moveSelection(delta int) {
	items := m.list.Items()
	for i := m.list.Index() + delta; i >= 0 && i < len(items); i += delta {
		if _, ok := items[i].(participantItem); ok {
			m.list.Select(i)
			return
		}
	}
}
