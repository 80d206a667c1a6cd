package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

type copiedMsg struct {
	text string
	err  error
}

// copyCmd copies s to the system clipboard off the update loop.
func copyCmd(s string) tea.Cmd {
	return func() tea.Msg {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return copiedMsg{text: s, err: clipboard.WriteAll(s)}
	}
}
