package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

func stripANSI(s string) string { return xansi.Strip(s) }

// truncate cuts s (ANSI-aware) to width columns, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Truncate(s, width, "…")
}

// clampLines truncates every line of s to width.
func clampLines(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = truncate(ln, width)
	}
	return strings.Join(lines, "\n")
}

// plain makes server-provided text safe to print on one line: escape
// sequences are stripped and control characters replaced.
func plain(s string) string { return sanitize(s, false) }

// plainBlock is plain for multi-line text such as descriptions.
func plainBlock(s string) string { return sanitize(s, true) }

func sanitize(s string, keepNewlines bool) string {
	s = xansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' && keepNewlines:
			return r
		case r == '\n' || r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return '?'
		}
		return r
	}, s)
}
