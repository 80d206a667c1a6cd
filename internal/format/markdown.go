package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// WriteDocument writes a markdown document: verbatim for "md", rendered for
// the terminal for "text".
func WriteDocument(w io.Writer, md string, format string, width int) error {
	switch format {
	case "md":
		_, err := io.WriteString(w, strings.TrimRight(md, "\n")+"\n")
		return err
	case "text":
		out, err := RenderTerminal(md, width, terminalStyle(w))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown document format: %s", format)
	}
}

// RenderTerminal renders md with glamour using a fixed style.
func RenderTerminal(md string, width int, style string) (string, error) {
	if width < 20 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// terminalStyle picks "notty" for pipes and files so the output has no escapes.
func terminalStyle(w io.Writer) string {
	out := termenv.NewOutput(w)
	if out.Profile == termenv.Ascii {
		return "notty"
	}
	if out.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
