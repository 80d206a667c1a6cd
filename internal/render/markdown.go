package render

import (
	"fmt"
	"strings"
)

// Markdown renders a View as a markdown document.
func Markdown(v View) string {
	var b strings.Builder
	b.WriteString("# Activities\n")
	if v.Notice != "" {
		b.WriteString("\n> " + v.Notice + "\n")
	}
	for _, c := range v.Cards {
		b.WriteString("\n## " + mdInline(c.Name) + "\n\n")
		if d := strings.TrimSpace(c.Description); d != "" {
			b.WriteString(d + "\n\n")
		}
		fmt.Fprintf(&b, "- **Schedule:** %s\n", mdInline(c.Schedule))
		fmt.Fprintf(&b, "- **Availability:** %d spots left\n", c.SpotsLeft)
		b.WriteString("\n### Participants\n\n")
		if c.NoParticipants {
			b.WriteString("_" + NoParticipants + "_\n")
			continue
		}
		for _, r := range c.Rows {
			b.WriteString("- " + mdCode(r.Participant) + "\n")
		}
	}
	return b.String()
}

var mdInlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

func mdInline(s string) string {
	return mdInlineEscaper.Replace(strings.TrimSpace(s))
}

// mdCode wraps s in a code span long enough not to collide with backticks in s.
func mdCode(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
