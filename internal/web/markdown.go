package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	// No html.WithUnsafe(): raw HTML in descriptions is dropped.
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var descriptionPolicy = bluemonday.UGCPolicy()

// renderDescription renders an activity description as sanitized HTML.
func renderDescription(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(b.Bytes()))
}
