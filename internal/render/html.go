package render

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Fragments is a rendered View ready to be swapped into a page.
type Fragments struct {
	// List is the inner content of the stable #activities-list container.
	List string
	// Select is the complete selection control; it always replaces the old one.
	Select string
}

// HTMLRenderer renders Views to HTML fragments.
type HTMLRenderer struct {
	tmpl *template.Template
}

type HTMLOptions struct {
	// Description renders an activity description. Defaults to escaped text.
	Description func(string) template.HTML
}

func NewHTMLRenderer(opts HTMLOptions) (*HTMLRenderer, error) {
	desc := opts.Description
	if desc == nil {
		desc = escapedText
	}
	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"esc":            escapedText,
		"description":    desc,
		"placeholder":    func() string { return SelectPlaceholder },
		"noParticipants": func() string { return NoParticipants },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(v View) (Fragments, error) {
	var list, sel bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&list, "activities-list", v); err != nil {
		return Fragments{}, err
	}
	if err := r.tmpl.ExecuteTemplate(&sel, "activity-select", v); err != nil {
		return Fragments{}, err
	}
	return Fragments{List: list.String(), Select: sel.String()}, nil
}

// escapedText is already-escaped text for a text node; html/template leaves
// template.HTML untouched, so the five-entity encoding is what reaches the page.
func escapedText(s string) template.HTML {
	return template.HTML(EscapeHTML(s))
}
