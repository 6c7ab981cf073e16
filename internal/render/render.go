// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML rendering for the public topic pages. Pages
// are rendered to bytes so they can be stored in the page cache as-is.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"topicpress/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// DefaultSiteName is shown in the navigation bar and page titles.
const DefaultSiteName = "My Blog"

// dateLayout formats the topic creation date for readers.
const dateLayout = "January 2, 2006"

// Renderer holds the parsed page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// pages lists the templates rendered inside base.html.
var pages = []string{"topic", "not_found"}

// New parses the embedded templates. Each page is paired with the base
// layout.
func New(siteName string) (*Renderer, error) {
	if siteName == "" {
		siteName = DefaultSiteName
	}

	funcMap := template.FuncMap{
		"siteName": func() string { return siteName },
		// date renders a timestamp for humans; zero times render empty.
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(dateLayout)
		},
		// trusted marks stored topic HTML as safe. Content is authored in the
		// admin editor and stored verbatim, so it is not escaped here.
		"trusted": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New("base.html").Funcs(funcMap).ParseFS(
			templatesFS, "templates/base.html", "templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// Topic renders the full page for a topic.
func (r *Renderer) Topic(t models.Topic) ([]byte, error) {
	return r.execute("topic", t)
}

// NotFound renders the page shown for unknown topic ids and slugs.
func (r *Renderer) NotFound() ([]byte, error) {
	return r.execute("not_found", nil)
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
