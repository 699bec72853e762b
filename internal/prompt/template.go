// Package prompt renders the mustache prompt templates sent to the LLM.
package prompt

import (
	"fmt"

	"github.com/cbroglie/mustache"
)

// Template is a parsed, named prompt template. Templates use {{{var}}} so that
// user text reaches the model without HTML escaping.
type Template struct {
	name string
	tmpl *mustache.Template
}

// MustParse parses text or panics; templates are package-level constants.
func MustParse(name, text string) *Template {
	tmpl, err := mustache.ParseString(text)
	if err != nil {
		panic(fmt.Sprintf("prompt %s: %v", name, err))
	}
	return &Template{name: name, tmpl: tmpl}
}

// Render fills the template with data.
func (t *Template) Render(data any) (string, error) {
	out, err := t.tmpl.Render(data)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.name, err)
	}
	return out, nil
}

// Name returns the template name used in logs.
func (t *Template) Name() string {
	return t.name
}
