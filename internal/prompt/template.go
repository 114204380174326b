// Package prompt holds the system prompt template used to ground the
// generator in retrieved context. The template is loaded once at
// startup and immutable afterwards; the query engine receives it as a
// value, never through global state.
package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Placeholder marks where the retrieved context is substituted.
const Placeholder = "{information}"

const defaultTemplate = `You are a helpful assistant that answers questions using the provided context.

Use the information below to answer the user's question. If the answer is not
contained in the information, say that you don't know rather than guessing.

Information:
{information}`

// Template is an immutable system prompt with one substitution point.
type Template struct {
	text string
}

// Default returns the built-in template.
func Default() Template {
	return Template{text: defaultTemplate}
}

// Load reads a template from path, or returns the default when path is
// empty. The file must contain the context placeholder.
func Load(path string) (Template, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read prompt template: %w", err)
	}

	text := string(data)
	if !strings.Contains(text, Placeholder) {
		return Template{}, fmt.Errorf("prompt template %s is missing the %s placeholder", path, Placeholder)
	}

	return Template{text: text}, nil
}

// Render substitutes the retrieved context into the template.
func (t Template) Render(information string) string {
	return strings.ReplaceAll(t.text, Placeholder, information)
}
