package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// UnitContext holds the variables available when rendering a generated test unit.
type UnitContext struct {
	// StubPath is the declaration file the unit was generated from.
	StubPath string
	// PrefixLiteral is the test name prefix as a quoted Python string literal.
	PrefixLiteral string
	// Tests are the synthesized test functions, in declaration order.
	Tests []TestSource
}

// TestSource is one rendered test function.
type TestSource struct {
	Name   string
	Source string
}

// Render resolves template expressions in the given string.
// Uses Go's text/template syntax: {{.StubPath}}, {{range .Tests}}.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, data any) (string, error) {
	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}
