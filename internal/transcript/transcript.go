// Package transcript splits documentation text into interactive-prompt examples.
package transcript

import (
	"regexp"
	"strings"
)

const (
	promptPrefix       = ">>>"
	continuationPrefix = "..."
	blankLineMarker    = "<BLANKLINE>"
)

// Example is one prompt/output grouping taken from a documentation string.
type Example struct {
	// Source is the input text with prompts and indentation removed. Continuation
	// lines are joined with "\n".
	Source string
	// Want is the recorded output, trimmed. Empty means no output was recorded.
	Want string
	// Skip is set when the example carries a "+SKIP" directive.
	Skip bool
	// Line is the 1-based line of the first prompt within the documentation string.
	Line int
	// Options holds every directive found on the example's source lines, keyed by
	// option name with the last sign seen (+ is true).
	Options map[string]bool
}

var directiveRe = regexp.MustCompile(`#\s*doctest:\s*([^\n'"]*)$`)

// Parse returns every example in doc, in order. Text outside examples is ignored.
func Parse(doc string) []Example {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	var examples []Example
	for i := 0; i < len(lines); {
		indent, rest, ok := cutPrompt(lines[i], promptPrefix)
		if !ok {
			i++
			continue
		}

		ex := Example{Line: i + 1}
		source := []string{rest}
		i++

		for i < len(lines) {
			lineIndent, cont, ok := cutPrompt(lines[i], continuationPrefix)
			if !ok || lineIndent < indent {
				break
			}
			source = append(source, cont)
			i++
		}

		var want []string
		for i < len(lines) {
			line := lines[i]
			if strings.TrimSpace(line) == "" {
				break
			}
			if _, _, isPrompt := cutPrompt(line, promptPrefix); isPrompt {
				break
			}
			line = stripIndent(line, indent)
			if strings.TrimSpace(line) == blankLineMarker {
				line = ""
			}
			want = append(want, line)
			i++
		}

		ex.Options = parseOptions(source)
		ex.Skip = ex.Options["SKIP"]
		ex.Source = strings.TrimSpace(strings.Join(source, "\n"))
		ex.Want = strings.TrimSpace(strings.Join(want, "\n"))
		examples = append(examples, ex)
	}

	return examples
}

// cutPrompt reports whether line starts (after spaces) with prompt followed by a
// space or end of line, returning the indentation width and the text after it.
func cutPrompt(line, prompt string) (indent int, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, prompt) {
		return 0, "", false
	}
	after := trimmed[len(prompt):]
	switch {
	case after == "":
	case after[0] == ' ':
		after = after[1:]
	default:
		return 0, "", false
	}
	return len(line) - len(trimmed), after, true
}

// stripIndent removes up to n leading whitespace characters.
func stripIndent(line string, n int) string {
	i := 0
	for i < n && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

func parseOptions(source []string) map[string]bool {
	var opts map[string]bool
	for _, line := range source {
		m := directiveRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, field := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			if len(field) < 2 || (field[0] != '+' && field[0] != '-') {
				continue
			}
			if opts == nil {
				opts = make(map[string]bool)
			}
			opts[strings.ToUpper(field[1:])] = field[0] == '+'
		}
	}
	return opts
}
