// Package stubs locates documented declarations in Python type-stub files.
package stubs

import (
	"regexp"
	"strings"
)

// DocDelimiter opens and closes the documentation strings this package recognizes.
const DocDelimiter = `"""`

// Block is a function or class declaration with the documentation string that
// immediately follows its header.
type Block struct {
	Name string
	Doc  string
	// Line is the 1-based line of the declaration keyword.
	Line int
}

var headerRe = regexp.MustCompile(`(?m)(?:^|[^\p{L}\p{N}_.])(?:async\s+)?(?:def|class)\s+([\p{L}_][\p{L}\p{N}_]*)`)

// Extract returns every documented declaration in content, in source order.
// Declarations whose header is not followed by a documentation string are
// skipped, as are headers the scanner cannot follow.
func Extract(content string) []Block {
	var blocks []Block

	pos := 0
	for pos < len(content) {
		loc := headerRe.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}
		nameStart, nameEnd := pos+loc[2], pos+loc[3]
		declStart := pos + loc[0]

		doc, end, ok := scanDocstring(content, nameEnd)
		if !ok {
			pos = nameEnd
			continue
		}

		blocks = append(blocks, Block{
			Name: content[nameStart:nameEnd],
			Doc:  doc,
			Line: strings.Count(content[:declStart+leadingSkip(content[declStart:])], "\n") + 1,
		})
		pos = end
	}

	return blocks
}

// scanDocstring follows an optional [type params], (params) and "-> annotation"
// from i, then expects ':' and a documentation string. It returns the body and
// the offset just past the closing delimiter.
func scanDocstring(content string, i int) (doc string, end int, ok bool) {
	i = skipSpace(content, i)
	if i < len(content) && content[i] == '[' {
		if i, ok = skipBalanced(content, i); !ok {
			return "", 0, false
		}
		i = skipSpace(content, i)
	}
	if i < len(content) && content[i] == '(' {
		if i, ok = skipBalanced(content, i); !ok {
			return "", 0, false
		}
		i = skipSpace(content, i)
	}
	if strings.HasPrefix(content[i:], "->") {
		if i, ok = skipAnnotation(content, i+2); !ok {
			return "", 0, false
		}
	}
	if i >= len(content) || content[i] != ':' {
		return "", 0, false
	}

	i = skipSpace(content, i+1)
	if i < len(content) && (content[i] == 'r' || content[i] == 'R') {
		i++
	}
	if !strings.HasPrefix(content[i:], DocDelimiter) {
		return "", 0, false
	}
	bodyStart := i + len(DocDelimiter)
	closing := strings.Index(content[bodyStart:], DocDelimiter)
	if closing < 0 {
		return "", 0, false
	}
	return content[bodyStart : bodyStart+closing], bodyStart + closing + len(DocDelimiter), true
}

// skipBalanced skips a bracketed group starting at content[i], honoring nested
// brackets and quoted strings.
func skipBalanced(content string, i int) (int, bool) {
	depth := 0
	for i < len(content) {
		switch c := content[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '\'', '"':
			var ok bool
			if i, ok = skipString(content, i); !ok {
				return 0, false
			}
			continue
		}
		i++
	}
	return 0, false
}

// skipAnnotation skips a return annotation up to the ':' that ends the header.
func skipAnnotation(content string, i int) (int, bool) {
	for i < len(content) {
		switch content[i] {
		case ':':
			return i, true
		case '(', '[', '{':
			var ok bool
			if i, ok = skipBalanced(content, i); !ok {
				return 0, false
			}
			continue
		case '\'', '"':
			var ok bool
			if i, ok = skipString(content, i); !ok {
				return 0, false
			}
			continue
		case '\n':
			return 0, false
		}
		i++
	}
	return 0, false
}

func skipString(content string, i int) (int, bool) {
	quote := content[i]
	for j := i + 1; j < len(content); j++ {
		switch content[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

func skipSpace(content string, i int) int {
	for i < len(content) && strings.IndexByte(" \t\r\n", content[i]) >= 0 {
		i++
	}
	return i
}

// leadingSkip returns the width of the non-keyword character the header
// expression may have consumed before the declaration.
func leadingSkip(s string) int {
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "def") || strings.HasPrefix(s, "class") || strings.HasPrefix(s, "async") {
		return 0
	}
	return 1
}
