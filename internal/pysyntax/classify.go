// Package pysyntax inspects short Python snippets taken from documentation
// examples: whether a line is setup or a value to check, and whether recorded
// output is a plain literal.
package pysyntax

import (
	"context"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Kind is the role an example's source plays in a synthesized test.
type Kind string

const (
	// KindSetup statements run once, before any check, and produce no comparison.
	KindSetup Kind = "setup"
	// KindAssertion expressions are evaluated and compared with the recorded output.
	KindAssertion Kind = "assertion"
)

// setupPrefixes are the keyword prefixes the lexical heuristic treats as setup.
var setupPrefixes = []string{"import ", "from ", "def ", "class "}

// comparisonOperators contain "=" but never make a line an assignment.
var comparisonOperators = []string{"==", ">=", "<=", "!="}

// Classify decides whether source is setup or an assertion using the Python
// grammar. When the source does not parse cleanly it falls back to
// [ClassifyLexical].
func Classify(source string) Kind {
	root, closeTree, err := parse(source)
	if err != nil {
		slog.Debug("python parse failed, using lexical classification", "source", source, "error", err)
		return ClassifyLexical(source)
	}
	defer closeTree()

	if root.HasError() {
		slog.Debug("python source has syntax errors, using lexical classification", "source", source)
		return ClassifyLexical(source)
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "comment":
			continue
		case "expression_statement":
			if !isBareExpression(stmt) {
				return KindSetup
			}
		default:
			// imports, definitions, loops, del, pass and the like
			return KindSetup
		}
	}
	return KindAssertion
}

// ClassifyLexical is the keyword/substring heuristic: a line is setup when it
// starts with an import or definition keyword, or contains "=" outside of the
// comparison operators. A line such as "x >= 1 and y = 2" is misread as an
// assertion; [Classify] avoids that for well-formed input.
func ClassifyLexical(source string) Kind {
	for _, prefix := range setupPrefixes {
		if strings.HasPrefix(source, prefix) {
			return KindSetup
		}
	}
	if strings.Contains(source, "=") && !containsAny(source, comparisonOperators) {
		return KindSetup
	}
	return KindAssertion
}

func isBareExpression(stmt *sitter.Node) bool {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		switch stmt.NamedChild(i).Type() {
		case "assignment", "augmented_assignment", "yield":
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parse parses source as a Python module. The returned func releases the tree.
func parse(source string) (*sitter.Node, func(), error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		return nil, nil, err
	}
	return tree.RootNode(), tree.Close, nil
}
