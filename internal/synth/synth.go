// Package synth turns the examples in one documentation string into the source
// of a self-contained Python test function.
package synth

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pyidoc/pyidoc/internal/pysyntax"
	"github.com/pyidoc/pyidoc/internal/stubs"
	"github.com/pyidoc/pyidoc/internal/transcript"
)

// DefaultPrefix starts the name of every synthesized test function.
const DefaultPrefix = "test_"

// placeholderOutput marks an example whose output is not meant to be checked.
const placeholderOutput = "..."

const indent = "    "

// Helper names defined by the materialized module prelude.
const (
	AssertHelper   = "_assert_test"
	ExpectedHelper = "_expected"
)

// Assertion is one expression whose value is compared with recorded output.
type Assertion struct {
	Source   string
	Expected string
	Line     int
}

// Test is the synthesized form of one documented declaration.
type Test struct {
	// Name is the declaration name the test was built from.
	Name string
	// FuncName is the Python function name, the prefix followed by Name.
	FuncName   string
	Setup      []string
	Assertions []Assertion
	// Skipped counts examples excluded by a SKIP directive.
	Skipped int
	// Dropped counts assertions with empty or placeholder output.
	Dropped int
	// Warnings describe expected outputs that are not plain literals; those
	// assertions fail when the test runs.
	Warnings []string
	// Source is the Python function definition.
	Source string
}

// Option configures Synthesize.
type Option func(*options)

type options struct {
	prefix   string
	classify func(string) pysyntax.Kind
}

// WithPrefix sets the test function name prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithClassifier replaces the setup/assertion classifier.
func WithClassifier(classify func(string) pysyntax.Kind) Option {
	return func(o *options) {
		o.classify = classify
	}
}

// Synthesize builds the test for block. It returns nil when no example in the
// block leads to a comparison.
func Synthesize(block stubs.Block, opts ...Option) *Test {
	o := options{prefix: DefaultPrefix, classify: pysyntax.Classify}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Test{
		Name:     block.Name,
		FuncName: o.prefix + block.Name,
	}

	for _, ex := range transcript.Parse(block.Doc) {
		if ex.Skip {
			t.Skipped++
			continue
		}

		if o.classify(ex.Source) == pysyntax.KindSetup {
			t.Setup = append(t.Setup, ex.Source)
			continue
		}

		if ex.Want == "" || ex.Want == placeholderOutput {
			t.Dropped++
			continue
		}

		if !pysyntax.IsLiteral(ex.Want) {
			warning := fmt.Sprintf("line %d: expected output %q is not a literal", ex.Line, ex.Want)
			slog.Debug("non-literal expected output", "block", block.Name, "line", ex.Line, "expected", ex.Want)
			t.Warnings = append(t.Warnings, warning)
		}

		t.Assertions = append(t.Assertions, Assertion{
			Source:   ex.Source,
			Expected: ex.Want,
			Line:     ex.Line,
		})
	}

	if len(t.Assertions) == 0 {
		return nil
	}

	t.Source = t.render()
	return t
}

func (t *Test) render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\ndef %s() -> bool:\n", t.FuncName)

	for _, setup := range t.Setup {
		writeIndented(&b, setup, indent)
	}

	name := strconv.Quote(t.Name)
	for _, a := range t.Assertions {
		if strings.Contains(a.Source, "\n") {
			b.WriteString(indent + "res = (\n")
			writeIndented(&b, a.Source, indent+indent)
			b.WriteString(indent + ")\n")
		} else {
			fmt.Fprintf(&b, "%sres = %s\n", indent, a.Source)
		}
		fmt.Fprintf(&b, "%sif not %s(res, %s(%s), %s, %s):\n",
			indent, AssertHelper, ExpectedHelper, strconv.Quote(a.Expected), name, strconv.Quote(a.Source))
		b.WriteString(indent + indent + "return False\n")
	}

	b.WriteString(indent + "return True\n")
	return b.String()
}

func writeIndented(b *strings.Builder, source, prefix string) {
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(prefix + line + "\n")
	}
}
