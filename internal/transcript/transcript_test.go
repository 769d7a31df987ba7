package transcript

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Example
	}{
		{
			name: "no examples",
			doc:  "Adds two numbers.\n\nReturns the sum.",
			want: nil,
		},
		{
			name: "single example",
			doc:  "\n>>> 1 + 1\n2\n",
			want: []Example{{Source: "1 + 1", Want: "2", Line: 2}},
		},
		{
			name: "setup then assertion",
			doc:  "\n>>> x = 1\n>>> x + 1\n3\n",
			want: []Example{
				{Source: "x = 1", Line: 2},
				{Source: "x + 1", Want: "3", Line: 3},
			},
		},
		{
			name: "indented docstring",
			doc:  "\n    Example:\n\n        >>> [1, 2]\n        [1, 2]\n    ",
			want: []Example{{Source: "[1, 2]", Want: "[1, 2]", Line: 4}},
		},
		{
			name: "continuation lines",
			doc:  ">>> def f(x):\n...     return x * 2\n>>> f(3)\n6",
			want: []Example{
				{Source: "def f(x):\n    return x * 2", Line: 1},
				{Source: "f(3)", Want: "6", Line: 3},
			},
		},
		{
			name: "multi-line output ends at blank line",
			doc:  ">>> print('a\\nb')\na\nb\n\nTrailing prose.",
			want: []Example{{Source: "print('a\\nb')", Want: "a\nb", Line: 1}},
		},
		{
			name: "blankline marker",
			doc:  ">>> show()\nfirst\n<BLANKLINE>\nlast",
			want: []Example{{Source: "show()", Want: "first\n\nlast", Line: 1}},
		},
		{
			name: "bare prompt",
			doc:  ">>>\n>>> 3\n3",
			want: []Example{
				{Source: "", Line: 1},
				{Source: "3", Want: "3", Line: 2},
			},
		},
		{
			name: "prompt without space is prose",
			doc:  ">>>foo\n>>> 1\n1",
			want: []Example{{Source: "1", Want: "1", Line: 2}},
		},
		{
			name: "placeholder output",
			doc:  ">>> object()\n... ",
			want: []Example{{Source: "object()", Line: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.doc)
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(Example{}, "Options")); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_SkipDirective(t *testing.T) {
	tests := []struct {
		source   string
		wantSkip bool
	}{
		{">>> slow()  # doctest: +SKIP\n42", true},
		{">>> slow()  # doctest: +ELLIPSIS, +SKIP\n42", true},
		{">>> slow()  #doctest:+skip\n42", true},
		{">>> slow()  # doctest: +SKIP -SKIP\n42", false},
		{">>> slow()  # doctest: +ELLIPSIS\n42", false},
		{">>> '# doctest: +SKIP'\n'# doctest: +SKIP'", false},
		{">>> for i in range(2):  # doctest: +SKIP\n...     print(i)\n0\n1", true},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			got := Parse(tt.source)
			if len(got) != 1 {
				t.Fatalf("Parse() returned %d examples, want 1", len(got))
			}
			if got[0].Skip != tt.wantSkip {
				t.Errorf("Skip = %v, want %v (options %v)", got[0].Skip, tt.wantSkip, got[0].Options)
			}
		})
	}
}

func TestParse_TrimsWhitespace(t *testing.T) {
	got := Parse(">>>    'padded'   \n   'padded'   ")
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d examples, want 1", len(got))
	}
	if got[0].Source != "'padded'" {
		t.Errorf("Source = %q", got[0].Source)
	}
	if got[0].Want != "'padded'" {
		t.Errorf("Want = %q", got[0].Want)
	}
}
