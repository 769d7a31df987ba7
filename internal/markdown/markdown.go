// Package markdown finds interactive example transcripts in Markdown files.
package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/pyidoc/pyidoc/internal/stubs"
	"github.com/pyidoc/pyidoc/internal/transcript"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// walk traverses the parsed document. Tests replace it.
var walk = ast.Walk

// Extract returns one block per fenced code block in source that holds at
// least one example. Blocks are named <stem>_block<N>, numbered from 1 in
// document order.
func Extract(source []byte, stem string) ([]stubs.Block, error) {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	prefix := unsafeChars.ReplaceAllString(stem, "_")

	var blocks []stubs.Block
	err := walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lines := fenced.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		var code bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(source))
		}

		if len(transcript.Parse(code.String())) == 0 {
			return ast.WalkSkipChildren, nil
		}

		blocks = append(blocks, stubs.Block{
			Name: fmt.Sprintf("%s_block%d", prefix, len(blocks)+1),
			Doc:  code.String(),
			Line: bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking markdown: %w", err)
	}
	return blocks, nil
}
