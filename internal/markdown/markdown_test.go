package markdown

import (
	"errors"
	"testing"

	"github.com/pyidoc/pyidoc/internal/stubs"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

const readme = "# mypkg\n" +
	"\n" +
	"Install it, then:\n" +
	"\n" +
	"```python\n" +
	">>> from mypkg import double\n" +
	">>> double(2)\n" +
	"4\n" +
	"```\n" +
	"\n" +
	"```bash\n" +
	"pip install mypkg\n" +
	"```\n" +
	"\n" +
	"```\n" +
	">>> 1 + 1\n" +
	"2\n" +
	"```\n"

func TestExtract(t *testing.T) {
	blocks, err := Extract([]byte(readme), "README")
	require.NoError(t, err)

	require.Equal(t, []stubs.Block{
		{Name: "README_block1", Doc: ">>> from mypkg import double\n>>> double(2)\n4\n", Line: 6},
		{Name: "README_block2", Doc: ">>> 1 + 1\n2\n", Line: 16},
	}, blocks)
}

func TestExtract_NoExamples(t *testing.T) {
	blocks, err := Extract([]byte("# Title\n\n    >>> indented code is not fenced\n    1\n\n```go\nfmt.Println(1)\n```\n"), "doc")
	require.NoError(t, err)
	require.Empty(t, blocks)
}

func TestExtract_SanitizesStem(t *testing.T) {
	blocks, err := Extract([]byte("```\n>>> 2 * 3\n6\n```\n"), "getting-started.v2")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, "getting_started_v2_block1", blocks[0].Name)
}

func TestExtract_WalkError(t *testing.T) {
	orig := walk
	t.Cleanup(func() { walk = orig })
	walk = func(n ast.Node, walker ast.Walker) error {
		return errors.New("walker failed")
	}

	blocks, err := Extract([]byte(readme), "README")
	require.ErrorContains(t, err, "walker failed")
	require.Nil(t, blocks)
}
