package stubs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	content := `from typing import TypeVar

T = TypeVar("T")

def add(a: int, b: int) -> int:
    """Add two numbers.

    >>> add(1, 2)
    3
    """

def undocumented(x: int) -> int: ...

class Stack[T](Generic[T]):
    """A stack.

    >>> Stack()
    Stack([])
    """

    def push(self, item: T) -> None:
        """Push an item."""

    async def pop(self) -> T:
        r"""Pop an item."""

def first[T](xs: list[T], default: T = (None, [1, 2])) -> dict[str, tuple[int, ...]]:
    """first doc"""
`
	blocks := Extract(content)

	require.Len(t, blocks, 5)

	assert.Equal(t, "add", blocks[0].Name)
	assert.Contains(t, blocks[0].Doc, ">>> add(1, 2)")
	assert.Equal(t, 5, blocks[0].Line)

	assert.Equal(t, "Stack", blocks[1].Name)
	assert.Contains(t, blocks[1].Doc, "Stack([])")
	assert.Equal(t, 14, blocks[1].Line)

	assert.Equal(t, "push", blocks[2].Name)
	assert.Equal(t, "Push an item.", blocks[2].Doc)
	assert.Equal(t, 21, blocks[2].Line)

	assert.Equal(t, "pop", blocks[3].Name)
	assert.Equal(t, "Pop an item.", blocks[3].Doc)

	assert.Equal(t, "first", blocks[4].Name)
	assert.Equal(t, "first doc", blocks[4].Doc)
}

func TestExtract_NoBlocks(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"no docstrings":    "def f(x: int) -> int: ...\nclass A: ...\n",
		"single quotes":    "def f():\n    'not a docstring delimiter we recognize'\n",
		"unterminated doc": "def f():\n    \"\"\"never closed\n",
		"unbalanced":       "def f(x: int:\n    \"\"\"doc\"\"\"\n",
		"keyword suffix":   "undef_class = 1\nredef x():\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, Extract(content))
		})
	}
}

func TestExtract_DocstringBodyIsNotSearched(t *testing.T) {
	content := `def outer() -> None:
    """
    >>> def inner() -> int:
    ...     return 1
    >>> inner()
    1
    """

def after() -> None:
    """after doc"""
`
	blocks := Extract(content)

	require.Len(t, blocks, 2)
	assert.Equal(t, "outer", blocks[0].Name)
	assert.Equal(t, "after", blocks[1].Name)
}

func TestExtract_DuplicateNamesKept(t *testing.T) {
	content := "def f():\n    \"\"\"one\"\"\"\n\ndef f():\n    \"\"\"two\"\"\"\n"

	blocks := Extract(content)

	require.Len(t, blocks, 2)
	assert.Equal(t, "one", blocks[0].Doc)
	assert.Equal(t, "two", blocks[1].Doc)
}
