package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyidoc/pyidoc/internal/materialize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generateStub = `def add(a: int, b: int) -> int:
    """
    >>> add(1, 2)
    3
    """

def undocumented() -> None: ...
`

func TestGenerateCommand_RequiresArg(t *testing.T) {
	cmd := newGenerateCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestGenerateCommand_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"/nonexistent/core.pyi"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading /nonexistent/core.pyi")
	assert.Empty(t, buf.String())
}

func TestGenerateCommand_ValidStub(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.pyi"), []byte(generateStub), 0644))

	var out, errOut bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"core.pyi"})
	require.NoError(t, cmd.Execute())

	source := out.String()
	assert.Contains(t, source, "# Generated tests from core.pyi")
	assert.Contains(t, source, "def test_add(")
	assert.NotContains(t, source, "def test_undocumented(")
	assert.Contains(t, source, `_TEST_PREFIX = "test_"`)
	assert.Empty(t, errOut.String())

	// nothing is written next to the stub
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateCommand_Prefix(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.pyi"), []byte(generateStub), 0644))

	var out bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"core.pyi", "--prefix", "check_"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "def check_add(")
	assert.Contains(t, out.String(), `_TEST_PREFIX = "check_"`)
}

func TestGenerateCommand_RejectsUnderscorePrefix(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.pyi"), []byte(generateStub), 0644))

	var out bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"core.pyi", "--prefix", "_"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, materialize.ErrInvalidPrefix))
	assert.Empty(t, out.String())
}

func TestGenerateCommand_NothingToGenerate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.pyi"), []byte("def f() -> None: ...\n"), 0644))

	var out, errOut bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"empty.pyi"})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Nothing to generate for empty.pyi: no documented declarations")
}
