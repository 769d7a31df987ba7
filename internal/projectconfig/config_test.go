package projectconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Paths
	assertEqual(t, "Paths.Source", "src", cfg.Paths.Source)
	assertEqual(t, "Paths.Scratch", "doctests_temp", cfg.Paths.Scratch)

	assertEqual(t, "Python", "", cfg.Python)

	// Stubs
	assertEqual(t, "Stubs.Extension", ".pyi", cfg.Stubs.Extension)
	assertEqual(t, "Stubs.TestPrefix", "test_", cfg.Stubs.TestPrefix)

	if cfg.Docs != nil {
		t.Error("Docs should be nil by default")
	}

	// Phases
	assertBoolPtr(t, "Phases.Doctests", true, cfg.Phases.Doctests)
	assertBoolPtr(t, "Phases.Stubs", true, cfg.Phases.Stubs)

	assertBoolPtr(t, "Verbose", false, cfg.Verbose)
	assertEqual(t, "Path", "", cfg.Path)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  source: lib
  scratch: /tmp/pyidoc-scratch
python: python3.12
stubs:
  extension: .pyi
  test_prefix: check_
docs:
  - README.md
  - docs/guide.md
phases:
  doctests: false
  stubs: true
verbose: true
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	assertEqual(t, "Paths.Source", filepath.Join(dir, "lib"), cfg.Paths.Source)
	assertEqual(t, "Paths.Scratch", "/tmp/pyidoc-scratch", cfg.Paths.Scratch)
	assertEqual(t, "Python", "python3.12", cfg.Python)
	assertEqual(t, "Stubs.Extension", ".pyi", cfg.Stubs.Extension)
	assertEqual(t, "Stubs.TestPrefix", "check_", cfg.Stubs.TestPrefix)

	if len(cfg.Docs) != 2 {
		t.Fatalf("Docs: want 2 entries, got %v", cfg.Docs)
	}
	assertEqual(t, "Docs[0]", filepath.Join(dir, "README.md"), cfg.Docs[0])
	assertEqual(t, "Docs[1]", filepath.Join(dir, "docs", "guide.md"), cfg.Docs[1])

	assertBoolPtr(t, "Phases.Doctests", false, cfg.Phases.Doctests)
	assertBoolPtr(t, "Phases.Stubs", true, cfg.Phases.Stubs)
	assertBoolPtr(t, "Verbose", true, cfg.Verbose)
	assertEqual(t, "Path", filepath.Join(dir, FileName), cfg.Path)
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  scratch: out/doctests
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	assertEqual(t, "Paths.Source", "src", cfg.Paths.Source)
	assertEqual(t, "Paths.Scratch", filepath.Join(dir, "out", "doctests"), cfg.Paths.Scratch)
	assertEqual(t, "Stubs.TestPrefix", "test_", cfg.Stubs.TestPrefix)
	assertBoolPtr(t, "Phases.Doctests", true, cfg.Phases.Doctests)
}

func TestLoad_EmptyFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "# defaults are fine\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	assertEqual(t, "Paths.Source", "src", cfg.Paths.Source)
	assertEqual(t, "Path", filepath.Join(dir, FileName), cfg.Path)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	def := New()
	assertEqual(t, "Paths.Source", def.Paths.Source, cfg.Paths.Source)
	assertEqual(t, "Paths.Scratch", def.Paths.Scratch, cfg.Paths.Scratch)
	assertEqual(t, "Path", "", cfg.Path)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  source: [unclosed
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoad_SchemaViolation_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
stubs:
  test_prefix: "not a prefix"
verbose: sometimes
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for schema violation, got nil")
	}
}

func TestLoad_UnderscorePrefix_ReturnsError(t *testing.T) {
	for _, prefix := range []string{"_", "_test_"} {
		dir := t.TempDir()
		writeFile(t, dir, FileName, "stubs:\n  test_prefix: \""+prefix+"\"\n")

		_, err := Load(dir)
		if err == nil {
			t.Fatalf("expected error for test_prefix %q, got nil", prefix)
		}
		if !strings.Contains(err.Error(), "/stubs/test_prefix") {
			t.Errorf("error should name /stubs/test_prefix, got: %v", err)
		}
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
python: pypy3
`)

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	assertEqual(t, "Python", "pypy3", cfg.Python)
}

func TestBoolPointerFields(t *testing.T) {
	dir := t.TempDir()
	// Explicitly setting false must survive the merge.
	writeFile(t, dir, FileName, `
phases:
  stubs: false
verbose: false
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	assertBoolPtr(t, "Phases.Stubs", false, cfg.Phases.Stubs)
	assertBoolPtr(t, "Phases.Doctests", true, cfg.Phases.Doctests)
	assertBoolPtr(t, "Verbose", false, cfg.Verbose)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: want %q, got %q", field, want, got)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: want %v, got nil", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s: want %v, got %v", field, want, *got)
	}
}
