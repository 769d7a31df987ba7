// Package materialize assembles synthesized tests into loadable Python units
// and writes them to the scratch directory.
package materialize

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pyidoc/pyidoc/internal/synth"
	"github.com/pyidoc/pyidoc/internal/template"
)

//go:embed data/unit.py.tmpl
var unitTemplate string

var (
	// ErrDuplicateTest is returned when two tests in one unit share a function name.
	ErrDuplicateTest = errors.New("duplicate test function")
	// ErrReservedName is returned when a test function would replace a name the
	// unit itself defines or imports.
	ErrReservedName = errors.New("test function shadows unit name")
	// ErrInvalidPrefix is returned for test prefixes the unit driver cannot
	// tell apart from its own helpers.
	ErrInvalidPrefix = errors.New("invalid test prefix")
	// ErrUnsafeScratch is returned when the scratch directory could hold files
	// the tool did not write.
	ErrUnsafeScratch = errors.New("refusing to use scratch directory")
)

const (
	// UnitSuffix ends every generated unit file name.
	UnitSuffix = "_test.py"
	// ScratchMarker is written into every scratch directory the tool creates.
	ScratchMarker = ".pyidoc-scratch"
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// reservedNames are the module-level names of the unit template.
var reservedNames = map[string]bool{
	"ast": true, "json": true, "sys": true, "time": true, "traceback": true, "Any": true,
	"_TEST_PREFIX": true, "_MISMATCHES": true,
	synth.ExpectedHelper: true, synth.AssertHelper: true, "_run_tests": true,
}

// ValidatePrefix reports whether prefix can start test function names. It
// must be an identifier that does not start with an underscore, the
// namespace of the unit's helpers.
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w %q: must be a letter followed by letters, digits or underscores", ErrInvalidPrefix, prefix)
	}
	return nil
}

// Unit is the generated test module for one declaration file.
type Unit struct {
	StubPath string
	Tests    []*synth.Test
	Source   string
}

// Build renders the unit for stubPath. It returns nil when tests holds no test.
func Build(stubPath string, tests []*synth.Test, prefix string) (*Unit, error) {
	if len(tests) == 0 {
		return nil, nil
	}
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	ctx := &template.UnitContext{
		StubPath:      filepath.ToSlash(stubPath),
		PrefixLiteral: strconv.Quote(prefix),
	}

	seen := make(map[string]bool, len(tests))
	for _, t := range tests {
		if seen[t.FuncName] {
			return nil, fmt.Errorf("%w %s in %s", ErrDuplicateTest, t.FuncName, stubPath)
		}
		if reservedNames[t.FuncName] {
			return nil, fmt.Errorf("%w %s in %s", ErrReservedName, t.FuncName, stubPath)
		}
		seen[t.FuncName] = true
		ctx.Tests = append(ctx.Tests, template.TestSource{Name: t.FuncName, Source: t.Source})
	}

	source, err := template.Render(unitTemplate, ctx)
	if err != nil {
		return nil, fmt.Errorf("rendering unit for %s: %w", stubPath, err)
	}

	return &Unit{StubPath: stubPath, Tests: tests, Source: source}, nil
}

// Write saves the unit as dir/name and returns the full path.
func (u *Unit) Write(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(u.Source), 0o644); err != nil {
		return "", fmt.Errorf("writing unit %s: %w", path, err)
	}
	return path, nil
}

// PrepareScratch removes dir and everything in it, then creates it empty with
// a [ScratchMarker] inside. It refuses a dir that is or contains any of the
// protected paths, and an existing non-empty dir without the marker unless it
// holds nothing but generated units.
func PrepareScratch(dir string, protected ...string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving scratch directory: %w", err)
	}

	for _, p := range protected {
		pAbs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		if within(abs, pAbs) {
			return fmt.Errorf("%w %s: it contains %s", ErrUnsafeScratch, dir, p)
		}
	}

	if err := checkOwned(abs); err != nil {
		return err
	}

	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("removing scratch directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(abs, ScratchMarker), nil, 0o644); err != nil {
		return fmt.Errorf("marking scratch directory: %w", err)
	}
	return nil
}

// within reports whether path is dir or lies beneath it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checkOwned returns an error unless dir is missing, empty, marked, or holds
// only generated units and bytecode caches.
func checkOwned(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrUnsafeScratch, dir, err)
	}

	for _, e := range entries {
		if e.Name() == ScratchMarker {
			return nil
		}
	}
	for _, e := range entries {
		generated := e.Type().IsRegular() && strings.HasSuffix(e.Name(), UnitSuffix)
		if !generated && !(e.IsDir() && e.Name() == "__pycache__") {
			return fmt.Errorf("%w %s: it holds %s, which was not generated", ErrUnsafeScratch, dir, e.Name())
		}
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// Namer hands out unit file names. A name is the declaration file's stem plus
// [UnitSuffix]; when that is taken the path relative to root is used instead.
type Namer struct {
	root string
	used map[string]bool
}

// NewNamer returns a Namer that resolves collisions relative to root.
func NewNamer(root string) *Namer {
	return &Namer{root: root, used: make(map[string]bool)}
}

// Name returns a file name for stubPath not handed out before.
func (n *Namer) Name(stubPath string) string {
	stem := strings.TrimSuffix(filepath.Base(stubPath), filepath.Ext(stubPath))
	name := sanitizeName(stem) + UnitSuffix

	if n.used[name] {
		rel, err := filepath.Rel(n.root, stubPath)
		if err != nil {
			rel = stubPath
		}
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
		name = sanitizeName(rel) + UnitSuffix
	}

	base := strings.TrimSuffix(name, UnitSuffix)
	for i := 2; n.used[name]; i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, UnitSuffix)
	}

	n.used[name] = true
	return name
}

func sanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(filepath.ToSlash(name), "_")
	if s == "" {
		s = "unnamed"
	}
	return s
}
