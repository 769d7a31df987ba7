package execution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pyidoc/pyidoc/internal/validation"
)

//go:embed data/run_doctests.py
var runDoctestsPy string

// Python runs generated units and embedded examples in a Python subprocess.
type Python struct {
	// Bin is the interpreter to run.
	Bin string
	// SrcDir is prepended to PYTHONPATH so the package under test imports.
	SrcDir string
	// WorkDir is the working directory of the subprocess. Empty means the
	// current directory.
	WorkDir string

	Stdout io.Writer
	Stderr io.Writer
}

// NewPython returns a Python that runs bin with srcDir importable. An empty
// bin is resolved with [ResolvePythonBin].
func NewPython(bin, srcDir string) *Python {
	if bin == "" {
		bin = ResolvePythonBin()
	}
	return &Python{Bin: bin, SrcDir: srcDir, Stdout: os.Stdout, Stderr: os.Stderr}
}

// ResolvePythonBin returns the name of a working Python 3 interpreter.
func ResolvePythonBin() string {
	// Prefer python3, but verify it actually works. On Windows the Microsoft
	// Store registers a python3.exe stub that prints "Python was not found"
	// and exits 9009.
	if path, err := exec.LookPath("python3"); err == nil {
		cmd := exec.Command(path, "--version")
		if cmd.Run() == nil {
			return "python3"
		}
	}
	return "python"
}

// RunUnit implements [Interpreter].
func (p *Python) RunUnit(ctx context.Context, unitPath string) (*UnitReport, error) {
	data, err := p.runWithResults(ctx, unitPath)
	if err != nil {
		// a missing interpreter is not the unit's fault
		if errors.Is(err, exec.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnitLoad, unitPath, err)
	}

	var report UnitReport
	if err := decodeReport(data, validation.ValidateUnitReport, &report); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnitLoad, unitPath, err)
	}
	return &report, nil
}

// RunDoctests implements [Interpreter].
func (p *Python) RunDoctests(ctx context.Context, pkg string, verbose bool) (*DoctestReport, error) {
	script, err := os.CreateTemp("", "pyidoc-doctests-*.py")
	if err != nil {
		return nil, err
	}

	defer func() {
		os.Remove(script.Name()) //nolint:errcheck
	}()

	if _, err := script.WriteString(runDoctestsPy); err != nil {
		script.Close() //nolint:errcheck
		return nil, err
	}

	if err := script.Close(); err != nil {
		return nil, err
	}

	args := []string{pkg}
	if verbose {
		args = append(args, "--verbose")
	}

	data, err := p.runWithResults(ctx, script.Name(), args...)
	if err != nil {
		return nil, fmt.Errorf("running doctests for %s: %w", pkg, err)
	}

	var report DoctestReport
	if err := decodeReport(data, validation.ValidateDoctestReport, &report); err != nil {
		return nil, fmt.Errorf("reading doctest results for %s: %w", pkg, err)
	}
	return &report, nil
}

// runWithResults runs script with the path of a fresh results file as its
// first argument, followed by args, and returns what the script wrote there.
func (p *Python) runWithResults(ctx context.Context, script string, args ...string) ([]byte, error) {
	results, err := os.CreateTemp("", "pyidoc-results-*.json")
	if err != nil {
		return nil, err
	}
	resultsPath := results.Name()

	defer func() {
		os.Remove(resultsPath) //nolint:errcheck
	}()

	if err := results.Close(); err != nil {
		return nil, err
	}

	cmdArgs := append([]string{script, resultsPath}, args...)

	cmd := exec.CommandContext(ctx, p.Bin, cmdArgs...)
	cmd.Dir = p.WorkDir
	cmd.Env = p.environ()
	cmd.Stdout = writerOrDiscard(p.Stdout)
	cmd.Stderr = writerOrDiscard(p.Stderr)

	slog.Debug("Running interpreter", "bin", p.Bin, "args", cmdArgs)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("interpreter exited: %w", err)
	}

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no results were written")
	}
	return data, nil
}

func (p *Python) environ() []string {
	env := os.Environ()
	env = append(env, "PYTHONDONTWRITEBYTECODE=1")

	if p.SrcDir != "" {
		srcDir := p.SrcDir
		if abs, err := filepath.Abs(srcDir); err == nil {
			srcDir = abs
		}
		paths := []string{srcDir}
		if existing := os.Getenv("PYTHONPATH"); existing != "" {
			paths = append(paths, existing)
		}
		env = append(env, "PYTHONPATH="+strings.Join(paths, string(os.PathListSeparator)))
	}
	return env
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// decodeReport unmarshals data, validates it and decodes it into out.
func decodeReport(data []byte, validate func(any) []string, out any) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to deserialize results: %w", err)
	}

	if errs := validate(doc); len(errs) > 0 {
		return fmt.Errorf("invalid results: %s", strings.Join(errs, "; "))
	}

	if err := mapstructure.Decode(doc, out); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}
	return nil
}
