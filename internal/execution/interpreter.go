package execution

import (
	"context"
	"errors"

	"github.com/pyidoc/pyidoc/internal/models"
)

//go:generate go tool mockgen -source=interpreter.go -destination=mock_interpreter.go -package=execution

// ErrUnitLoad is returned when a generated unit could not be loaded or did
// not report any results.
var ErrUnitLoad = errors.New("unit failed to load")

// Interpreter loads and executes Python code on behalf of the runner.
type Interpreter interface {
	// RunUnit executes the generated unit at unitPath and returns the result of
	// every test it defines.
	RunUnit(ctx context.Context, unitPath string) (*UnitReport, error)

	// RunDoctests runs the examples embedded in every importable module of pkg.
	RunDoctests(ctx context.Context, pkg string, verbose bool) (*DoctestReport, error)
}

// UnitReport is the payload written by a generated unit's driver.
type UnitReport struct {
	Tests []TestReport `mapstructure:"tests"`
}

// TestReport is the outcome of one test function as reported by the driver.
type TestReport struct {
	Name       string           `mapstructure:"name"`
	Passed     bool             `mapstructure:"passed"`
	Error      string           `mapstructure:"error"`
	DurationMs int64            `mapstructure:"duration_ms"`
	Mismatch   *models.Mismatch `mapstructure:"mismatch"`
}

// Result converts the report into a test result.
func (r TestReport) Result() models.TestResult {
	status := models.StatusFailed
	switch {
	case r.Error != "":
		status = models.StatusError
	case r.Passed:
		status = models.StatusPassed
	}
	return models.TestResult{
		Name:       r.Name,
		Status:     status,
		Error:      r.Error,
		DurationMs: r.DurationMs,
		Mismatch:   r.Mismatch,
	}
}

// DoctestReport is the payload written by the embedded-example script.
type DoctestReport struct {
	Modules []models.ModuleDoctest `mapstructure:"modules"`
	Skipped []models.SkippedModule `mapstructure:"skipped"`
}

// Failed returns the number of failed examples across all modules.
func (r *DoctestReport) Failed() int {
	n := 0
	for _, m := range r.Modules {
		n += m.Failed
	}
	return n
}
