package models

import (
	"time"
)

// Status represents the outcome status of a synthesized test or a unit.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusError  Status = "error"
)

// Mismatch is the first failing comparison inside a synthesized test.
type Mismatch struct {
	Block    string `json:"block" mapstructure:"block"`
	Source   string `json:"source" mapstructure:"source"`
	Got      string `json:"got" mapstructure:"got"`
	Expected string `json:"expected" mapstructure:"expected"`
}

// TestResult is the outcome of one synthesized test function.
type TestResult struct {
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Mismatch   *Mismatch `json:"mismatch,omitempty"`
}

// FileResult is the outcome of one declaration file. It is built once, after
// the file's unit has run, and not modified afterwards.
type FileResult struct {
	// Path is the declaration (or documentation) file the unit came from.
	Path string `json:"path"`
	// Module is the display name used in progress output.
	Module string `json:"module"`
	// UnitPath is the generated file in the scratch directory.
	UnitPath string       `json:"unit_path,omitempty"`
	Tests    []TestResult `json:"tests"`
	// Warnings collects synthesis diagnostics for the file's blocks.
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the unit could not be built or loaded. Such a file
	// contributes no tests but still fails the run.
	Error string `json:"error,omitempty"`
}

// Passed returns the number of tests in the file that passed.
func (f FileResult) Passed() int {
	n := 0
	for _, t := range f.Tests {
		if t.Status == StatusPassed {
			n++
		}
	}
	return n
}

// Total returns the number of tests run for the file.
func (f FileResult) Total() int {
	return len(f.Tests)
}

// SkippedFile is a declaration file that produced no unit.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ModuleDoctest is the embedded-example result for one runtime module.
type ModuleDoctest struct {
	Name      string `json:"name" mapstructure:"name"`
	Attempted int    `json:"attempted" mapstructure:"attempted"`
	Failed    int    `json:"failed" mapstructure:"failed"`
}

// SkippedModule is a runtime module that could not be imported.
type SkippedModule struct {
	Name  string `json:"name" mapstructure:"name"`
	Error string `json:"error" mapstructure:"error"`
}

// Summary aggregates every result of a run.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	// Errors counts files whose unit could not be built or loaded.
	Errors int `json:"errors"`

	DoctestsAttempted int `json:"doctests_attempted"`
	DoctestsFailed    int `json:"doctests_failed"`

	SkippedFiles   int `json:"skipped_files"`
	SkippedModules int `json:"skipped_modules"`

	DurationMs int64 `json:"duration_ms"`
}

// Outcome is the complete result of one run.
type Outcome struct {
	Package        string          `json:"package"`
	Timestamp      time.Time       `json:"timestamp"`
	Doctests       []ModuleDoctest `json:"doctests,omitempty"`
	SkippedModules []SkippedModule `json:"skipped_modules,omitempty"`
	Files          []FileResult    `json:"files"`
	SkippedFiles   []SkippedFile   `json:"skipped_files,omitempty"`
	Summary        Summary         `json:"summary"`
}

// Fold computes the summary of the given results.
func Fold(doctests []ModuleDoctest, skippedModules []SkippedModule, files []FileResult, skippedFiles []SkippedFile) Summary {
	var s Summary
	for _, d := range doctests {
		s.DoctestsAttempted += d.Attempted
		s.DoctestsFailed += d.Failed
	}
	for _, f := range files {
		if f.Error != "" {
			s.Errors++
		}
		s.Total += f.Total()
		s.Passed += f.Passed()
	}
	s.Failed = s.Total - s.Passed
	s.SkippedFiles = len(skippedFiles)
	s.SkippedModules = len(skippedModules)
	return s
}

// Succeeded reports whether the run had no failures of any kind.
func (s Summary) Succeeded() bool {
	return s.Failed == 0 && s.Errors == 0 && s.DoctestsFailed == 0
}
