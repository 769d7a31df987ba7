package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func results(statuses ...Status) []TestResult {
	out := make([]TestResult, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, TestResult{Name: string(rune('a' + i)), Status: s})
	}
	return out
}

func TestFileResult_Counts(t *testing.T) {
	f := FileResult{Tests: results(StatusPassed, StatusFailed, StatusPassed)}

	assert.Equal(t, 2, f.Passed())
	assert.Equal(t, 3, f.Total())
}

func TestFold_TwoFiles(t *testing.T) {
	files := []FileResult{
		{Path: "a.pyi", Tests: results(StatusPassed, StatusPassed, StatusPassed)},
		{Path: "b.pyi", Tests: results(StatusPassed, StatusFailed, StatusPassed)},
	}

	s := Fold(nil, nil, files, nil)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 5, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.False(t, s.Succeeded())
}

func TestFold_Empty(t *testing.T) {
	s := Fold(nil, nil, nil, []SkippedFile{{Path: "empty.pyi", Reason: "no documented declarations"}})

	assert.Equal(t, Summary{SkippedFiles: 1}, s)
	assert.True(t, s.Succeeded())
}

func TestFold_ErrorsAndDoctests(t *testing.T) {
	doctests := []ModuleDoctest{
		{Name: "pkg.a", Attempted: 4, Failed: 0},
		{Name: "pkg.b", Attempted: 2, Failed: 1},
	}
	skipped := []SkippedModule{{Name: "pkg.broken", Error: "ImportError"}}
	files := []FileResult{
		{Path: "a.pyi", Tests: results(StatusPassed)},
		{Path: "b.pyi", Error: "duplicate test function test_f"},
	}

	s := Fold(doctests, skipped, files, nil)

	assert.Equal(t, 6, s.DoctestsAttempted)
	assert.Equal(t, 1, s.DoctestsFailed)
	assert.Equal(t, 1, s.SkippedModules)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 0, s.Failed)
	assert.False(t, s.Succeeded())
}

func TestSummary_Succeeded(t *testing.T) {
	assert.True(t, Summary{Total: 3, Passed: 3}.Succeeded())
	assert.False(t, Summary{Total: 3, Passed: 2, Failed: 1}.Succeeded())
	assert.False(t, Summary{Errors: 1}.Succeeded())
	assert.False(t, Summary{DoctestsAttempted: 1, DoctestsFailed: 1}.Succeeded())
}
