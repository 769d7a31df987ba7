package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/pyidoc/pyidoc/internal/models"
)

// InterpretPassRate returns a human-readable explanation of a pass rate (0–1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All tests passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most tests passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the tests passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few tests passed (%.0f%%)", pct)
	}
}

// InterpretSkips explains what skipped files and modules mean for coverage.
func InterpretSkips(skippedFiles, skippedModules int) string {
	if skippedFiles == 0 && skippedModules == 0 {
		return "Every file and module was exercised."
	}
	return fmt.Sprintf("%d declaration file(s) had nothing to test and %d module(s) could not be imported. Their examples were not run.",
		skippedFiles, skippedModules)
}

// FormatSummaryReport produces a plain-language report from an Outcome.
func FormatSummaryReport(outcome *models.Outcome) string {
	var b strings.Builder

	s := outcome.Summary
	duration := time.Duration(s.DurationMs) * time.Millisecond

	b.WriteString("=== Interpretation ===\n\n")

	if s.Total > 0 {
		b.WriteString(fmt.Sprintf("Stub Examples: %s\n", InterpretPassRate(float64(s.Passed)/float64(s.Total))))
	}
	if s.DoctestsAttempted > 0 {
		rate := float64(s.DoctestsAttempted-s.DoctestsFailed) / float64(s.DoctestsAttempted)
		b.WriteString(fmt.Sprintf("Doctests:      %s\n", InterpretPassRate(rate)))
	}
	b.WriteString(fmt.Sprintf("Coverage:      %s\n", InterpretSkips(s.SkippedFiles, s.SkippedModules)))
	b.WriteString(fmt.Sprintf("Duration:      %v\n", duration))

	if s.Errors > 0 {
		b.WriteString(fmt.Sprintf("\n%d file(s) could not be loaded, so none of their tests ran:\n", s.Errors))
		for _, f := range outcome.Files {
			if f.Error != "" {
				b.WriteString(fmt.Sprintf("  ✗ %s: %s\n", f.Path, f.Error))
			}
		}
	}

	var warned []models.FileResult
	for _, f := range outcome.Files {
		if len(f.Warnings) > 0 {
			warned = append(warned, f)
		}
	}
	if len(warned) > 0 {
		b.WriteString("\nExpected outputs that are not plain literals always fail:\n")
		for _, f := range warned {
			for _, w := range f.Warnings {
				b.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", f.Module, w))
			}
		}
	}

	return b.String()
}
