package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/pyidoc/pyidoc/internal/models"
	"github.com/pyidoc/pyidoc/internal/runner"
	"golang.org/x/term"
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// consoleReporter writes progress and the final summary of a run.
type consoleReporter struct {
	out     io.Writer
	verbose bool
	// glyphs selects check marks over plain words for statuses.
	glyphs bool
}

func newConsoleReporter(out io.Writer, verbose bool) *consoleReporter {
	return &consoleReporter{out: out, verbose: verbose, glyphs: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *consoleReporter) status(ok bool) string {
	switch {
	case c.glyphs && ok:
		return "✓"
	case c.glyphs:
		return "✗"
	case ok:
		return "ok"
	default:
		return "FAIL"
	}
}

func (c *consoleReporter) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// progress is the runner listener for the default output format.
func (c *consoleReporter) progress(event runner.ProgressEvent) {
	switch event.EventType {
	case runner.EventDoctestsStart:
		c.printf("Running doctests for package: %s\n", event.Name)
	case runner.EventModuleSkipped:
		c.printf("  Skipped %s: %s\n", event.Name, event.Message)
	case runner.EventModuleComplete:
		if c.verbose || event.Failed > 0 {
			c.printf("  %d/%d examples passed for %s\n", event.Passed, event.Total, event.Name)
		}
	case runner.EventDoctestsComplete:
		if event.Failed > 0 {
			c.printf("\nSome doctests failed. (%s) (%d failures)\n", event.Name, event.Failed)
		}
	case runner.EventScratchReady:
		c.printf("Test files will be saved to: %s\n", event.Path)
	case runner.EventFileStart:
		c.printf("\nRunning tests for %s...\n", event.Name)
	case runner.EventFileComplete:
		c.printf("  %d/%d tests passed for %s\n", event.Passed, event.Total, event.Name)
	case runner.EventFileError:
		c.printf("  Could not load tests for %s: %s\n", event.Name, event.Message)
	case runner.EventFileSkipped:
		if c.verbose {
			c.printf("Skipping %s: %s\n", displayPath(event.Path), event.Message)
		}
	}
}

// printSummary writes the aggregate results, the per-file table, and every
// skipped item and failed test.
func (c *consoleReporter) printSummary(outcome *models.Outcome) {
	s := outcome.Summary

	c.printf("\nTotal Results: %d/%d tests passed\n", s.Passed, s.Total)
	if s.Failed > 0 {
		c.printf("%d tests failed\n", s.Failed)
	}
	if s.Errors > 0 {
		c.printf("%d file(s) could not be loaded\n", s.Errors)
	}
	if s.DoctestsAttempted > 0 {
		c.printf("Doctests: %d/%d examples passed\n", s.DoctestsAttempted-s.DoctestsFailed, s.DoctestsAttempted)
	}

	if len(outcome.Files) > 0 {
		c.printf("\n")
		c.printFileTable(outcome.Files)
	}

	if len(outcome.SkippedFiles) > 0 {
		c.printf("\nSkipped declaration files:\n")
		for _, f := range outcome.SkippedFiles {
			c.printf("  - %s (%s)\n", displayPath(f.Path), f.Reason)
		}
	}

	if len(outcome.SkippedModules) > 0 {
		c.printf("\nModules that could not be imported:\n")
		for _, m := range outcome.SkippedModules {
			c.printf("  - %s: %s\n", m.Name, firstLine(m.Error))
		}
	}

	if s.Failed > 0 || s.Errors > 0 {
		c.printf("\nFailed tests:\n")
		for _, f := range outcome.Files {
			if f.Error != "" {
				c.printf("  - %s: %s\n", f.Module, firstLine(f.Error))
				continue
			}
			for _, t := range f.Tests {
				if t.Status == models.StatusPassed {
					continue
				}
				c.printf("  - %s.%s: %s\n", f.Module, t.Name, describeFailure(t))
			}
		}
	}

	if s.Succeeded() {
		c.printf("\nAll tests completed successfully!\n")
	} else {
		c.printf("\nSome tests failed\n")
	}
}

// printFileTable writes one aligned row per declaration file.
func (c *consoleReporter) printFileTable(files []models.FileResult) {
	const header = "File"

	width := runewidth.StringWidth(header)
	for _, f := range files {
		width = max(width, runewidth.StringWidth(displayPath(f.Path)))
	}

	statusWidth := runewidth.StringWidth(c.status(false))
	c.printf("  %s %s  %6s  %5s\n", strings.Repeat(" ", statusWidth), runewidth.FillRight(header, width), "Passed", "Total")
	for _, f := range files {
		ok := f.Error == "" && f.Passed() == f.Total()
		mark := runewidth.FillRight(c.status(ok), statusWidth)
		c.printf("  %s %s  %6d  %5d\n", mark, runewidth.FillRight(displayPath(f.Path), width), f.Passed(), f.Total())
	}
}

func describeFailure(t models.TestResult) string {
	switch {
	case t.Mismatch != nil:
		return fmt.Sprintf("%s: got %s, expected %s (%s)", t.Mismatch.Block, t.Mismatch.Got, t.Mismatch.Expected, t.Mismatch.Source)
	case t.Error != "":
		return firstLine(t.Error)
	default:
		return string(t.Status)
	}
}

// displayPath shortens path relative to the working directory when it lies
// beneath it.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatGitHubComment formats an Outcome as a markdown comment for GitHub PRs
func FormatGitHubComment(outcome *models.Outcome) string {
	var b strings.Builder

	s := outcome.Summary
	duration := time.Duration(s.DurationMs) * time.Millisecond

	b.WriteString("## 🧪 pyidoc Results\n\n")

	statusIcon := "✅ Passed"
	if !s.Succeeded() {
		statusIcon = "❌ Failed"
	}

	b.WriteString(fmt.Sprintf("**Status:** %s | **Package:** `%s` | **Duration:** %s\n\n",
		statusIcon, outcome.Package, formatDuration(duration)))

	b.WriteString(fmt.Sprintf("- **Stub tests:** %d total, %d passed, %d failed, %d load errors\n",
		s.Total, s.Passed, s.Failed, s.Errors))
	b.WriteString(fmt.Sprintf("- **Doctests:** %d attempted, %d failed\n", s.DoctestsAttempted, s.DoctestsFailed))
	b.WriteString(fmt.Sprintf("- **Skipped:** %d declaration file(s), %d module(s)\n\n", s.SkippedFiles, s.SkippedModules))

	if len(outcome.Files) > 0 {
		b.WriteString("### File Results\n\n")
		b.WriteString("| File | Passed | Total | Status |\n")
		b.WriteString("|------|--------|-------|--------|\n")
		for _, f := range outcome.Files {
			icon := "✅"
			if f.Error != "" || f.Passed() != f.Total() {
				icon = "❌"
			}
			b.WriteString(fmt.Sprintf("| `%s` | %d | %d | %s |\n", displayPath(f.Path), f.Passed(), f.Total(), icon))
		}
		b.WriteString("\n")
	}

	if len(outcome.Doctests) > 0 {
		b.WriteString("### Doctest Modules\n\n")
		b.WriteString("| Module | Attempted | Failed | Status |\n")
		b.WriteString("|--------|-----------|--------|--------|\n")
		for _, m := range outcome.Doctests {
			icon := "✅"
			if m.Failed > 0 {
				icon = "❌"
			}
			b.WriteString(fmt.Sprintf("| `%s` | %d | %d | %s |\n", m.Name, m.Attempted, m.Failed, icon))
		}
		b.WriteString("\n")
	}

	if len(outcome.SkippedFiles) > 0 || len(outcome.SkippedModules) > 0 {
		b.WriteString("### ⚠️ Skipped\n\n")
		for _, f := range outcome.SkippedFiles {
			b.WriteString(fmt.Sprintf("- `%s`: %s\n", displayPath(f.Path), f.Reason))
		}
		for _, m := range outcome.SkippedModules {
			b.WriteString(fmt.Sprintf("- `%s`: import failed: %s\n", m.Name, firstLine(m.Error)))
		}
		b.WriteString("\n")
	}

	if s.Failed > 0 || s.Errors > 0 {
		b.WriteString("### Failed Test Details\n\n")
		for _, f := range outcome.Files {
			if f.Error == "" && f.Passed() == f.Total() {
				continue
			}
			b.WriteString(fmt.Sprintf("#### %s\n\n", displayPath(f.Path)))
			if f.Error != "" {
				b.WriteString(fmt.Sprintf("- ❌ unit could not be loaded: %s\n\n", firstLine(f.Error)))
				continue
			}
			for _, t := range f.Tests {
				switch {
				case t.Status == models.StatusPassed:
				case t.Mismatch != nil:
					b.WriteString(fmt.Sprintf("- ❌ **%s** (`%s`): got `%s`, expected `%s`\n",
						t.Name, t.Mismatch.Source, t.Mismatch.Got, t.Mismatch.Expected))
				default:
					b.WriteString(fmt.Sprintf("- ❌ **%s**: %s\n", t.Name, firstLine(t.Error)))
				}
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
