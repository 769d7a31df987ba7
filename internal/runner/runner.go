// Package runner drives the two testing phases over one package: the examples
// embedded in runtime modules, and the examples synthesized from declaration
// stubs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pyidoc/pyidoc/internal/discovery"
	"github.com/pyidoc/pyidoc/internal/execution"
	"github.com/pyidoc/pyidoc/internal/markdown"
	"github.com/pyidoc/pyidoc/internal/materialize"
	"github.com/pyidoc/pyidoc/internal/models"
	"github.com/pyidoc/pyidoc/internal/stubs"
	"github.com/pyidoc/pyidoc/internal/synth"
)

// Defaults used when no option overrides them.
const (
	DefaultScratchDir = "doctests_temp"
	DefaultExtension  = ".pyi"
)

// Reasons recorded for declaration files that produce no unit.
const (
	ReasonNoBlocks = "no documented declarations"
	ReasonNoTests  = "no convertible examples"
)

// Runner runs the testing phases. It processes one file at a time.
type Runner struct {
	interp execution.Interpreter

	scratchDir string
	extension  string
	prefix     string
	verbose    bool
	docs       []string

	skipDoctests bool
	skipStubs    bool

	listeners []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventDoctestsStart    EventType = "doctests_start"
	EventModuleComplete   EventType = "module_complete"
	EventModuleSkipped    EventType = "module_skipped"
	EventDoctestsComplete EventType = "doctests_complete"
	EventScratchReady     EventType = "scratch_ready"
	EventFileStart        EventType = "file_start"
	EventFileComplete     EventType = "file_complete"
	EventFileSkipped      EventType = "file_skipped"
	EventFileError        EventType = "file_error"
	EventRunComplete      EventType = "run_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType EventType
	// Name is the package, module or file display name the event is about.
	Name string
	// Path is the file the event is about, if any.
	Path   string
	Passed int
	Total  int
	Failed int
	// Message carries a skip reason or an error.
	Message string
}

// Option configures a Runner.
type Option func(*Runner)

// WithScratchDir sets the directory generated units are written to.
func WithScratchDir(dir string) Option {
	return func(r *Runner) {
		r.scratchDir = dir
	}
}

// WithExtension sets the declaration file extension.
func WithExtension(ext string) Option {
	return func(r *Runner) {
		r.extension = ext
	}
}

// WithPrefix sets the test function name prefix.
func WithPrefix(prefix string) Option {
	return func(r *Runner) {
		r.prefix = prefix
	}
}

// WithVerbose makes the embedded-example phase report every example.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) {
		r.verbose = verbose
	}
}

// WithDocs adds Markdown files whose fenced examples are tested after the
// declaration files.
func WithDocs(paths ...string) Option {
	return func(r *Runner) {
		r.docs = append(r.docs, paths...)
	}
}

// WithSkipDoctests disables the embedded-example phase.
func WithSkipDoctests(skip bool) Option {
	return func(r *Runner) {
		r.skipDoctests = skip
	}
}

// WithSkipStubs disables the declaration-file phase.
func WithSkipStubs(skip bool) Option {
	return func(r *Runner) {
		r.skipStubs = skip
	}
}

// New creates a Runner that executes code with interp.
func New(interp execution.Interpreter, opts ...Option) *Runner {
	r := &Runner{
		interp:     interp,
		scratchDir: DefaultScratchDir,
		extension:  DefaultExtension,
		prefix:     synth.DefaultPrefix,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	for _, listener := range r.listeners {
		listener(event)
	}
}

// Run executes the enabled phases against pkg and returns the combined
// outcome. Failures inside the phases are part of the outcome; an error is
// returned only when a phase could not run at all.
func (r *Runner) Run(ctx context.Context, pkg *discovery.Package) (*models.Outcome, error) {
	start := time.Now()
	outcome := &models.Outcome{
		Package:   pkg.Name,
		Timestamp: start,
		Files:     []models.FileResult{},
	}

	if !r.skipDoctests {
		doctests, skipped, err := r.RunDoctests(ctx, pkg.Name)
		if err != nil {
			return nil, err
		}
		outcome.Doctests = doctests
		outcome.SkippedModules = skipped
	}

	if !r.skipStubs {
		files, skipped, err := r.RunStubs(ctx, pkg.Dir)
		if err != nil {
			return nil, err
		}
		outcome.Files = files
		outcome.SkippedFiles = skipped
	}

	outcome.Summary = models.Fold(outcome.Doctests, outcome.SkippedModules, outcome.Files, outcome.SkippedFiles)
	outcome.Summary.DurationMs = time.Since(start).Milliseconds()

	r.notifyProgress(ProgressEvent{
		EventType: EventRunComplete,
		Name:      pkg.Name,
		Passed:    outcome.Summary.Passed,
		Total:     outcome.Summary.Total,
		Failed:    outcome.Summary.Failed,
	})

	return outcome, nil
}

// RunDoctests runs the examples embedded in every importable module of pkg.
// Every module is processed before the caller decides on failure.
func (r *Runner) RunDoctests(ctx context.Context, pkg string) ([]models.ModuleDoctest, []models.SkippedModule, error) {
	r.notifyProgress(ProgressEvent{EventType: EventDoctestsStart, Name: pkg})

	report, err := r.interp.RunDoctests(ctx, pkg, r.verbose)
	if err != nil {
		return nil, nil, err
	}

	for _, m := range report.Skipped {
		slog.Debug("Skipped module that failed to import", "module", m.Name, "error", m.Error)
		r.notifyProgress(ProgressEvent{EventType: EventModuleSkipped, Name: m.Name, Message: m.Error})
	}

	for _, m := range report.Modules {
		r.notifyProgress(ProgressEvent{
			EventType: EventModuleComplete,
			Name:      m.Name,
			Passed:    m.Attempted - m.Failed,
			Total:     m.Attempted,
			Failed:    m.Failed,
		})
	}

	r.notifyProgress(ProgressEvent{EventType: EventDoctestsComplete, Name: pkg, Failed: report.Failed()})

	return report.Modules, report.Skipped, nil
}

// RunStubs recreates the scratch directory, then synthesizes, writes and runs
// a unit for every declaration file under pkgDir, followed by the configured
// Markdown files. Files that yield no unit are returned as skipped.
func (r *Runner) RunStubs(ctx context.Context, pkgDir string) ([]models.FileResult, []models.SkippedFile, error) {
	protected := append([]string{pkgDir}, r.docs...)
	if wd, err := os.Getwd(); err == nil {
		protected = append(protected, wd)
	}
	if err := materialize.PrepareScratch(r.scratchDir, protected...); err != nil {
		return nil, nil, err
	}

	scratch := r.scratchDir
	if abs, err := filepath.Abs(scratch); err == nil {
		scratch = abs
	}
	r.notifyProgress(ProgressEvent{EventType: EventScratchReady, Path: scratch})

	paths, err := discovery.FindStubs(pkgDir, r.extension)
	if err != nil {
		return nil, nil, err
	}
	paths = append(paths, r.docs...)

	namer := materialize.NewNamer(pkgDir)
	results := []models.FileResult{}
	var skipped []models.SkippedFile

	for _, path := range paths {
		result, skip, err := r.runFile(ctx, path, namer)
		if err != nil {
			return nil, nil, err
		}
		if skip != nil {
			slog.Debug("Skipped declaration file", "path", path, "reason", skip.Reason)
			r.notifyProgress(ProgressEvent{EventType: EventFileSkipped, Name: moduleName(path), Path: path, Message: skip.Reason})
			skipped = append(skipped, *skip)
			continue
		}
		results = append(results, *result)
	}

	return results, skipped, nil
}

// Generate reads path and builds its unit without writing or running it. It
// returns a skip record instead of a unit when the file has nothing to test,
// and the synthesis warnings of every block.
func (r *Runner) Generate(path string) (*materialize.Unit, []string, *models.SkippedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	blocks, err := extract(path, content)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading examples from %s: %w", path, err)
	}
	if len(blocks) == 0 {
		return nil, nil, &models.SkippedFile{Path: path, Reason: ReasonNoBlocks}, nil
	}

	var tests []*synth.Test
	var warnings []string
	for _, block := range blocks {
		test := synth.Synthesize(block, synth.WithPrefix(r.prefix))
		if test == nil {
			continue
		}
		for _, w := range test.Warnings {
			slog.Warn("Expected output is not a literal", "path", path, "block", block.Name, "detail", w)
			warnings = append(warnings, fmt.Sprintf("%s: %s", block.Name, w))
		}
		tests = append(tests, test)
	}

	if len(tests) == 0 {
		return nil, warnings, &models.SkippedFile{Path: path, Reason: ReasonNoTests}, nil
	}

	unit, err := materialize.Build(path, tests, r.prefix)
	if err != nil {
		return nil, warnings, nil, err
	}
	return unit, warnings, nil, nil
}

// runFile processes one declaration or Markdown file. It returns a result, a
// skip record, or an error that should abort the run.
func (r *Runner) runFile(ctx context.Context, path string, namer *materialize.Namer) (*models.FileResult, *models.SkippedFile, error) {
	module := moduleName(path)

	unit, warnings, skip, err := r.Generate(path)
	if err != nil {
		result := r.fileError(path, module, "", err)
		result.Warnings = warnings
		return result, nil, nil
	}
	if skip != nil {
		return nil, skip, nil
	}

	unitPath, err := unit.Write(r.scratchDir, namer.Name(path))
	if err != nil {
		return nil, nil, err
	}

	r.notifyProgress(ProgressEvent{EventType: EventFileStart, Name: module, Path: path})

	report, err := r.interp.RunUnit(ctx, unitPath)
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, execution.ErrUnitLoad) {
			return nil, nil, err
		}
		result := r.fileError(path, module, unitPath, err)
		result.Warnings = warnings
		return result, nil, nil
	}

	result := &models.FileResult{
		Path:     path,
		Module:   module,
		UnitPath: unitPath,
		Tests:    make([]models.TestResult, 0, len(report.Tests)),
		Warnings: warnings,
	}
	for _, t := range report.Tests {
		result.Tests = append(result.Tests, t.Result())
	}

	r.notifyProgress(ProgressEvent{
		EventType: EventFileComplete,
		Name:      module,
		Path:      path,
		Passed:    result.Passed(),
		Total:     result.Total(),
		Failed:    result.Total() - result.Passed(),
	})

	return result, nil, nil
}

func extract(path string, content []byte) ([]stubs.Block, error) {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return markdown.Extract(content, moduleName(path))
	}
	return stubs.Extract(string(content)), nil
}

func (r *Runner) fileError(path, module, unitPath string, err error) *models.FileResult {
	slog.Debug("Declaration file failed", "path", path, "error", err)
	r.notifyProgress(ProgressEvent{EventType: EventFileError, Name: module, Path: path, Message: err.Error()})
	return &models.FileResult{
		Path:     path,
		Module:   module,
		UnitPath: unitPath,
		Tests:    []models.TestResult{},
		Error:    err.Error(),
	}
}

// moduleName is the display name of a declaration file: its base name without
// the extension.
func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
