package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pyidoc/pyidoc/internal/discovery"
	"github.com/pyidoc/pyidoc/internal/execution"
	"github.com/pyidoc/pyidoc/internal/models"
	"github.com/pyidoc/pyidoc/internal/projectconfig"
	"github.com/pyidoc/pyidoc/internal/reporting"
	"github.com/pyidoc/pyidoc/internal/runner"
	"github.com/spf13/cobra"
)

// Output formats accepted by --format.
const (
	formatDefault       = "default"
	formatGitHubComment = "github-comment"
)

type runOptions struct {
	verbose      bool
	srcDir       string
	scratchDir   string
	python       string
	docs         []string
	skipDoctests bool
	skipStubs    bool
	format       string
	outputPath   string
	junitPath    string
	interpret    bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the documented examples of a package",
		Long: `Run the documented examples of the package found in the source directory.

The examples embedded in the package's modules run first. Then every .pyi
declaration file is converted into a test module under the scratch directory
(recreated on every run) and executed. The command exits with status 1 when
any example or test failed.

Settings are read from .pyidoc.yaml when present; flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommandE(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output, including every embedded example")
	cmd.Flags().StringVar(&opts.srcDir, "src", "", "Source directory containing the package (default: src)")
	cmd.Flags().StringVar(&opts.scratchDir, "scratch", "", "Directory generated test modules are written to (default: doctests_temp)")
	cmd.Flags().StringVar(&opts.python, "python", "", "Python interpreter (default: python3, then python)")
	cmd.Flags().StringArrayVar(&opts.docs, "docs", nil, "Markdown file whose examples are also tested (can be repeated)")
	cmd.Flags().BoolVar(&opts.skipDoctests, "skip-doctests", false, "Do not run the examples embedded in modules")
	cmd.Flags().BoolVar(&opts.skipStubs, "skip-stubs", false, "Do not run the examples of declaration files")
	cmd.Flags().StringVar(&opts.format, "format", formatDefault, "Output format: default, github-comment")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output JSON file for results")
	cmd.Flags().StringVar(&opts.junitPath, "junit", "", "Output JUnit XML file for results")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")

	return cmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, opts *runOptions, cfg *projectconfig.ProjectConfig) {
	flags := cmd.Flags()
	if flags.Changed("src") {
		cfg.Paths.Source = opts.srcDir
	}
	if flags.Changed("scratch") {
		cfg.Paths.Scratch = opts.scratchDir
	}
	if flags.Changed("python") {
		cfg.Python = opts.python
	}
	if flags.Changed("docs") {
		cfg.Docs = opts.docs
	}
	if flags.Changed("verbose") {
		cfg.Verbose = &opts.verbose
	}
	if flags.Changed("skip-doctests") {
		enabled := !opts.skipDoctests
		cfg.Phases.Doctests = &enabled
	}
	if flags.Changed("skip-stubs") {
		enabled := !opts.skipStubs
		cfg.Phases.Stubs = &enabled
	}
}

func runCommandE(cmd *cobra.Command, opts *runOptions) error {
	if opts.format != formatDefault && opts.format != formatGitHubComment {
		return fmt.Errorf("unknown format %q: expected %s or %s", opts.format, formatDefault, formatGitHubComment)
	}

	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	pkg, err := discovery.FindPackage(cfg.Paths.Source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	verbose := cfg.Verbose != nil && *cfg.Verbose

	interp := execution.NewPython(cfg.Python, pkg.SrcDir)
	interp.Stdout = out
	interp.Stderr = cmd.ErrOrStderr()

	r := runner.New(interp,
		runner.WithScratchDir(cfg.Paths.Scratch),
		runner.WithExtension(cfg.Stubs.Extension),
		runner.WithPrefix(cfg.Stubs.TestPrefix),
		runner.WithVerbose(verbose),
		runner.WithDocs(cfg.Docs...),
		runner.WithSkipDoctests(cfg.Phases.Doctests != nil && !*cfg.Phases.Doctests),
		runner.WithSkipStubs(cfg.Phases.Stubs != nil && !*cfg.Phases.Stubs),
	)

	console := newConsoleReporter(out, verbose)
	if opts.format == formatDefault {
		r.OnProgress(console.progress)
	} else {
		// keep stdout clean for the comment body
		interp.Stdout = cmd.ErrOrStderr()
	}

	outcome, err := r.Run(cmd.Context(), pkg)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	switch opts.format {
	case formatGitHubComment:
		fmt.Fprint(out, FormatGitHubComment(outcome))
	default:
		console.printSummary(outcome)
		if opts.interpret {
			fmt.Fprintln(out)
			fmt.Fprint(out, reporting.FormatSummaryReport(outcome))
		}
	}

	if opts.outputPath != "" {
		if err := saveOutcome(outcome, opts.outputPath); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to: %s\n", opts.outputPath)
	}

	if opts.junitPath != "" {
		if err := reporting.WriteJUnitXML(outcome, opts.junitPath); err != nil {
			return fmt.Errorf("failed to write JUnit report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "JUnit report saved to: %s\n", opts.junitPath)
	}

	if !outcome.Summary.Succeeded() {
		return &TestFailureError{Message: failureMessage(outcome.Summary)}
	}
	return nil
}

func failureMessage(s models.Summary) string {
	return fmt.Sprintf("run completed with %d failed test(s), %d unit load error(s) and %d failed doctest(s)",
		s.Failed, s.Errors, s.DoctestsFailed)
}

func saveOutcome(outcome *models.Outcome, path string) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
