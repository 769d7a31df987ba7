package main

import (
	"fmt"

	"github.com/pyidoc/pyidoc/internal/materialize"
	"github.com/pyidoc/pyidoc/internal/projectconfig"
	"github.com/pyidoc/pyidoc/internal/runner"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "generate <file.pyi>",
		Short: "Print the test module generated for a declaration file",
		Long: `Print the test module that run would write for one declaration file
or Markdown document, without executing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("prefix") {
				if err := materialize.ValidatePrefix(prefix); err != nil {
					return err
				}
				cfg.Stubs.TestPrefix = prefix
			}

			r := runner.New(nil, runner.WithPrefix(cfg.Stubs.TestPrefix))
			unit, warnings, skip, err := r.Generate(args[0])
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			if skip != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Nothing to generate for %s: %s\n", args[0], skip.Reason)
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), unit.Source)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", projectconfig.DefaultTestPrefix, "Test function name prefix")

	return cmd
}
