package main

import (
	"fmt"

	"github.com/spboyer/arena/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <evaluation.json>...",
		Short: "Check evaluation exports against the evaluation schema",
		Long: `Check one or more evaluation JSON files against the evaluation schema.

Every violation is listed with its JSON location. The command exits 1 when any
file is invalid and 2 when a file cannot be read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				errs, err := validation.ValidateEvaluationFile(path)
				if err != nil {
					return err
				}
				if len(errs) == 0 {
					fmt.Fprintf(out, "✓ %s\n", path) //nolint:errcheck
					continue
				}
				invalid++
				fmt.Fprintf(out, "✗ %s\n", path) //nolint:errcheck
				for _, e := range errs {
					fmt.Fprintf(out, "    %s\n", e) //nolint:errcheck
				}
			}
			if invalid > 0 {
				return &ValidationFailureError{Message: fmt.Sprintf("%d of %d file(s) failed validation", invalid, len(args))}
			}
			return nil
		},
	}
}
