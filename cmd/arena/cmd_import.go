package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spboyer/arena/internal/models"
	"github.com/spboyer/arena/internal/projectconfig"
	"github.com/spboyer/arena/internal/store"
	"github.com/spboyer/arena/internal/validation"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "import <evaluation.json>...",
		Short: "Import exported evaluations into the database",
		Long: `Import evaluation JSON files into the SQLite database.

Each file is checked against the evaluation schema first. Invalid files are
reported and skipped; the rest are saved with their items and their test run,
if it exists, is marked completed. Files without an id get a generated one.
Evaluations already in the database are left as they are. The command exits 1
when any file was skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			cfg.Storage.Driver = projectconfig.DriverSQLite
			if db != "" {
				cfg.Storage.DSN = db
			}

			_, st, closeStore, err := openStorage(cfg.Storage)
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			skipped := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				raw, errs := validation.DecodeEvaluation(data)
				if len(errs) > 0 {
					skipped++
					fmt.Fprintf(out, "✗ %s\n    %s\n", path, strings.Join(errs, "\n    ")) //nolint:errcheck
					continue
				}

				id, err := st.SaveEvaluation(cmd.Context(), raw)
				switch {
				case errors.Is(err, store.ErrEvaluationExists):
					fmt.Fprintf(out, "= %s already imported as %s\n", path, raw.ID) //nolint:errcheck
					continue
				case errors.Is(err, store.ErrDuplicateItemID):
					skipped++
					fmt.Fprintf(out, "✗ %s\n    %v\n", path, err) //nolint:errcheck
					continue
				case err != nil:
					return fmt.Errorf("importing %s: %w", path, err)
				}

				err = st.UpdateTestRunStatus(cmd.Context(), raw.TestRunID, models.TestRunCompleted)
				if err != nil && !errors.Is(err, store.ErrTestRunNotFound) {
					return fmt.Errorf("completing test run %s: %w", raw.TestRunID, err)
				}
				fmt.Fprintf(out, "✓ %s → %s\n", path, id) //nolint:errcheck
			}

			if skipped > 0 {
				return &ValidationFailureError{Message: fmt.Sprintf("%d of %d file(s) skipped", skipped, len(args))}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite database path (default from .arena.yaml)")

	return cmd
}
