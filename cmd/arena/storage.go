package main

import (
	"fmt"
	"os"

	"github.com/spboyer/arena/internal/comparison"
	"github.com/spboyer/arena/internal/projectconfig"
	"github.com/spboyer/arena/internal/store"
	"github.com/spf13/cobra"
)

// storageFlags select the evaluation source, overriding .arena.yaml.
type storageFlags struct {
	db         string
	resultsDir string
}

func (f *storageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite database path (selects the sqlite driver)")
	cmd.Flags().StringVar(&f.resultsDir, "results-dir", "", "Directory of exported evaluation JSON files (selects the files driver)")
	cmd.MarkFlagsMutuallyExclusive("db", "results-dir")
}

// apply overlays whichever flag was set onto cfg.
func (f storageFlags) apply(cfg *projectconfig.StorageConfig) {
	switch {
	case f.db != "":
		cfg.Driver = projectconfig.DriverSQLite
		cfg.DSN = f.db
	case f.resultsDir != "":
		cfg.Driver = projectconfig.DriverFiles
		cfg.ResultsDir = f.resultsDir
	}
}

func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

// openStorage opens the configured driver. The SQL store is nil for the
// read-only files driver; closeFn is always safe to call.
func openStorage(cfg projectconfig.StorageConfig) (reader store.EvaluationReader, sqlStore *store.SQLStore, closeFn func(), err error) {
	switch cfg.Driver {
	case projectconfig.DriverFiles:
		fs := store.NewFileStore(cfg.ResultsDir)
		if err := fs.Reload(); err != nil {
			return nil, nil, nil, fmt.Errorf("loading %s: %w", cfg.ResultsDir, err)
		}
		return fs, nil, func() {}, nil
	case projectconfig.DriverSQLite, "":
		st, err := store.OpenSQLStore(cfg.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			st.Close() //nolint:errcheck
		}
		return st, st, closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// comparisonOptions maps the comparison config section onto engine options.
func comparisonOptions(cfg projectconfig.ComparisonConfig) comparison.Options {
	return comparison.Options{
		DeltaThreshold:  cfg.DeltaThreshold,
		WinThreshold:    cfg.WinThreshold,
		WeightEpsilon:   cfg.WeightEpsilon,
		ConfidenceLevel: cfg.ConfidenceLevel,
		Seed:            cfg.BootstrapSeed,
	}
}
