// Package store provides access to test runs, personas, criteria, and
// evaluations. SQLStore is the read-write relational store behind the
// dashboard; FileStore reads exported evaluation files from a directory.
package store

import (
	"context"
	"errors"

	"github.com/spboyer/arena/internal/models"
)

//go:generate go tool mockgen -source=store.go -destination=../webapi/mock_store_test.go -package=webapi

var (
	// ErrEvaluationNotFound is returned when an evaluation ID matches nothing.
	ErrEvaluationNotFound = errors.New("evaluation not found")
	// ErrTestRunNotFound is returned when a test run ID matches nothing.
	ErrTestRunNotFound = errors.New("test run not found")
	// ErrPersonaNotFound is returned when a persona ID matches nothing.
	ErrPersonaNotFound = errors.New("persona not found")
	// ErrCriterionNotFound is returned when a criterion name matches nothing.
	ErrCriterionNotFound = errors.New("criterion not found")

	// ErrEvaluationExists is returned when saving an evaluation whose ID is taken.
	ErrEvaluationExists = errors.New("evaluation already exists")
	// ErrDuplicateItemID is returned when one evaluation repeats an item ID.
	ErrDuplicateItemID = errors.New("duplicate item id")
)

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEvaluationNotFound) ||
		errors.Is(err, ErrTestRunNotFound) ||
		errors.Is(err, ErrPersonaNotFound) ||
		errors.Is(err, ErrCriterionNotFound)
}

// IsConflict reports whether err rejects a write that clashes with stored data.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEvaluationExists) || errors.Is(err, ErrDuplicateItemID)
}

// EvaluationReader is the read side needed to compare evaluations.
type EvaluationReader interface {
	// GetEvaluation returns the normalized evaluation with its items.
	GetEvaluation(ctx context.Context, id string) (*models.EvaluationRecord, error)
	// ListEvaluations returns evaluations newest first, filtered to testRunID when non-empty.
	ListEvaluations(ctx context.Context, testRunID string) ([]models.EvaluationSummary, error)
}

// Store is everything the dashboard reads and writes.
type Store interface {
	EvaluationReader

	// SaveEvaluation stores an evaluation and its items atomically and
	// returns its ID, generating one when raw.ID is empty.
	SaveEvaluation(ctx context.Context, raw *models.RawEvaluation) (string, error)

	CreateTestRun(ctx context.Context, run *models.TestRun) error
	GetTestRun(ctx context.Context, id string) (*models.TestRun, error)
	ListTestRuns(ctx context.Context) ([]models.TestRun, error)
	UpdateTestRunStatus(ctx context.Context, id string, status models.TestRunStatus) error

	CreatePersona(ctx context.Context, p *models.Persona) error
	ListPersonas(ctx context.Context) ([]models.Persona, error)
	DeletePersona(ctx context.Context, id string) error

	ListCriteria(ctx context.Context) ([]models.Criterion, error)
	UpsertCriterion(ctx context.Context, c *models.Criterion) error
	DeleteCriterion(ctx context.Context, name string) error

	// Summary returns aggregate KPIs across the store.
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}
