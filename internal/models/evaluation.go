package models

import (
	"fmt"
	"time"
)

// Outcome is the categorical result of a single persona battle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePartial Outcome = "partial"
)

// UnknownPersona is the display name used when an item's persona cannot be resolved.
const UnknownPersona = "Unknown"

// CriteriaScores maps a criterion name to the score an evaluator gave it.
// Values are kept exactly as decoded from storage; anything that is not a
// number is skipped when scores are averaged.
type CriteriaScores map[string]any

// ScoredItem is the evaluated outcome of one battle between the agent and a persona.
type ScoredItem struct {
	ID             string         `json:"id"`
	PersonaID      string         `json:"persona_id,omitempty"`
	PersonaName    string         `json:"persona_name"`
	OverallScore   float64        `json:"overall_score"`
	CriteriaScores CriteriaScores `json:"criteria_scores"`
	Outcome        Outcome        `json:"outcome,omitempty"`
}

// HasPersona reports whether the item is attributed to a persona.
func (i *ScoredItem) HasPersona() bool {
	return i.PersonaID != ""
}

// EvaluationRecord is one evaluator's scored pass over a test run, with every
// optional field already defaulted. It is the only shape the comparison engine reads.
type EvaluationRecord struct {
	ID               string            `json:"id"`
	TestRunID        string            `json:"test_run_id"`
	EvaluatorName    string            `json:"evaluator_name"`
	EvaluatorVersion string            `json:"evaluator_version"`
	OverallScore     float64           `json:"overall_score"`
	SuccessCount     int               `json:"success_count"`
	FailureCount     int               `json:"failure_count"`
	PartialCount     int               `json:"partial_count"`
	Items            []ScoredItem      `json:"items"`
	CriteriaSnapshot *CriteriaSnapshot `json:"criteria_snapshot,omitempty"`
	ModelUsed        string            `json:"model_used,omitempty"`
	TokensUsed       int               `json:"tokens_used,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// TotalBattles is the number of battles the evaluation tallied.
func (e *EvaluationRecord) TotalBattles() int {
	return e.SuccessCount + e.FailureCount + e.PartialCount
}

// SuccessRate is SuccessCount over TotalBattles in [0, 1], or 0 with no battles.
func (e *EvaluationRecord) SuccessRate() float64 {
	total := e.TotalBattles()
	if total == 0 {
		return 0
	}
	return float64(e.SuccessCount) / float64(total)
}

// Summary returns the list view of the evaluation.
func (e *EvaluationRecord) Summary() EvaluationSummary {
	return EvaluationSummary{
		ID:               e.ID,
		TestRunID:        e.TestRunID,
		EvaluatorName:    e.EvaluatorName,
		EvaluatorVersion: e.EvaluatorVersion,
		OverallScore:     e.OverallScore,
		SuccessRate:      e.SuccessRate(),
		TotalBattles:     e.TotalBattles(),
		ModelUsed:        e.ModelUsed,
		CreatedAt:        e.CreatedAt,
	}
}

// EvaluationSummary is an evaluation without its items.
type EvaluationSummary struct {
	ID               string    `json:"id"`
	TestRunID        string    `json:"test_run_id"`
	EvaluatorName    string    `json:"evaluator_name"`
	EvaluatorVersion string    `json:"evaluator_version"`
	OverallScore     float64   `json:"overall_score"`
	SuccessRate      float64   `json:"success_rate"`
	TotalBattles     int       `json:"total_battles"`
	ModelUsed        string    `json:"model_used,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// RawScoredItem is a battle evaluation as stored, where any column may be null.
type RawScoredItem struct {
	ID             string         `json:"id"`
	PersonaID      *string        `json:"persona_id"`
	PersonaName    *string        `json:"persona_name"`
	OverallScore   *float64       `json:"overall_score"`
	CriteriaScores map[string]any `json:"criteria_scores"`
	Outcome        string         `json:"outcome"`
}

// RawEvaluation is an evaluation as stored or exported, where any column may be null.
type RawEvaluation struct {
	ID               string          `json:"id"`
	TestRunID        string          `json:"test_run_id"`
	EvaluatorName    string          `json:"evaluator_name"`
	EvaluatorVersion string          `json:"evaluator_version"`
	OverallScore     *float64        `json:"overall_score"`
	SuccessCount     *int            `json:"success_count"`
	FailureCount     *int            `json:"failure_count"`
	PartialCount     *int            `json:"partial_count"`
	CriteriaSnapshot map[string]any  `json:"criteria_snapshot,omitempty"`
	ModelUsed        *string         `json:"model_used,omitempty"`
	TokensUsed       *int            `json:"tokens_used,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Items            []RawScoredItem `json:"items"`
}

// Normalize applies the missing-data defaults: absent scores and counts become
// zero, absent persona names become UnknownPersona, and the criteria snapshot is
// decoded into its typed form. This is the only place those defaults live.
func (r *RawEvaluation) Normalize() (*EvaluationRecord, error) {
	snapshot, err := DecodeCriteriaSnapshot(r.CriteriaSnapshot)
	if err != nil {
		return nil, fmt.Errorf("evaluation %s: %w", r.ID, err)
	}

	rec := &EvaluationRecord{
		ID:               r.ID,
		TestRunID:        r.TestRunID,
		EvaluatorName:    r.EvaluatorName,
		EvaluatorVersion: r.EvaluatorVersion,
		OverallScore:     deref(r.OverallScore),
		SuccessCount:     deref(r.SuccessCount),
		FailureCount:     deref(r.FailureCount),
		PartialCount:     deref(r.PartialCount),
		CriteriaSnapshot: snapshot,
		ModelUsed:        deref(r.ModelUsed),
		TokensUsed:       deref(r.TokensUsed),
		CreatedAt:        r.CreatedAt,
		Items:            make([]ScoredItem, 0, len(r.Items)),
	}

	for _, it := range r.Items {
		rec.Items = append(rec.Items, it.Normalize())
	}
	return rec, nil
}

// Normalize applies the missing-data defaults to a single item.
func (r *RawScoredItem) Normalize() ScoredItem {
	name := deref(r.PersonaName)
	if name == "" {
		name = UnknownPersona
	}
	scores := CriteriaScores(r.CriteriaScores)
	if scores == nil {
		scores = CriteriaScores{}
	}
	return ScoredItem{
		ID:             r.ID,
		PersonaID:      deref(r.PersonaID),
		PersonaName:    name,
		OverallScore:   deref(r.OverallScore),
		CriteriaScores: scores,
		Outcome:        Outcome(r.Outcome),
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
