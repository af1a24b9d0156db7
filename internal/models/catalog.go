package models

import "time"

// TestRunStatus tracks a test run through the external workflow engine.
type TestRunStatus string

const (
	TestRunPending   TestRunStatus = "pending"
	TestRunRunning   TestRunStatus = "running"
	TestRunCompleted TestRunStatus = "completed"
	TestRunFailed    TestRunStatus = "failed"
)

// Valid reports whether s is a known status.
func (s TestRunStatus) Valid() bool {
	switch s {
	case TestRunPending, TestRunRunning, TestRunCompleted, TestRunFailed:
		return true
	}
	return false
}

// TestRun is one batch of battles across personas for a prompt version.
type TestRun struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	PromptVersion string        `json:"prompt_version"`
	PersonaIDs    []string      `json:"persona_ids"`
	Status        TestRunStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Persona is a simulated counterparty profile.
type Persona struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CriterionCategory separates the always-on criteria from domain-specific ones.
type CriterionCategory string

const (
	CriterionCore   CriterionCategory = "core"
	CriterionDomain CriterionCategory = "domain"
)

// Criterion is a named scoring dimension with its weight.
type Criterion struct {
	Name        string            `json:"name"`
	Category    CriterionCategory `json:"category"`
	Description string            `json:"description"`
	Weight      float64           `json:"weight"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot captures a criteria list as the configuration an evaluation runs with.
func Snapshot(criteria []Criterion) *CriteriaSnapshot {
	snap := &CriteriaSnapshot{
		Core:    []string{},
		Domain:  []string{},
		Weights: make(map[string]float64, len(criteria)),
	}
	for _, c := range criteria {
		if c.Category == CriterionDomain {
			snap.Domain = append(snap.Domain, c.Name)
		} else {
			snap.Core = append(snap.Core, c.Name)
		}
		snap.Weights[c.Name] = c.Weight
	}
	return snap
}

// DashboardSummary is the aggregate KPI view across the store.
type DashboardSummary struct {
	TotalTestRuns    int     `json:"total_test_runs"`
	TotalEvaluations int     `json:"total_evaluations"`
	TotalPersonas    int     `json:"total_personas"`
	AvgOverallScore  float64 `json:"avg_overall_score"`
	AvgSuccessRate   float64 `json:"avg_success_rate"`
}
