package comparison

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spboyer/arena/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(personaID, personaName string, overall float64, scores models.CriteriaScores) models.ScoredItem {
	return models.ScoredItem{
		ID:             personaID + "-item",
		PersonaID:      personaID,
		PersonaName:    personaName,
		OverallScore:   overall,
		CriteriaScores: scores,
		Outcome:        models.OutcomeSuccess,
	}
}

func roundTripPair() (*models.EvaluationRecord, *models.EvaluationRecord) {
	a := &models.EvaluationRecord{
		ID:           "eval-a",
		TestRunID:    "tr1",
		OverallScore: 7.0,
		SuccessCount: 8,
		FailureCount: 2,
		Items: []models.ScoredItem{
			item("p1", "Alice", 7, models.CriteriaScores{"empathy": 8.0, "accuracy": 6.0}),
		},
	}
	b := &models.EvaluationRecord{
		ID:           "eval-b",
		TestRunID:    "tr1",
		OverallScore: 8.0,
		SuccessCount: 9,
		FailureCount: 1,
		Items: []models.ScoredItem{
			item("p1", "Alice", 8, models.CriteriaScores{"empathy": 9.0, "accuracy": 7.0}),
		},
	}
	return a, b
}

func TestCompare_RoundTrip(t *testing.T) {
	a, b := roundTripPair()

	report, err := Compare(a, b, Options{RequireSameRun: true})
	require.NoError(t, err)

	assert.Equal(t, ModeSameRun, report.Mode)
	assert.InDelta(t, 1.0, report.Deltas.OverallScore.Value, 1e-9)
	assert.InDelta(t, 100.0/7.0, report.Deltas.OverallScore.Percent, 1e-9)
	assert.InDelta(t, 0.8, report.EvaluationA.SuccessRate, 1e-9)
	assert.InDelta(t, 0.9, report.EvaluationB.SuccessRate, 1e-9)
	assert.InDelta(t, 10.0, report.Deltas.SuccessRate.Value, 1e-9)
	assert.InDelta(t, 12.5, report.Deltas.SuccessRate.Percent, 1e-9)
	assert.InDelta(t, 0.5, report.Deltas.SuccessRate.NormalizedGain, 1e-9)
	assert.Equal(t, 10, report.EvaluationA.TotalBattles)

	require.Len(t, report.Deltas.Criteria, 2)
	for _, d := range report.Deltas.Criteria {
		assert.InDelta(t, 1.0, d.Delta, 1e-9, d.Name)
		assert.Equal(t, DirectionUp, d.Direction, d.Name)
	}
	assert.Equal(t, "accuracy", report.Deltas.Criteria[0].Name)
	assert.Equal(t, "empathy", report.Deltas.Criteria[1].Name)

	assert.Equal(t, Verdict{BetterEvaluation: WinnerB, Improvements: 2}, report.Verdict)

	require.Len(t, report.PerPersona, 1)
	assert.Equal(t, "Alice", report.PerPersona[0].PersonaName)
	assert.InDelta(t, 1.0, report.PerPersona[0].Delta, 1e-9)

	assert.Nil(t, report.SnapshotDiff)
	assert.Nil(t, report.Deltas.PersonaConfidence)
}

func TestCompare_SameRunRejectsDifferentTestRuns(t *testing.T) {
	a, b := roundTripPair()
	b.TestRunID = "tr2"

	_, err := Compare(a, b, Options{RequireSameRun: true})
	require.Error(t, err)

	var invalid *InvalidComparisonError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "tr1", invalid.TestRunA)
	assert.Equal(t, "tr2", invalid.TestRunB)
	assert.Contains(t, err.Error(), "different test runs")
}

func TestCompare_CrossRunAllowsDifferentTestRuns(t *testing.T) {
	a, b := roundTripPair()
	b.TestRunID = "tr2"

	report, err := Compare(a, b, Options{})
	require.NoError(t, err)
	assert.Equal(t, ModeCrossRun, report.Mode)
	assert.Equal(t, "tr2", report.EvaluationB.TestRunID)
}

func TestCompare_NilEvaluation(t *testing.T) {
	a, _ := roundTripPair()
	_, err := Compare(a, nil, Options{})
	require.Error(t, err)
}

func TestCompare_Deterministic(t *testing.T) {
	a := &models.EvaluationRecord{
		ID: "a", TestRunID: "tr", OverallScore: 6, SuccessCount: 3, FailureCount: 1, PartialCount: 1,
		Items: []models.ScoredItem{
			item("p1", "Alice", 6, models.CriteriaScores{"x": 5.0, "y": 7.0, "z": "n/a"}),
			item("p2", "Bob", 4, models.CriteriaScores{"x": 3.0}),
			item("p3", "Cara", 8, models.CriteriaScores{"y": 9.0, "w": 2.0}),
		},
		CriteriaSnapshot: &models.CriteriaSnapshot{Core: []string{"x", "y"}, Weights: map[string]float64{"x": 2}},
	}
	b := &models.EvaluationRecord{
		ID: "b", TestRunID: "tr", OverallScore: 7, SuccessCount: 4, FailureCount: 1,
		Items: []models.ScoredItem{
			item("p1", "Alice", 7, models.CriteriaScores{"x": 6.0, "y": 6.0}),
			item("p2", "Bob", 3, models.CriteriaScores{"x": 3.05}),
			item("p4", "Dan", 5, models.CriteriaScores{"v": 1.0}),
		},
		CriteriaSnapshot: &models.CriteriaSnapshot{Core: []string{"x", "y", "v"}, Weights: map[string]float64{"x": 2}},
	}

	first, err := Compare(a, b, Options{RequireSameRun: true})
	require.NoError(t, err)
	for range 5 {
		again, err := Compare(a, b, Options{RequireSameRun: true})
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("comparison not deterministic (-first +again):\n%s", diff)
		}
	}

	require.NotNil(t, first.Deltas.PersonaConfidence)
	assert.Equal(t, 4, len(first.PerPersona))
	require.NotNil(t, first.SnapshotDiff)
	assert.Equal(t, []string{"v"}, first.SnapshotDiff.AddedCriteria)
}

func TestCompare_SortedByMagnitude(t *testing.T) {
	a := &models.EvaluationRecord{
		Items: []models.ScoredItem{
			item("p1", "A", 5, models.CriteriaScores{"a": 1.0, "b": 5.0, "c": 3.0, "d": 2.0}),
			item("p2", "B", 9, nil),
			item("p3", "C", 2, nil),
		},
	}
	b := &models.EvaluationRecord{
		Items: []models.ScoredItem{
			item("p1", "A", 5.5, models.CriteriaScores{"a": 4.0, "b": 4.5, "c": 3.0, "d": -4.0}),
			item("p2", "B", 1, nil),
			item("p3", "C", 4, nil),
		},
	}

	report, err := Compare(a, b, Options{})
	require.NoError(t, err)

	for i := 1; i < len(report.Deltas.Criteria); i++ {
		prev, cur := report.Deltas.Criteria[i-1], report.Deltas.Criteria[i]
		assert.GreaterOrEqual(t, math.Abs(prev.Delta), math.Abs(cur.Delta), "criteria out of order at %d", i)
	}
	for i := 1; i < len(report.PerPersona); i++ {
		prev, cur := report.PerPersona[i-1], report.PerPersona[i]
		assert.GreaterOrEqual(t, math.Abs(prev.Delta), math.Abs(cur.Delta), "personas out of order at %d", i)
	}
	assert.Equal(t, "d", report.Deltas.Criteria[0].Name)
	assert.Equal(t, "p2", report.PerPersona[0].PersonaID)
}

func TestCompare_MissingDataDegradesToZero(t *testing.T) {
	a := &models.EvaluationRecord{ID: "a"}
	b := &models.EvaluationRecord{ID: "b", OverallScore: 3, SuccessCount: 1}

	report, err := Compare(a, b, Options{RequireSameRun: true})
	require.NoError(t, err)

	assert.Equal(t, 3.0, report.Deltas.OverallScore.Value)
	assert.Equal(t, 0.0, report.Deltas.OverallScore.Percent)
	assert.Equal(t, 100.0, report.Deltas.SuccessRate.Value)
	assert.Equal(t, 0.0, report.Deltas.SuccessRate.Percent)
	assert.Empty(t, report.Deltas.Criteria)
	assert.Empty(t, report.PerPersona)
	assert.Equal(t, WinnerB, report.Verdict.BetterEvaluation)
}

func TestReport_JSONShape(t *testing.T) {
	a, b := roundTripPair()
	report, err := Compare(a, b, Options{RequireSameRun: true})
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	deltas := decoded["deltas"].(map[string]any)
	overall := deltas["overall_score"].(map[string]any)
	assert.InDelta(t, 1.0, overall["value"], 1e-9)

	verdict := decoded["verdict"].(map[string]any)
	assert.Equal(t, "b", verdict["better_evaluation"])

	persona := decoded["per_persona"].([]any)[0].(map[string]any)
	assert.Contains(t, persona, "score_a")
	assert.Contains(t, persona, "score_b")
	assert.Contains(t, decoded, "snapshot_diff")
	assert.Nil(t, decoded["snapshot_diff"])
}
