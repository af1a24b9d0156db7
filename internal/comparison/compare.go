package comparison

import (
	"errors"
	"fmt"

	"github.com/spboyer/arena/internal/models"
	"github.com/spboyer/arena/internal/statistics"
)

// Defaults for the optional report annotations.
const (
	DefaultConfidenceLevel = 0.95
	DefaultBootstrapSeed   = 42
)

// Mode says whether both evaluations must come from the same test run.
type Mode string

const (
	ModeSameRun  Mode = "same_run"
	ModeCrossRun Mode = "cross_run"
)

// InvalidComparisonError is returned when a same-run comparison is requested
// for evaluations of different test runs.
type InvalidComparisonError struct {
	TestRunA string
	TestRunB string
}

func (e *InvalidComparisonError) Error() string {
	return fmt.Sprintf("cannot compare evaluations from different test runs (%s vs %s)", e.TestRunA, e.TestRunB)
}

// Options controls a comparison. Zero-valued thresholds fall back to the
// package defaults.
type Options struct {
	// RequireSameRun rejects evaluations whose TestRunID differs.
	RequireSameRun bool

	DeltaThreshold  float64
	WinThreshold    float64
	WeightEpsilon   float64
	ConfidenceLevel float64
	// Seed drives the bootstrap resampling; nil uses DefaultBootstrapSeed.
	Seed *int64
}

func (o Options) withDefaults() Options {
	if o.DeltaThreshold == 0 {
		o.DeltaThreshold = DefaultDeltaThreshold
	}
	if o.WinThreshold == 0 {
		o.WinThreshold = DefaultWinThreshold
	}
	if o.WeightEpsilon == 0 {
		o.WeightEpsilon = DefaultWeightEpsilon
	}
	if o.ConfidenceLevel == 0 {
		o.ConfidenceLevel = DefaultConfidenceLevel
	}
	if o.Seed == nil {
		seed := int64(DefaultBootstrapSeed)
		o.Seed = &seed
	}
	return o
}

func (o Options) mode() Mode {
	if o.RequireSameRun {
		return ModeSameRun
	}
	return ModeCrossRun
}

// EvaluationSide summarizes one side of the comparison.
type EvaluationSide struct {
	ID               string             `json:"id"`
	TestRunID        string             `json:"test_run_id"`
	EvaluatorName    string             `json:"evaluator_name"`
	EvaluatorVersion string             `json:"evaluator_version"`
	OverallScore     float64            `json:"overall_score"`
	SuccessRate      float64            `json:"success_rate"`
	TotalBattles     int                `json:"total_battles"`
	CriteriaAverages map[string]float64 `json:"criteria_averages"`
	ModelUsed        string             `json:"model_used,omitempty"`
	TokensUsed       int                `json:"tokens_used,omitempty"`
}

// ScoreDelta is an absolute change and its percentage relative to A.
type ScoreDelta struct {
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// SuccessRateDelta is the change in success rate, in percentage points.
type SuccessRateDelta struct {
	Value          float64 `json:"value"`
	Percent        float64 `json:"percent"`
	NormalizedGain float64 `json:"normalized_gain"`
}

// PersonaConfidence is a bootstrap interval over per-persona score deltas.
type PersonaConfidence struct {
	statistics.ConfidenceInterval
	Significant bool `json:"significant"`
}

// Deltas holds every B-minus-A measurement of the report.
type Deltas struct {
	OverallScore      ScoreDelta         `json:"overall_score"`
	SuccessRate       SuccessRateDelta   `json:"success_rate"`
	Criteria          []CriterionDelta   `json:"criteria"`
	PersonaConfidence *PersonaConfidence `json:"persona_confidence,omitempty"`
}

// Report is the full comparison of evaluation B against baseline A.
type Report struct {
	Mode         Mode                `json:"mode"`
	EvaluationA  EvaluationSide      `json:"evaluation_a"`
	EvaluationB  EvaluationSide      `json:"evaluation_b"`
	Deltas       Deltas              `json:"deltas"`
	SnapshotDiff *SnapshotDiff       `json:"snapshot_diff"`
	PerPersona   []PersonaComparison `json:"per_persona"`
	Verdict      Verdict             `json:"verdict"`
}

// Compare builds the report for candidate b against baseline a. The only
// failure is an *InvalidComparisonError when opts.RequireSameRun is set and
// the test runs differ; otherwise missing data degrades to zeros.
func Compare(a, b *models.EvaluationRecord, opts Options) (*Report, error) {
	if a == nil || b == nil {
		return nil, errors.New("comparison requires two evaluations")
	}
	if opts.RequireSameRun && a.TestRunID != b.TestRunID {
		return nil, &InvalidComparisonError{TestRunA: a.TestRunID, TestRunB: b.TestRunID}
	}
	opts = opts.withDefaults()

	avgA := AggregateCriteria(a.Items)
	avgB := AggregateCriteria(b.Items)
	criteria := CriterionDeltas(avgA, avgB, opts.DeltaThreshold)

	scoreDelta := b.OverallScore - a.OverallScore
	scorePercent := 0.0
	if a.OverallScore > 0 {
		scorePercent = scoreDelta / a.OverallScore * 100
	}

	rateA, rateB := a.SuccessRate(), b.SuccessRate()
	ratePoints := (rateB - rateA) * 100
	ratePercent := 0.0
	if rateA > 0 {
		ratePercent = ratePoints / (rateA * 100) * 100
	}

	personas := ComparePersonas(a.Items, b.Items)

	return &Report{
		Mode:        opts.mode(),
		EvaluationA: side(a, avgA),
		EvaluationB: side(b, avgB),
		Deltas: Deltas{
			OverallScore: ScoreDelta{Value: scoreDelta, Percent: scorePercent},
			SuccessRate: SuccessRateDelta{
				Value:          ratePoints,
				Percent:        ratePercent,
				NormalizedGain: statistics.NormalizedGain(rateA, rateB),
			},
			Criteria:          criteria,
			PersonaConfidence: personaConfidence(personas, opts),
		},
		SnapshotDiff: DiffSnapshots(a.CriteriaSnapshot, b.CriteriaSnapshot, opts.WeightEpsilon),
		PerPersona:   personas,
		Verdict:      ResolveVerdict(scoreDelta, criteria, opts.WinThreshold),
	}, nil
}

func side(e *models.EvaluationRecord, avgs map[string]float64) EvaluationSide {
	return EvaluationSide{
		ID:               e.ID,
		TestRunID:        e.TestRunID,
		EvaluatorName:    e.EvaluatorName,
		EvaluatorVersion: e.EvaluatorVersion,
		OverallScore:     e.OverallScore,
		SuccessRate:      e.SuccessRate(),
		TotalBattles:     e.TotalBattles(),
		CriteriaAverages: avgs,
		ModelUsed:        e.ModelUsed,
		TokensUsed:       e.TokensUsed,
	}
}

// personaConfidence needs at least two personas to resample.
func personaConfidence(personas []PersonaComparison, opts Options) *PersonaConfidence {
	if len(personas) < 2 {
		return nil
	}
	deltas := make([]float64, len(personas))
	for i, p := range personas {
		deltas[i] = p.Delta
	}
	ci := statistics.BootstrapCI(deltas, opts.ConfidenceLevel, *opts.Seed)
	return &PersonaConfidence{ConfidenceInterval: ci, Significant: statistics.IsSignificant(ci)}
}
