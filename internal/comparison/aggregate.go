// Package comparison compares two evaluations of agent battles: per-criterion
// averages and deltas, per-persona breakdowns, criteria configuration drift,
// and an overall verdict. Everything here is pure and safe for concurrent use.
package comparison

import (
	"encoding/json"
	"math"

	"github.com/spboyer/arena/internal/models"
)

// AggregateCriteria averages every criterion's numeric scores across items.
// Non-numeric values are skipped entirely: they neither add to the sum nor
// count toward the divisor. Criteria with no numeric scores are absent from
// the result.
func AggregateCriteria(items []models.ScoredItem) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, item := range items {
		for name, raw := range item.CriteriaScores {
			score, ok := numericScore(raw)
			if !ok {
				continue
			}
			sums[name] += score
			counts[name]++
		}
	}

	avgs := make(map[string]float64, len(sums))
	for name, sum := range sums {
		avgs[name] = sum / float64(counts[name])
	}
	return avgs
}

// numericScore extracts a finite number from a decoded score value.
func numericScore(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
