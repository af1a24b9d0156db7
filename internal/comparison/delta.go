package comparison

import (
	"cmp"
	"math"
	"slices"
	"sort"
)

// DefaultDeltaThreshold is the largest absolute criterion change still
// classified as DirectionSame.
const DefaultDeltaThreshold = 0.1

// Direction classifies how a criterion moved from evaluation A to B.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// CriterionDelta is one criterion's averages on both sides and B minus A.
type CriterionDelta struct {
	Name      string    `json:"name"`
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
}

// CriterionDeltas diffs two criterion-average maps. A criterion missing on one
// side counts as 0 there. Changes with |delta| <= threshold are DirectionSame.
// The result is ordered by |delta| descending; equal magnitudes keep name order.
func CriterionDeltas(avgA, avgB map[string]float64, threshold float64) []CriterionDelta {
	names := unionKeys(avgA, avgB)
	deltas := make([]CriterionDelta, 0, len(names))
	for _, name := range names {
		a, b := avgA[name], avgB[name]
		d := b - a
		deltas = append(deltas, CriterionDelta{
			Name:      name,
			A:         a,
			B:         b,
			Delta:     d,
			Direction: classify(d, threshold),
		})
	}
	sortByMagnitude(deltas, func(d CriterionDelta) float64 { return d.Delta })
	return deltas
}

func classify(delta, threshold float64) Direction {
	switch {
	case math.Abs(delta) <= threshold:
		return DirectionSame
	case delta > 0:
		return DirectionUp
	default:
		return DirectionDown
	}
}

// unionKeys returns the sorted union of the maps' keys.
func unionKeys(maps ...map[string]float64) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// sortByMagnitude stable-sorts s by the absolute value of delta, largest first.
func sortByMagnitude[T any](s []T, delta func(T) float64) {
	slices.SortStableFunc(s, func(x, y T) int {
		return cmp.Compare(math.Abs(delta(y)), math.Abs(delta(x)))
	})
}
