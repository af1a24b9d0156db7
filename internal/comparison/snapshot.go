package comparison

import (
	"math"
	"sort"

	"github.com/spboyer/arena/internal/models"
)

// DefaultWeightEpsilon is the largest weight difference not reported as a change.
const DefaultWeightEpsilon = 0.01

// WeightChange records a criterion whose weight differs between snapshots.
type WeightChange struct {
	Name    string  `json:"name"`
	WeightA float64 `json:"weight_a"`
	WeightB float64 `json:"weight_b"`
}

// SnapshotDiff describes how the criteria configuration changed from A to B.
type SnapshotDiff struct {
	AddedCriteria   []string       `json:"added_criteria"`
	RemovedCriteria []string       `json:"removed_criteria"`
	WeightChanges   []WeightChange `json:"weight_changes"`
	SameConfig      bool           `json:"same_config"`
}

// DiffSnapshots compares two criteria snapshots. It returns nil when either
// snapshot is missing.
func DiffSnapshots(a, b *models.CriteriaSnapshot, epsilon float64) *SnapshotDiff {
	if a == nil || b == nil {
		return nil
	}

	namesA, namesB := a.Names(), b.Names()
	diff := &SnapshotDiff{
		AddedCriteria:   missingFrom(namesB, namesA),
		RemovedCriteria: missingFrom(namesA, namesB),
		WeightChanges:   []WeightChange{},
	}

	weighted := make(map[string]bool, len(a.Weights)+len(b.Weights))
	for name := range a.Weights {
		weighted[name] = true
	}
	for name := range b.Weights {
		weighted[name] = true
	}
	names := make([]string, 0, len(weighted))
	for name := range weighted {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wa, wb := a.Weight(name), b.Weight(name)
		if math.Abs(wa-wb) > epsilon {
			diff.WeightChanges = append(diff.WeightChanges, WeightChange{Name: name, WeightA: wa, WeightB: wb})
		}
	}

	diff.SameConfig = len(diff.AddedCriteria) == 0 &&
		len(diff.RemovedCriteria) == 0 &&
		len(diff.WeightChanges) == 0
	return diff
}

// missingFrom returns the names in src that are not in other, in src order.
func missingFrom(src, other []string) []string {
	present := make(map[string]bool, len(other))
	for _, n := range other {
		present[n] = true
	}
	out := []string{}
	for _, n := range src {
		if !present[n] {
			out = append(out, n)
		}
	}
	return out
}
