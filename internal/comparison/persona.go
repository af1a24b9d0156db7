package comparison

import (
	"sort"

	"github.com/spboyer/arena/internal/models"
	"github.com/spboyer/arena/internal/statistics"
)

// PersonaCriterionDelta is a criterion's movement within a single persona's battles.
type PersonaCriterionDelta struct {
	Name  string  `json:"name"`
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Delta float64 `json:"delta"`
}

// PersonaComparison compares the battles of one persona across both evaluations.
//
// A persona with no items on a side scores 0 on that side. ItemsA and ItemsB
// carry the item counts so a caller can tell that apart from a real zero.
type PersonaComparison struct {
	PersonaID      string                  `json:"persona_id"`
	PersonaName    string                  `json:"persona_name"`
	ScoreA         float64                 `json:"score_a"`
	ScoreB         float64                 `json:"score_b"`
	Delta          float64                 `json:"delta"`
	ItemsA         int                     `json:"items_a"`
	ItemsB         int                     `json:"items_b"`
	CriteriaDeltas []PersonaCriterionDelta `json:"criteria_deltas"`
}

// ComparePersonas groups both item lists by persona and compares each group.
// Items without a persona are ignored. The result is ordered by |Delta|
// descending, ties in persona ID order.
func ComparePersonas(itemsA, itemsB []models.ScoredItem) []PersonaComparison {
	groupsA := groupByPersona(itemsA)
	groupsB := groupByPersona(itemsB)

	ids := make([]string, 0, len(groupsA)+len(groupsB))
	for id := range groupsA {
		ids = append(ids, id)
	}
	for id := range groupsB {
		if _, ok := groupsA[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]PersonaComparison, 0, len(ids))
	for _, id := range ids {
		a, b := groupsA[id], groupsB[id]
		scoreA, scoreB := meanOverallScore(a), meanOverallScore(b)
		out = append(out, PersonaComparison{
			PersonaID:      id,
			PersonaName:    personaName(a, b),
			ScoreA:         scoreA,
			ScoreB:         scoreB,
			Delta:          scoreB - scoreA,
			ItemsA:         len(a),
			ItemsB:         len(b),
			CriteriaDeltas: personaCriterionDeltas(a, b),
		})
	}
	sortByMagnitude(out, func(p PersonaComparison) float64 { return p.Delta })
	return out
}

func groupByPersona(items []models.ScoredItem) map[string][]models.ScoredItem {
	groups := make(map[string][]models.ScoredItem)
	for _, it := range items {
		if !it.HasPersona() {
			continue
		}
		groups[it.PersonaID] = append(groups[it.PersonaID], it)
	}
	return groups
}

func meanOverallScore(items []models.ScoredItem) float64 {
	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = it.OverallScore
	}
	return statistics.Mean(scores)
}

func personaCriterionDeltas(a, b []models.ScoredItem) []PersonaCriterionDelta {
	avgA, avgB := AggregateCriteria(a), AggregateCriteria(b)
	names := unionKeys(avgA, avgB)
	deltas := make([]PersonaCriterionDelta, 0, len(names))
	for _, name := range names {
		deltas = append(deltas, PersonaCriterionDelta{
			Name:  name,
			A:     avgA[name],
			B:     avgB[name],
			Delta: avgB[name] - avgA[name],
		})
	}
	sortByMagnitude(deltas, func(d PersonaCriterionDelta) float64 { return d.Delta })
	return deltas
}

// personaName picks the first resolved name, preferring side A.
func personaName(a, b []models.ScoredItem) string {
	for _, group := range [][]models.ScoredItem{a, b} {
		for _, it := range group {
			if it.PersonaName != "" && it.PersonaName != models.UnknownPersona {
				return it.PersonaName
			}
		}
	}
	return models.UnknownPersona
}
