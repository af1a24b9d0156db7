package comparison

// DefaultWinThreshold is the overall score delta B must exceed (or fall below
// the negation of) for one evaluation to be declared better.
const DefaultWinThreshold = 0.1

// Winner names the better evaluation.
type Winner string

const (
	WinnerA   Winner = "a"
	WinnerB   Winner = "b"
	WinnerTie Winner = "tie"
)

// Verdict is the overall judgment plus per-criterion movement tallies.
type Verdict struct {
	BetterEvaluation Winner `json:"better_evaluation"`
	Improvements     int    `json:"improvements"`
	Regressions      int    `json:"regressions"`
	Unchanged        int    `json:"unchanged"`
}

// ResolveVerdict decides the winner from the overall score delta. A delta
// exactly at the threshold is a tie.
func ResolveVerdict(scoreDelta float64, deltas []CriterionDelta, winThreshold float64) Verdict {
	v := Verdict{BetterEvaluation: WinnerTie}
	switch {
	case scoreDelta > winThreshold:
		v.BetterEvaluation = WinnerB
	case scoreDelta < -winThreshold:
		v.BetterEvaluation = WinnerA
	}

	for _, d := range deltas {
		switch d.Direction {
		case DirectionUp:
			v.Improvements++
		case DirectionDown:
			v.Regressions++
		case DirectionSame:
			v.Unchanged++
		}
	}
	return v
}
