package webapi

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spboyer/arena/internal/comparison"
)

var csvHeader = []string{"section", "name", "a", "b", "delta", "direction"}

// HandleExportCSV streams a comparison as CSV. Same-run rules apply unless
// ?mode=cross is given.
func (h *Handlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	idA, idB := r.PathValue("idA"), r.PathValue("idB")
	sameRun := r.URL.Query().Get("mode") != "cross"

	report, err := h.runComparison(r.Context(), idA, idB, sameRun)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="compare-%s-%s.csv"`, idA, idB))
	w.WriteHeader(http.StatusOK)
	if err := WriteReportCSV(w, report); err != nil {
		h.logger.Warn("writing CSV export", "error", err)
	}
}

// WriteReportCSV writes the overall, success rate, criterion, and persona
// rows of a report.
func WriteReportCSV(out io.Writer, report *comparison.Report) error {
	cw := csv.NewWriter(out)
	rows := [][]string{
		csvHeader,
		{"overall", "overall_score",
			num(report.EvaluationA.OverallScore), num(report.EvaluationB.OverallScore),
			num(report.Deltas.OverallScore.Value), string(report.Verdict.BetterEvaluation)},
		{"overall", "success_rate",
			num(report.EvaluationA.SuccessRate * 100), num(report.EvaluationB.SuccessRate * 100),
			num(report.Deltas.SuccessRate.Value), ""},
	}
	for _, c := range report.Deltas.Criteria {
		rows = append(rows, []string{"criterion", c.Name, num(c.A), num(c.B), num(c.Delta), string(c.Direction)})
	}
	for _, p := range report.PerPersona {
		rows = append(rows, []string{"persona", p.PersonaName, num(p.ScoreA), num(p.ScoreB), num(p.Delta), ""})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
