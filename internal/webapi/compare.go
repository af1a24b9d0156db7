package webapi

import (
	"context"
	"net/http"
	"time"

	"github.com/spboyer/arena/internal/comparison"
	"github.com/spboyer/arena/internal/models"
	"golang.org/x/sync/errgroup"
)

// HandleCompareSameRun compares two evaluations of the same test run.
func (h *Handlers) HandleCompareSameRun(w http.ResponseWriter, r *http.Request) {
	h.handleCompare(w, r, true)
}

// HandleCompareCrossRun compares two evaluations from any test runs.
func (h *Handlers) HandleCompareCrossRun(w http.ResponseWriter, r *http.Request) {
	h.handleCompare(w, r, false)
}

func (h *Handlers) handleCompare(w http.ResponseWriter, r *http.Request, sameRun bool) {
	report, err := h.runComparison(r.Context(), r.PathValue("idA"), r.PathValue("idB"), sameRun)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// runComparison loads both evaluations concurrently and runs the engine.
func (h *Handlers) runComparison(ctx context.Context, idA, idB string, sameRun bool) (*comparison.Report, error) {
	a, b, err := h.loadPair(ctx, idA, idB)
	if err != nil {
		return nil, err
	}

	opts := h.compare
	opts.RequireSameRun = sameRun

	start := time.Now()
	report, err := comparison.Compare(a, b, opts)
	if err != nil {
		return nil, err
	}
	h.metrics.ObserveComparison(string(report.Mode), string(report.Verdict.BetterEvaluation), time.Since(start))
	return report, nil
}

func (h *Handlers) loadPair(ctx context.Context, idA, idB string) (a, b *models.EvaluationRecord, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = h.reader.GetEvaluation(gctx, idA)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = h.reader.GetEvaluation(gctx, idB)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
