package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spboyer/arena/internal/comparison"
	"github.com/spboyer/arena/internal/models"
	"github.com/spboyer/arena/internal/observability"
	"github.com/spboyer/arena/internal/store"
	"github.com/spboyer/arena/internal/validation"
	"github.com/spboyer/arena/internal/workflow"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// maxBodyBytes bounds request bodies, evaluation imports included.
const maxBodyBytes = 10 << 20

// Workflow is the part of the workflow engine client the handlers use.
type Workflow interface {
	RunBattles(ctx context.Context, job workflow.RunBattlesJob) (*workflow.Ack, error)
	Evaluate(ctx context.Context, job workflow.EvaluateJob) (*workflow.Ack, error)
	GeneratePersonas(ctx context.Context, job workflow.GeneratePersonasJob) (*workflow.Ack, error)
}

// Config wires the handlers to their collaborators.
type Config struct {
	// Reader serves evaluations for listing and comparison. Required.
	Reader store.EvaluationReader
	// Store enables test run, persona, criteria, and import routes. When nil
	// the API is read-only.
	Store store.Store
	// Workflow triggers battles, evaluations, and persona generation.
	Workflow Workflow
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	// Comparison carries thresholds; RequireSameRun is set per route.
	Comparison comparison.Options
	// PublicURL is where the workflow engine posts finished evaluations back.
	PublicURL string
	// CallbackSecret, when set, requires imported evaluations to carry a
	// valid workflow.SignatureHeader.
	CallbackSecret string
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	reader     store.EvaluationReader
	store      store.Store
	workflow   Workflow
	metrics    *observability.Metrics
	logger     *slog.Logger
	compare    comparison.Options
	publicURL  string
	callbackSK []byte
}

// NewHandlers creates Handlers from cfg. A nil Reader falls back to Store.
func NewHandlers(cfg Config) *Handlers {
	h := &Handlers{
		reader:    cfg.Reader,
		store:     cfg.Store,
		workflow:  cfg.Workflow,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		compare:   cfg.Comparison,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}
	if h.reader == nil && cfg.Store != nil {
		h.reader = cfg.Store
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if cfg.CallbackSecret != "" {
		h.callbackSK = []byte(cfg.CallbackSecret)
	}
	return h
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.instrument(pattern, fn))
	}

	handle("GET /api/health", h.HandleHealth)
	handle("GET /api/summary", h.HandleSummary)
	handle("GET /api/evaluations", h.HandleListEvaluations)
	handle("GET /api/evaluations/{id}", h.HandleGetEvaluation)
	handle("GET /api/evaluations/{idA}/compare/{idB}", h.HandleCompareSameRun)
	handle("GET /api/evaluations/{idA}/compare/{idB}/export.csv", h.HandleExportCSV)
	handle("GET /api/compare/{idA}/{idB}", h.HandleCompareCrossRun)

	if h.store == nil {
		return
	}
	handle("POST /api/evaluations", h.HandleImportEvaluation)
	handle("GET /api/test-runs", h.HandleListTestRuns)
	handle("POST /api/test-runs", h.HandleCreateTestRun)
	handle("GET /api/test-runs/{id}", h.HandleGetTestRun)
	handle("GET /api/test-runs/{id}/evaluations", h.HandleTestRunEvaluations)
	handle("POST /api/test-runs/{id}/evaluate", h.HandleEvaluateTestRun)
	handle("GET /api/personas", h.HandleListPersonas)
	handle("POST /api/personas", h.HandleCreatePersona)
	handle("POST /api/personas/generate", h.HandleGeneratePersonas)
	handle("DELETE /api/personas/{id}", h.HandleDeletePersona)
	handle("GET /api/criteria", h.HandleListCriteria)
	handle("PUT /api/criteria/{name}", h.HandleUpsertCriterion)
	handle("DELETE /api/criteria/{name}", h.HandleDeleteCriterion)
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	storage := "files"
	if h.store != nil {
		storage = "sqlite"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Storage: storage,
	})
}

// HandleSummary returns aggregate KPI metrics.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		summary, err := h.store.Summary(r.Context())
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	evals, err := h.reader.ListEvaluations(r.Context(), "")
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(evals))
}

// summarize builds KPIs from evaluation summaries alone, for read-only stores.
func summarize(evals []models.EvaluationSummary) *models.DashboardSummary {
	sum := &models.DashboardSummary{TotalEvaluations: len(evals)}
	if len(evals) == 0 {
		return sum
	}
	runs := make(map[string]struct{})
	var score, rate float64
	for _, e := range evals {
		runs[e.TestRunID] = struct{}{}
		score += e.OverallScore
		rate += e.SuccessRate
	}
	sum.TotalTestRuns = len(runs)
	sum.AvgOverallScore = score / float64(len(evals))
	sum.AvgSuccessRate = rate / float64(len(evals))
	return sum
}

// --- evaluations ---

// HandleListEvaluations lists evaluations, optionally filtered by ?test_run_id=.
func (h *Handlers) HandleListEvaluations(w http.ResponseWriter, r *http.Request) {
	h.listEvaluations(w, r, r.URL.Query().Get("test_run_id"))
}

// HandleTestRunEvaluations lists the evaluations of one test run.
func (h *Handlers) HandleTestRunEvaluations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.GetTestRun(r.Context(), id); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.listEvaluations(w, r, id)
}

func (h *Handlers) listEvaluations(w http.ResponseWriter, r *http.Request, testRunID string) {
	evals, err := h.reader.ListEvaluations(r.Context(), testRunID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evals)
}

// HandleGetEvaluation returns one evaluation with its items.
func (h *Handlers) HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.reader.GetEvaluation(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleImportEvaluation stores an evaluation posted by the workflow engine
// or an operator, and marks its test run completed.
func (h *Handlers) HandleImportEvaluation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeFailure(w, r, &validation.RequestError{Fields: []string{"body: " + err.Error()}})
		return
	}

	if h.callbackSK != nil && !workflow.Verify(h.callbackSK, body, r.Header.Get(workflow.SignatureHeader)) {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing or invalid signature")
		return
	}

	raw, violations := validation.DecodeEvaluation(body)
	if len(violations) > 0 {
		h.writeFailure(w, r, &validation.RequestError{Fields: violations})
		return
	}

	id, err := h.store.SaveEvaluation(r.Context(), raw)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	err = h.store.UpdateTestRunStatus(r.Context(), raw.TestRunID, models.TestRunCompleted)
	if err != nil && !errors.Is(err, store.ErrTestRunNotFound) {
		h.logger.Warn("marking test run completed", "test_run_id", raw.TestRunID, "error", err)
	}

	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

// --- test runs ---

// HandleListTestRuns lists test runs, newest first.
func (h *Handlers) HandleListTestRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListTestRuns(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleGetTestRun returns one test run.
func (h *Handlers) HandleGetTestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetTestRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleCreateTestRun records a pending test run and asks the workflow engine
// to run its battles. A rejected webhook marks the run failed.
func (h *Handlers) HandleCreateTestRun(w http.ResponseWriter, r *http.Request) {
	var req CreateTestRunRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	run := &models.TestRun{
		Name:          req.Name,
		PromptVersion: req.PromptVersion,
		PersonaIDs:    req.PersonaIDs,
	}
	if err := h.store.CreateTestRun(r.Context(), run); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	_, err := h.triggerBattles(r.Context(), run)
	switch {
	case errors.Is(err, workflow.ErrNotConfigured):
		h.logger.Warn("workflow engine not configured; test run left pending", "test_run_id", run.ID)
	case err != nil:
		h.setStatus(r.Context(), run, models.TestRunFailed)
		h.writeFailure(w, r, err)
		return
	default:
		h.setStatus(r.Context(), run, models.TestRunRunning)
	}

	writeJSON(w, http.StatusCreated, run)
}

func (h *Handlers) triggerBattles(ctx context.Context, run *models.TestRun) (*workflow.Ack, error) {
	if h.workflow == nil {
		return nil, workflow.ErrNotConfigured
	}
	return h.workflow.RunBattles(ctx, workflow.RunBattlesJob{
		TestRunID:     run.ID,
		PromptVersion: run.PromptVersion,
		PersonaIDs:    run.PersonaIDs,
		CallbackURL:   h.callbackURL(),
	})
}

func (h *Handlers) setStatus(ctx context.Context, run *models.TestRun, status models.TestRunStatus) {
	if err := h.store.UpdateTestRunStatus(ctx, run.ID, status); err != nil {
		h.logger.Error("updating test run status", "test_run_id", run.ID, "status", status, "error", err)
		return
	}
	run.Status = status
}

// HandleEvaluateTestRun asks the workflow engine to score a test run under
// the current criteria.
func (h *Handlers) HandleEvaluateTestRun(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if r.ContentLength != 0 {
		if err := decodeRequest(w, r, &req); err != nil {
			h.writeFailure(w, r, err)
			return
		}
	}

	run, err := h.store.GetTestRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	criteria, err := h.store.ListCriteria(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if h.workflow == nil {
		h.writeFailure(w, r, workflow.ErrNotConfigured)
		return
	}

	ack, err := h.workflow.Evaluate(r.Context(), workflow.EvaluateJob{
		TestRunID:        run.ID,
		EvaluatorName:    req.EvaluatorName,
		CriteriaSnapshot: models.Snapshot(criteria),
		CallbackURL:      h.callbackURL(),
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobResponse{JobID: ack.JobID, Status: ack.Status, TestRunID: run.ID})
}

func (h *Handlers) callbackURL() string {
	if h.publicURL == "" {
		return ""
	}
	return h.publicURL + "/api/evaluations"
}

// --- personas ---

// HandleListPersonas lists personas by name.
func (h *Handlers) HandleListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := h.store.ListPersonas(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, personas)
}

// HandleCreatePersona adds a persona.
func (h *Handlers) HandleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonaRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	p := &models.Persona{Name: req.Name, Description: req.Description, Difficulty: req.Difficulty}
	if err := h.store.CreatePersona(r.Context(), p); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleDeletePersona removes a persona.
func (h *Handlers) HandleDeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePersona(r.Context(), r.PathValue("id")); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGeneratePersonas asks the workflow engine to draft personas.
func (h *Handlers) HandleGeneratePersonas(w http.ResponseWriter, r *http.Request) {
	var req GeneratePersonasRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if h.workflow == nil {
		h.writeFailure(w, r, workflow.ErrNotConfigured)
		return
	}
	ack, err := h.workflow.GeneratePersonas(r.Context(), workflow.GeneratePersonasJob{
		Count:       req.Count,
		Description: req.Description,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobResponse{JobID: ack.JobID, Status: ack.Status})
}

// --- criteria ---

// HandleListCriteria lists criteria, core first.
func (h *Handlers) HandleListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.store.ListCriteria(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, criteria)
}

// HandleUpsertCriterion creates or replaces a criterion.
func (h *Handlers) HandleUpsertCriterion(w http.ResponseWriter, r *http.Request) {
	req := UpsertCriterionRequest{Name: r.PathValue("name")}
	if err := decodeRequest(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	c := &models.Criterion{
		Name:        req.Name,
		Category:    models.CriterionCategory(req.Category),
		Description: req.Description,
		Weight:      models.DefaultCriterionWeight,
	}
	if req.Weight != nil {
		c.Weight = *req.Weight
	}
	if err := h.store.UpsertCriterion(r.Context(), c); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDeleteCriterion removes a criterion.
func (h *Handlers) HandleDeleteCriterion(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCriterion(r.Context(), r.PathValue("name")); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- plumbing ---

// decodeRequest reads a JSON body into v and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &validation.RequestError{Fields: []string{"body: " + err.Error()}}
	}
	return validation.Request(v)
}

// writeFailure maps err onto a status code and error code. Unexpected errors
// are logged and reported without detail.
func (h *Handlers) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid *comparison.InvalidComparisonError
		reqErr  *validation.RequestError
		hookErr *workflow.WebhookError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, CodeInvalidComparison, err.Error())
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case store.IsConflict(err):
		writeError(w, http.StatusConflict, CodeConflict, err.Error())
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	case errors.As(err, &hookErr), errors.Is(err, workflow.ErrNotConfigured), errors.Is(err, workflow.ErrUnavailable):
		h.logger.Warn("workflow engine call failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, CodeWorkflowUnavailable, err.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Data: v}) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Error: &APIError{Message: msg, Code: code}}) //nolint:errcheck
}
