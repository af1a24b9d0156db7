package webapi

// Error codes carried in Envelope.Error.Code.
const (
	CodeInvalidComparison   = "INVALID_COMPARISON"
	CodeNotFound            = "NOT_FOUND"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeWorkflowUnavailable = "WORKFLOW_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

// Envelope wraps every JSON response. Exactly one of Data and Error is set.
type Envelope struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// APIError is the error half of an Envelope.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Storage string `json:"storage"`
}

// CreateTestRunRequest launches battles for a prompt version.
type CreateTestRunRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	PromptVersion string   `json:"prompt_version" validate:"required"`
	PersonaIDs    []string `json:"persona_ids" validate:"required,min=1,dive,required"`
}

// EvaluateRequest asks for a fresh evaluation of a test run.
type EvaluateRequest struct {
	EvaluatorName string `json:"evaluator_name" validate:"omitempty,max=100"`
}

// CreatePersonaRequest adds a persona by hand.
type CreatePersonaRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// GeneratePersonasRequest asks the workflow engine to draft personas.
type GeneratePersonasRequest struct {
	Count       int    `json:"count" validate:"required,min=1,max=20"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// UpsertCriterionRequest creates or updates the criterion named in the path.
type UpsertCriterionRequest struct {
	Name        string   `json:"-" path:"name" validate:"required,criterion_name"`
	Category    string   `json:"category" validate:"omitempty,oneof=core domain"`
	Description string   `json:"description"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0"`
}

// JobResponse reports a job handed to the workflow engine.
type JobResponse struct {
	JobID     string `json:"job_id,omitempty"`
	Status    string `json:"status,omitempty"`
	TestRunID string `json:"test_run_id,omitempty"`
}

// CreatedResponse carries the ID of a stored resource.
type CreatedResponse struct {
	ID string `json:"id"`
}
