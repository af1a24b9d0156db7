// Package workflow triggers jobs on the external workflow engine that runs
// persona battles, evaluates them, and generates personas. Every trigger is a
// signed JSON POST to a named webhook; results come back later through the
// evaluation import API.
package workflow

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spboyer/arena/internal/models"
)

// Webhook names.
const (
	HookRunBattles       = "run-battles"
	HookEvaluate         = "evaluate"
	HookGeneratePersonas = "generate-personas"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Arena-Signature"

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept on WebhookError.
const maxErrorBody = 4096

// ErrNotConfigured is returned when no workflow base URL is set.
var ErrNotConfigured = errors.New("workflow engine is not configured")

// ErrUnavailable wraps transport failures: refused connections, timeouts,
// and canceled calls. The underlying error stays reachable with errors.Is.
var ErrUnavailable = errors.New("workflow engine unreachable")

// WebhookError is a non-2xx response from a webhook.
type WebhookError struct {
	Hook       string
	StatusCode int
	Body       string
}

func (e *WebhookError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook %s returned status %d", e.Hook, e.StatusCode)
	}
	return fmt.Sprintf("webhook %s returned status %d: %s", e.Hook, e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

// Client posts jobs to the workflow engine.
type Client struct {
	baseURL string
	secret  []byte
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. An empty BaseURL yields a client whose triggers all
// fail with ErrNotConfigured.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	if cfg.Secret != "" {
		c.secret = []byte(cfg.Secret)
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether the client has somewhere to send jobs.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// RunBattlesJob asks the engine to simulate every persona against a prompt version.
type RunBattlesJob struct {
	TestRunID     string   `json:"test_run_id"`
	PromptVersion string   `json:"prompt_version"`
	PersonaIDs    []string `json:"persona_ids"`
	CallbackURL   string   `json:"callback_url,omitempty"`
}

// EvaluateJob asks the engine to score a finished test run. The criteria
// snapshot pins the configuration the scores will be produced under.
type EvaluateJob struct {
	TestRunID        string                   `json:"test_run_id"`
	EvaluatorName    string                   `json:"evaluator_name,omitempty"`
	CriteriaSnapshot *models.CriteriaSnapshot `json:"criteria_snapshot"`
	CallbackURL      string                   `json:"callback_url,omitempty"`
}

// GeneratePersonasJob asks the engine to draft new personas.
type GeneratePersonasJob struct {
	Count       int    `json:"count"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// Ack is the engine's acknowledgement of a queued job.
type Ack struct {
	JobID  string `json:"job_id,omitempty"`
	Status string `json:"status,omitempty"`
}

// RunBattles triggers battle simulation for a test run.
func (c *Client) RunBattles(ctx context.Context, job RunBattlesJob) (*Ack, error) {
	return c.post(ctx, HookRunBattles, job)
}

// Evaluate triggers evaluation of a test run.
func (c *Client) Evaluate(ctx context.Context, job EvaluateJob) (*Ack, error) {
	return c.post(ctx, HookEvaluate, job)
}

// GeneratePersonas triggers persona generation.
func (c *Client) GeneratePersonas(ctx context.Context, job GeneratePersonasJob) (*Ack, error) {
	return c.post(ctx, HookGeneratePersonas, job)
}

func (c *Client) post(ctx context.Context, hook string, payload any) (*Ack, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", hook, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/webhook/"+hook, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", hook, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != nil {
		req.Header.Set(SignatureHeader, "sha256="+Sign(c.secret, body))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling webhook %s: %w: %w", hook, ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.logger.Debug("workflow webhook", "hook", hook, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &WebhookError{Hook: hook, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	ack := &Ack{}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", hook, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ack, nil
	}
	if err := json.Unmarshal(data, ack); err != nil {
		// Engines that answer with plain text still queued the job.
		c.logger.Debug("non-JSON webhook acknowledgement", "hook", hook, "error", err)
	}
	return ack, nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is a valid SignatureHeader value for body.
func Verify(secret, body []byte, header string) bool {
	got, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}
