package webserver

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spboyer/arena/internal/store"
	"github.com/spboyer/arena/internal/webapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const evalA = `{
  "id": "ev-a", "test_run_id": "tr-1", "overall_score": 6, "success_count": 1, "failure_count": 1,
  "created_at": "2026-01-01T00:00:00Z",
  "items": [{"id": "1", "persona_id": "p1", "persona_name": "Alice", "overall_score": 6, "criteria_scores": {"clarity": 6}}]
}`

const evalB = `{
  "id": "ev-b", "test_run_id": "tr-1", "overall_score": 8, "success_count": 2,
  "created_at": "2026-01-02T00:00:00Z",
  "items": [{"id": "2", "persona_id": "p1", "persona_name": "Alice", "overall_score": 8, "criteria_scores": {"clarity": 9}}]
}`

func newFileServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(evalA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(evalB), 0o644))

	srv, err := New(Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		API:            webapi.Config{Reader: store.NewFileStore(dir)},
	})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, newFileServer(t).Handler(), "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body webapi.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Error)
	assert.Equal(t, "ok", body.Data.(map[string]any)["status"])
}

func TestCompareThroughServer(t *testing.T) {
	rec := get(t, newFileServer(t).Handler(), "/api/evaluations/ev-a/compare/ev-b", "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Data struct {
			Verdict struct {
				BetterEvaluation string `json:"better_evaluation"`
			} `json:"verdict"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b", body.Data.Verdict.BetterEvaluation)
}

func TestUnknownRouteIsEnveloped404(t *testing.T) {
	h := newFileServer(t).Handler()

	for _, path := range []string{"/nope", "/api/test-runs"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		var body webapi.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, webapi.CodeNotFound, body.Error.Code)
	}
}

func TestMetricsEndpointIsCompressed(t *testing.T) {
	h := newFileServer(t).Handler()
	get(t, h, "/api/compare/ev-a/ev-b")

	rec := get(t, h, "/metrics", "Accept-Encoding", "gzip")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	text, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(text), `arena_comparisons_total{mode="cross_run",verdict="b"} 1`)
	assert.Contains(t, string(text), `arena_http_requests_total{route="GET /api/compare/{idA}/{idB}",status="200"} 1`)
}

func TestSQLBackedServer(t *testing.T) {
	st, err := store.OpenSQLStore(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	srv, err := New(Config{API: webapi.Config{Store: st}})
	require.NoError(t, err)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/personas", strings.NewReader(`{"name": "Impatient Ian"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/evaluations", strings.NewReader(evalA))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get(t, h, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			TotalPersonas    int `json:"total_personas"`
			TotalEvaluations int `json:"total_evaluations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.TotalPersonas)
	assert.Equal(t, 1, body.Data.TotalEvaluations)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newFileServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	transport := &http.Transport{DisableKeepAlives: true}
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	transport.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	srv, err := New(Config{Host: "256.0.0.1", API: webapi.Config{Reader: store.NewFileStore(t.TempDir())}})
	require.NoError(t, err)
	require.Error(t, srv.ListenAndServe(context.Background()))
}
