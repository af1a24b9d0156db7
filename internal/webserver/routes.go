package webserver

import (
	"encoding/json"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/spboyer/arena/internal/webapi"
)

// registerRoutes sets up the API, metrics, and fallback routes on mux.
func registerRoutes(mux *http.ServeMux, cfg Config) {
	webapi.RegisterRoutes(mux, webapi.NewHandlers(cfg.API))
	mux.Handle("GET /metrics", cfg.Metrics.Handler())
	mux.HandleFunc("/", handleNotFound)
}

// wrap applies CORS and response compression around the mux.
func wrap(mux http.Handler, cfg Config) http.Handler {
	return gzhttp.GzipHandler(webapi.CORSMiddleware(mux, cfg.AllowedOrigins...))
}

// handleNotFound answers unknown paths with an enveloped 404.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(webapi.Envelope{ //nolint:errcheck
		Error: &webapi.APIError{Message: "no route for " + r.URL.Path, Code: webapi.CodeNotFound},
	})
}
