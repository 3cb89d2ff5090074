package handler

import (
	"net/http"

	"github.com/pkordes/map-collection/spec"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// GetHealth handles GET /healthz.
// It returns 200 {"status":"ok"} when the server and, if configured, the
// database are reachable, and 503 {"status":"degraded"} otherwise.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ping == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	if err := s.opts.Ping(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
