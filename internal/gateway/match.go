package gateway

import (
	"encoding/json"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
	"github.com/spigell/talentmatch/internal/logger"
)

const (
	projectToJobsPath = "/api/match/project-to-jobs"
	jobToProjectsPath = "/api/match/job-to-projects"

	maxMatchBodySize = 1 << 20
)

var (
	errInvalidParams = map[string]string{"error": "Invalid request parameters"}
	errInternal      = map[string]string{"error": "Internal server error"}
)

// matcherPath picks the matcher endpoint from the request shape. Field
// presence follows loose truthiness: empty strings, zero, false and null do
// not count, empty lists do.
func matcherPath(body map[string]any) string {
	switch {
	case truthy(body["githubUrl"]) && truthy(body["jobDescriptions"]):
		return projectToJobsPath
	case truthy(body["jobDescription"]) && truthy(body["githubUrls"]):
		return jobToProjectsPath
	default:
		return ""
	}
}

func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0 && !math.IsNaN(value)
	default:
		return true
	}
}

// handleMatch forwards the body unchanged to the matcher and replays its
// status and JSON payload.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequest(s.logger, requestIDFrom(r.Context()), s.matcher.APIURL)

	var body any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMatchBodySize)).Decode(&body); err != nil {
		log.Warn("reading match request", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errInternal)
		return
	}

	if body == nil {
		log.Warn("match request body is null")
		writeJSON(w, http.StatusInternalServerError, errInternal)
		return
	}

	fields, _ := body.(map[string]any)
	path := matcherPath(fields)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errInvalidParams)
		return
	}

	opts := backend.Options{}
	if auth := r.Header.Get("Authorization"); auth != "" {
		opts.Headers = map[string]string{"Authorization": auth}
	}

	resp, err := s.matcher.Post(r.Context(), path, body, opts)
	if err != nil {
		log.Error("forwarding to matcher", zap.String("path", path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errInternal)
		return
	}

	if !resp.HasPayload() {
		log.Error("matcher answered without json", zap.String("path", path), zap.Int("status", resp.Status))
		writeJSON(w, http.StatusInternalServerError, errInternal)
		return
	}

	log.Debug("match forwarded", zap.String("path", path), zap.Int("status", resp.Status))
	writeJSON(w, resp.Status, resp.Data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
