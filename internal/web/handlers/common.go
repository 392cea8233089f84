package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/service"
	"github.com/talentflow/dedupe/internal/validation"
)

// Config represents the web server configuration (simplified)
type Config struct {
	Features struct {
		MergeEnabled        bool `json:"merge_enabled"`
		ConfigUpdateEnabled bool `json:"config_update_enabled"`
	} `json:"features"`
	// GroupWorkers is used when a groups request does not name a worker count
	GroupWorkers int `json:"group_workers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, candidate.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, validation.ErrInvalidCandidate), errors.Is(err, service.ErrSameCandidate):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAuditDisabled):
		status = http.StatusNotImplemented
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		msg = "Internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON: " + err.Error()})
		return false
	}
	return true
}
