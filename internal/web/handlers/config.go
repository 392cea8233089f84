package handlers

import (
	"log/slog"
	"net/http"

	"github.com/talentflow/dedupe/internal/match"
)

// ConfigHandler reads and replaces the live detection configuration
type ConfigHandler struct {
	Detector *match.Detector
	Config   *Config
	Logger   *slog.Logger
}

// Get returns the current detection configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Detector.Config())
}

// Update replaces the detection configuration wholesale. The body must be a
// complete configuration; it is validated before it takes effect.
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ConfigUpdateEnabled {
		http.Error(w, "Feature disabled", http.StatusForbidden)
		return
	}

	var cfg match.Config
	if !decodeJSON(w, r, &cfg) {
		return
	}
	if err := h.Detector.UpdateConfig(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.Detector.Config())
}
