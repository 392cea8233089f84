package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/talentflow/dedupe/internal/service"
)

// MergeHandler serves merge preview, merge and merge history
type MergeHandler struct {
	Service *service.Service
	Config  *Config
	Logger  *slog.Logger
}

type previewRequest struct {
	PrimaryID   string `json:"primary_id"`
	DuplicateID string `json:"duplicate_id"`
}

// Preview returns the conflicts a merge would raise
func (h *MergeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PrimaryID == "" || req.DuplicateID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "primary_id and duplicate_id are required"})
		return
	}

	preview, err := h.Service.PreviewMerge(r.Context(), req.PrimaryID, req.DuplicateID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Merge applies decisions and folds the duplicate into the primary
func (h *MergeHandler) Merge(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.MergeEnabled {
		http.Error(w, "Feature disabled", http.StatusForbidden)
		return
	}

	var req service.MergeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PrimaryID == "" || req.DuplicateID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "primary_id and duplicate_id are required"})
		return
	}

	result, err := h.Service.Merge(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History lists audited merges involving a candidate
func (h *MergeHandler) History(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	history, err := h.Service.MergeHistory(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
