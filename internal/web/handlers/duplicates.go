package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/service"
)

// DuplicatesHandler serves duplicate detection
type DuplicatesHandler struct {
	Service *service.Service
	Config  *Config
	Logger  *slog.Logger
}

// CheckRequest is the body of POST /api/duplicates/check. Existing is
// optional; when omitted the stored candidates are used.
type CheckRequest struct {
	Candidate candidate.Input       `json:"candidate"`
	Existing  []candidate.Candidate `json:"existing,omitempty"`
}

// CheckResponse is a detection result plus the IDs at or above the
// auto-merge threshold
type CheckResponse struct {
	match.DetectionResult
	AutoMergeCandidates []string `json:"auto_merge_candidates"`
}

// Check runs duplicate detection for a candidate-in-progress
func (h *DuplicatesHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.Service.CheckCandidate(r.Context(), req.Candidate, req.Existing)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	threshold := h.Service.Detector().Config().AutoMergeThreshold
	resp := CheckResponse{DetectionResult: result, AutoMergeCandidates: []string{}}
	for _, m := range result.Matches {
		if m.MatchScore >= threshold {
			resp.AutoMergeCandidates = append(resp.AutoMergeCandidates, m.Candidate.ID)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Groups scans all stored candidates for duplicate clusters
func (h *DuplicatesHandler) Groups(w http.ResponseWriter, r *http.Request) {
	workers := 0
	if h.Config != nil {
		workers = h.Config.GroupWorkers
	}
	if v := r.URL.Query().Get("workers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid workers value"})
			return
		}
		workers = n
	}

	groups, err := h.Service.DuplicateGroups(r.Context(), workers)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if groups == nil {
		groups = []match.DuplicateGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups":  groups,
		"count":   len(groups),
		"workers": workers,
	})
}
