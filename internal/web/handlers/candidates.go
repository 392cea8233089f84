package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/talentflow/dedupe/internal/service"
)

// CandidatesHandler serves stored candidate records
type CandidatesHandler struct {
	Service *service.Service
	Logger  *slog.Logger
}

// Get returns one candidate
func (h *CandidatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Candidate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
