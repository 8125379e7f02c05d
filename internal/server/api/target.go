package api

import (
	"encoding/json"
	"net/http"

	"github.com/avashisht/fretcoach/internal/pipeline"
)

// TargetHandler controls which chord the pipeline is scoring against.
type TargetHandler struct {
	orchestrator *pipeline.Orchestrator
}

// NewTargetHandler creates a new TargetHandler driving the given pipeline.
func NewTargetHandler(o *pipeline.Orchestrator) *TargetHandler {
	return &TargetHandler{orchestrator: o}
}

type setTargetRequest struct {
	Chord string `json:"chord"`
}

type targetResponse struct {
	Chord string `json:"chord"`
}

// ServeHTTP handles GET (current target), POST (set target), and DELETE
// (clear target) on /api/target.
func (h *TargetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, targetResponse{Chord: h.orchestrator.TargetChord()})

	case http.MethodPost:
		var req setTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Chord == "" {
			writeError(w, http.StatusBadRequest, "chord is required")
			return
		}
		if err := h.orchestrator.SetTargetChord(req.Chord); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, targetResponse{Chord: req.Chord})

	case http.MethodDelete:
		h.orchestrator.ClearTargetChord()
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
