package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avashisht/fretcoach/internal/store"
)

// SessionsHandler manages practice session history.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

type createSessionRequest struct {
	TargetChord string `json:"targetChord"`
}

type finishSessionRequest struct {
	BestScore   float64 `json:"bestScore"`
	TimesStable int     `json:"timesStable"`
}

type sessionResponse struct {
	ID          string  `json:"id"`
	TargetChord string  `json:"targetChord"`
	BestScore   float64 `json:"bestScore"`
	TimesStable int     `json:"timesStable"`
	StartedAt   string  `json:"startedAt"`
	FinishedAt  string  `json:"finishedAt,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

// ServeHTTP routes session requests.
// Expected paths: /api/sessions, /api/sessions/{id}, /api/sessions/{id}/finish
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/finish"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.finish(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, path)
}

func (h *SessionsHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetChord == "" {
		writeError(w, http.StatusBadRequest, "targetChord is required")
		return
	}

	session, err := h.store.Sessions().Create(req.TargetChord)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *SessionsHandler) get(w http.ResponseWriter, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionsHandler) finish(w http.ResponseWriter, r *http.Request, id string) {
	var req finishSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Sessions().Finish(id, req.BestScore, req.TimesStable); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found or already finished")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to finish session")
		return
	}

	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:          s.ID,
		TargetChord: s.TargetChord,
		BestScore:   s.BestScore,
		TimesStable: s.TimesStable,
		StartedAt:   s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.FinishedAt != nil {
		resp.FinishedAt = s.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
