// Package api provides HTTP API handlers for the fretcoach application.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/avashisht/fretcoach/internal/chord"
)

// ChordHandler serves the chord catalog.
type ChordHandler struct {
	catalog *chord.Catalog
}

// NewChordHandler creates a new ChordHandler with the given catalog.
func NewChordHandler(c *chord.Catalog) *ChordHandler {
	return &ChordHandler{catalog: c}
}

// ServeHTTP routes between the collection and item endpoints.
// Expected paths: /api/chords or /api/chords/{name}
func (h *ChordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/chords")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.list(w)
		return
	}
	h.get(w, path)
}

type stringConstraintResponse struct {
	Kind   string `json:"kind"`
	Fret   int    `json:"fret,omitempty"`
	Finger int    `json:"finger,omitempty"`
}

type chordResponse struct {
	Name    string                           `json:"name"`
	Strings map[int]stringConstraintResponse `json:"strings"`
}

type listChordsResponse struct {
	Chords []string `json:"chords"`
}

func (h *ChordHandler) list(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, listChordsResponse{Chords: h.catalog.Names()})
}

func (h *ChordHandler) get(w http.ResponseWriter, name string) {
	tmpl, ok := h.catalog.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "chord not found")
		return
	}

	resp := chordResponse{
		Name:    tmpl.Name,
		Strings: make(map[int]stringConstraintResponse, len(tmpl.Strings)),
	}
	for idx, c := range tmpl.Strings {
		resp.Strings[idx] = stringConstraintResponse{
			Kind:   string(c.Kind),
			Fret:   c.Fret,
			Finger: c.Finger,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
