package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avashisht/fretcoach/internal/fretboard"
	"github.com/avashisht/fretcoach/internal/geometry"
	"github.com/avashisht/fretcoach/internal/pipeline"
	"github.com/avashisht/fretcoach/internal/store"
)

// CalibrationHandler manages saved calibration profiles and applies manual
// calibrations to the running pipeline.
type CalibrationHandler struct {
	store        *store.Store
	orchestrator *pipeline.Orchestrator
}

// NewCalibrationHandler creates a new CalibrationHandler. The orchestrator
// may be nil, in which case calibrations are saved but not applied live.
func NewCalibrationHandler(s *store.Store, o *pipeline.Orchestrator) *CalibrationHandler {
	return &CalibrationHandler{store: s, orchestrator: o}
}

type calibrateRequest struct {
	Name       string           `json:"name"`
	GuitarType string           `json:"guitarType"`
	Handedness string           `json:"handedness"`
	NutLeft    geometry.Point2D `json:"nutLeft"`
	NutRight   geometry.Point2D `json:"nutRight"`
	RefLeft    geometry.Point2D `json:"refLeft"`
	RefRight   geometry.Point2D `json:"refRight"`
}

type calibrationResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	GuitarType string             `json:"guitarType"`
	Handedness string             `json:"handedness"`
	Manual     bool               `json:"manual"`
	Geometry   fretboard.Geometry `json:"geometry"`
	CreatedAt  string             `json:"createdAt"`
}

// ServeHTTP routes calibration requests.
// Expected paths: /api/calibration (GET latest, POST new) and
// /api/calibration/{id} (GET, DELETE).
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/calibration")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.latest(w)
		case http.MethodPost:
			h.calibrate(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CalibrationHandler) latest(w http.ResponseWriter) {
	profile, err := h.store.Calibrations().Latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no calibration saved")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load calibration")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

func (h *CalibrationHandler) get(w http.ResponseWriter, id string) {
	profile, err := h.store.Calibrations().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "calibration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load calibration")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

func (h *CalibrationHandler) calibrate(w http.ResponseWriter, r *http.Request) {
	var req calibrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	geom := fretboard.CalibrateManual(req.NutLeft, req.NutRight, req.RefLeft, req.RefRight)
	if !geom.Usable() {
		writeError(w, http.StatusBadRequest, "calibration points do not form a usable plane")
		return
	}

	if h.orchestrator != nil {
		h.orchestrator.SetGeometry(geom, true)
	}

	profile := &store.CalibrationProfile{
		Name:       req.Name,
		GuitarType: req.GuitarType,
		Handedness: req.Handedness,
		Manual:     true,
		Geometry:   geom,
	}
	if err := h.store.Calibrations().Save(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save calibration")
		return
	}

	writeJSON(w, http.StatusCreated, profileResponse(profile))
}

func (h *CalibrationHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Calibrations().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "calibration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete calibration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func profileResponse(p *store.CalibrationProfile) calibrationResponse {
	return calibrationResponse{
		ID:         p.ID,
		Name:       p.Name,
		GuitarType: p.GuitarType,
		Handedness: p.Handedness,
		Manual:     p.Manual,
		Geometry:   p.Geometry,
		CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
