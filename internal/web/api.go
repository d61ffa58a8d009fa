// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"meowdash/internal/dashboard"
)

// SelectRequest is the JSON body for choosing a panel's tool. An empty
// address closes the panel.
type SelectRequest struct {
	Label   string `json:"label"`
	Address string `json:"address"`
}

// ZoomRequest is the JSON body for setting a zoom level directly.
type ZoomRequest struct {
	Index int `json:"index"`
}

// FailureReport is the JSON body a host sends when an attempt failed.
type FailureReport struct {
	Detail string   `json:"detail"`
	Causes []string `json:"causes"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownPanel):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrNotLoaded),
		errors.Is(err, dashboard.ErrNotFailed),
		errors.Is(err, dashboard.ErrNoTool):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrZoomRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// panelID parses the {id} path value. It writes a 404 and returns false
// when the id is not a panel.
func panelID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 || id > dashboard.PanelCount {
		writeError(w, http.StatusNotFound, "panel not found")
		return 0, false
	}
	return id, true
}

// respond writes the panel's view after a successful operation, or the
// mapped error.
func (s *Server) respond(w http.ResponseWriter, id int, err error) {
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Panel(id))
}

// panelAction adapts a single-panel engine operation to a handler.
func (s *Server) panelAction(op func(*dashboard.Engine, int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := panelID(w, r)
		if !ok {
			return
		}
		s.respond(w, id, op(s.engine, id))
	}
}

// handleCatalog handles GET /api/catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Catalog)
}

// handleListPanels handles GET /api/panels. Returns the whole board.
func (s *Server) handleListPanels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// handleGetPanel handles GET /api/panels/{id}.
func (s *Server) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	id, ok := panelID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Panel(id))
}

// handleSelect handles POST /api/panels/{id}/select.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, ok := panelID(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respond(w, id, s.engine.SelectTool(id, req.Label, req.Address))
}

// handleZoom handles POST /api/panels/{id}/zoom/{in|out|reset}.
func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	id, ok := panelID(w, r)
	if !ok {
		return
	}
	var err error
	switch r.PathValue("action") {
	case "in":
		err = s.engine.ZoomIn(id)
	case "out":
		err = s.engine.ZoomOut(id)
	case "reset":
		err = s.engine.ZoomReset(id)
	default:
		writeError(w, http.StatusNotFound, "zoom action must be in, out or reset")
		return
	}
	s.respond(w, id, err)
}

// handleSetZoom handles PUT /api/panels/{id}/zoom.
func (s *Server) handleSetZoom(w http.ResponseWriter, r *http.Request) {
	id, ok := panelID(w, r)
	if !ok {
		return
	}
	var req ZoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respond(w, id, s.engine.SetZoom(id, req.Index))
}

func attemptToken(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	token, err := strconv.ParseUint(r.PathValue("token"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attempt token")
		return 0, false
	}
	return token, true
}

// handleReportLoaded handles POST /api/panels/{id}/attempts/{token}/loaded.
// Reports for superseded attempts succeed without effect.
func (s *Server) handleReportLoaded(w http.ResponseWriter, r *http.Request) {
	id, ok := panelID(w, r)
	if !ok {
		return
	}
	token, ok := attemptToken(w, r)
	if !ok {
		return
	}
	s.respond(w, id, s.engine.ReportLoaded(id, token))
}

// handleReportFailed handles POST /api/panels/{id}/attempts/{token}/failed.
// The body is optional.
func (s *Server) handleReportFailed(w http.ResponseWriter, r *http.Request) {
	id, ok := panelID(w, r)
	if !ok {
		return
	}
	token, ok := attemptToken(w, r)
	if !ok {
		return
	}
	var req FailureReport
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	s.respond(w, id, s.engine.ReportFailed(id, token, req.Detail, req.Causes...))
}
