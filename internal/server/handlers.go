package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/poferraz/motion-lite/internal/plan"
	"github.com/poferraz/motion-lite/internal/state"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImportPlan parses the raw CSV request body and persists it on
// success. A document-level failure returns 422 with the diagnostics and
// persists nothing; row-level warnings ride along on a 200.
func (s *Server) handleImportPlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}

	res := plan.Parse(string(body))
	if !res.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	if _, err := s.store.SetCSVData(r.Context(), string(body), res); err != nil {
		s.log.Error("persisting imported plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("plan imported", "rows", len(res.Rows), "sessions", len(res.SessionNames), "warnings", len(res.Diagnostics))
	writeJSON(w, http.StatusOK, res)
}

// handleExportPlan renders the stored rows back to canonical CSV.
func (s *Server) handleExportPlan(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="plan.csv"`)
	_, _ = io.WriteString(w, plan.EncodeDocument(snap.Rows))
}

// handleSessions builds sessions from the stored rows and the stored
// selection, in selection order.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plan.BuildSessions(snap.Rows, snap.SelectedSessions))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleClearState(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.log.Error("clearing state", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSetPanel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Panel string `json:"panel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Panel == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "panel is required"})
		return
	}

	snap, err := s.store.SetPanel(r.Context(), req.Panel)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetSelections(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sessions []string `json:"sessions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.store.SetSelectedSessions(r.Context(), req.Sessions)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetCursor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionIndex  int `json:"session_index"`
		ExerciseIndex int `json:"exercise_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.store.SetCursor(r.Context(), req.SessionIndex, req.ExerciseIndex)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session    string `json:"session"`
		ExerciseID string `json:"exercise_id"`
		SetIndex   int    `json:"set_index"`
		Checked    bool   `json:"checked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Session == "" || req.ExerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session and exercise_id are required"})
		return
	}

	snap, err := s.store.SetSetChecked(r.Context(), req.Session, req.ExerciseID, req.SetIndex, req.Checked)
	if err != nil {
		if errors.Is(err, state.ErrInvalidSetIndex) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session    string         `json:"session"`
		ExerciseID string         `json:"exercise_id"`
		Clear      bool           `json:"clear"`
		Override   state.Override `json:"override"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Session == "" || req.ExerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session and exercise_id are required"})
		return
	}

	var snap *state.Snapshot
	var err error
	if req.Clear {
		snap, err = s.store.ClearOverride(r.Context(), req.Session, req.ExerciseID)
	} else {
		snap, err = s.store.SetOverride(r.Context(), req.Session, req.ExerciseID, req.Override)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetCompletion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session   string `json:"session"`
		Completed bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Session == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session is required"})
		return
	}

	snap, err := s.store.SetSessionCompleted(r.Context(), req.Session, req.Completed)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpdateTimers(w http.ResponseWriter, r *http.Request) {
	var update state.TimerUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.store.UpdateTimers(r.Context(), update)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
