package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"jobtrack-engine/internal/status"
	"jobtrack-engine/internal/store"
)

type ApplicationsHandler struct {
	DB      *sql.DB
	Tracker *status.Tracker
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := queryInt64(r, "user_id")
	if userID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "user_id query parameter is required")
		return
	}
	apps, err := store.ListApplications(r.Context(), h.DB, userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, apps)
}

func (h ApplicationsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := queryInt64(r, "user_id")
	if userID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "user_id query parameter is required")
		return
	}
	sum, err := store.StatusSummary(r.Context(), h.DB, userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "summary_failed", err.Error())
		return
	}
	writeJSON(w, sum)
}

// GetByPath serves /applications/{id}, /applications/{id}/activities and
// /applications/{id}/transitions.
func (h ApplicationsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := pathID(r.URL.Path, "/applications/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "expected /applications/{id}")
		return
	}

	switch tail {
	case "":
		app, err := store.GetApplication(r.Context(), h.DB, id)
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, http.StatusNotFound, "not_found", "no such application")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
			return
		}
		writeJSON(w, app)

	case "activities":
		acts, err := store.ListActivities(r.Context(), h.DB, id)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
			return
		}
		writeJSON(w, acts)

	case "transitions":
		app, err := store.GetApplication(r.Context(), h.DB, id)
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, r, http.StatusNotFound, "not_found", "no such application")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "get_failed", err.Error())
			return
		}
		writeJSON(w, map[string]any{
			"status":    app.Status,
			"available": status.Available(app.Status),
		})

	default:
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown application resource")
	}
}

type statusUpdateReq struct {
	NewStatus string `json:"new_status"`
	Notes     string `json:"notes,omitempty"`
	Actor     string `json:"actor,omitempty"`
}

// PostByPath serves /applications/{id}/status.
func (h ApplicationsHandler) PostByPath(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := pathID(r.URL.Path, "/applications/")
	if !ok || tail != "status" {
		WriteError(w, r, http.StatusNotFound, "not_found", "expected /applications/{id}/status")
		return
	}

	var req statusUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.NewStatus == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "new_status is required")
		return
	}
	actor := req.Actor
	if actor == "" {
		actor = "api"
	}

	app, err := h.Tracker.Transition(r.Context(), id, req.NewStatus, actor, req.Notes)
	var te *status.TransitionError
	if errors.As(err, &te) {
		// The message states the disallowed move explicitly.
		WriteError(w, r, http.StatusConflict, "invalid_transition", te.Error())
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no such application")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "transition_failed", err.Error())
		return
	}
	writeJSON(w, app)
}
