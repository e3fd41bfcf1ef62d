package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lalit-mendapara/fittrack/services"
)

// FeastController exposes the calorie-banking engine over HTTP.
type FeastController struct {
	Svc *services.FeastService
}

func NewFeastController(svc *services.FeastService) *FeastController {
	return &FeastController{Svc: svc}
}

type proposeRequest struct {
	EventName       string `json:"event_name"`
	EventDate       string `json:"event_date"` // YYYY-MM-DD
	CustomDeduction *int   `json:"custom_deduction,omitempty"`
}

type activateRequest struct {
	proposeRequest
	WorkoutBoost bool `json:"workout_boost"`
}

type updateRequest struct {
	NewDeduction *int  `json:"new_deduction,omitempty"`
	WorkoutBoost *bool `json:"workout_boost,omitempty"`
}

// Propose previews a banking schedule without persisting anything.
func (c *FeastController) Propose(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EventName == "" {
		writeError(w, http.StatusBadRequest, "event_name is required")
		return
	}
	eventDate, err := time.Parse(time.DateOnly, req.EventDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "event_date must be YYYY-MM-DD")
		return
	}

	proposal, err := c.Svc.Propose(userID, eventDate, req.EventName, req.CustomDeduction)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// Activate starts a campaign, superseding any prior active one.
func (c *FeastController) Activate(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EventName == "" {
		writeError(w, http.StatusBadRequest, "event_name is required")
		return
	}
	eventDate, err := time.Parse(time.DateOnly, req.EventDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "event_date must be YYYY-MM-DD")
		return
	}

	cfg, err := c.Svc.Activate(r.Context(), userID, eventDate, req.EventName, req.CustomDeduction, req.WorkoutBoost)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// Cancel deactivates the active campaign; with none active it reports a
// no-op instead of failing.
func (c *FeastController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := c.Svc.Cancel(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Update changes the deduction and/or the workout-boost flag mid-campaign.
func (c *FeastController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewDeduction == nil && req.WorkoutBoost == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	result, err := c.Svc.Update(r.Context(), userID, req.NewDeduction, req.WorkoutBoost)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Status returns the campaign projection for a date (default today).
func (c *FeastController) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	date, err := parseDateParam(r, c.Svc.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	status, err := c.Svc.GetStatus(userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if status == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Overrides returns the per-meal overrides in force for a date.
func (c *FeastController) Overrides(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	date, err := parseDateParam(r, c.Svc.Now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	overrides, err := c.Svc.GetOverrides(userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}
