package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/middleware"
	"github.com/lalit-mendapara/fittrack/services"
)

func getUserID(r *http.Request) (uint, bool) {
	return middleware.UserID(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the engine's error taxonomy onto HTTP codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation   *services.ValidationError
		notFound     *services.NotFoundError
		invalidState *services.InvalidStateError
		persistence  *services.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Msg)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Msg)
	case errors.As(err, &invalidState):
		writeError(w, http.StatusConflict, invalidState.Msg)
	case errors.As(err, &persistence):
		logger.Error("Persistence failure", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
	default:
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDateParam reads a ?date=YYYY-MM-DD query param, defaulting to today
// per the service's clock.
func parseDateParam(r *http.Request, now func() time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return now(), nil
	}
	return time.Parse(time.DateOnly, raw)
}
