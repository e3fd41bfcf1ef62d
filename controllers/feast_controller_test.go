package controllers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/lalit-mendapara/fittrack/controllers"
	"github.com/lalit-mendapara/fittrack/database"
	"github.com/lalit-mendapara/fittrack/middleware"
	"github.com/lalit-mendapara/fittrack/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ctrlNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fittrack.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	svc := services.NewFeastService(db, nil, nil)
	svc.Now = func() time.Time { return ctrlNow }
	feast := controllers.NewFeastController(svc)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Post("/feast/propose", feast.Propose)
		r.Post("/feast/activate", feast.Activate)
		r.Delete("/feast", feast.Cancel)
		r.Get("/feast/status", feast.Status)
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer 1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProposeEndpoint(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	eventDate := ctrlNow.AddDate(0, 0, 4).Format(time.DateOnly)
	rec := doJSON(t, r, "POST", "/feast/propose",
		fmt.Sprintf(`{"event_name":"birthday","event_date":%q}`, eventDate))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"daily_deduction":200`)
	assert.Contains(t, rec.Body.String(), `"total_bank":800`)
}

func TestProposeEndpointRejectsBadWindow(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	eventDate := ctrlNow.AddDate(0, 0, 30).Format(time.DateOnly)
	rec := doJSON(t, r, "POST", "/feast/propose",
		fmt.Sprintf(`{"event_name":"too far","event_date":%q}`, eventDate))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateThenStatusEndpoint(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	eventDate := ctrlNow.AddDate(0, 0, 4).Format(time.DateOnly)
	rec := doJSON(t, r, "POST", "/feast/activate",
		fmt.Sprintf(`{"event_name":"birthday","event_date":%q,"workout_boost":false}`, eventDate))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, "GET", "/feast/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"BANKING"`)
	assert.Contains(t, rec.Body.String(), `"days_remaining":4`)
}

func TestCancelEndpointNoCampaign(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	rec := doJSON(t, r, "DELETE", "/feast", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no active config")
}

func TestEndpointsRequireAuth(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	req := httptest.NewRequest("GET", "/feast/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
