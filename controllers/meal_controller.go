package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/models"
	"github.com/lalit-mendapara/fittrack/services"
	"gorm.io/gorm"
)

// MealController serves the day's plan (with overrides merged in) and
// records consumption.
type MealController struct {
	DB  *gorm.DB
	Svc *services.FeastService
}

func NewMealController(db *gorm.DB, svc *services.FeastService) *MealController {
	return &MealController{DB: db, Svc: svc}
}

// PlanEntry is one slot of the day as the client should render it: the
// planned values with any banking override already applied.
type PlanEntry struct {
	MealID           string  `json:"meal_id"`
	Label            string  `json:"label"`
	PortionLabel     string  `json:"portion_label"`
	Calories         float64 `json:"calories"`
	Protein          float64 `json:"protein"`
	Carbs            float64 `json:"carbs"`
	Fat              float64 `json:"fat"`
	Consumed         bool    `json:"consumed"`
	Adjusted         bool    `json:"adjusted"`
	AdjustmentNote   string  `json:"adjustment_note,omitempty"`
	AdjustmentMethod string  `json:"adjustment_method,omitempty"`
}

// GetDayPlan returns the plan for a date with effective targets and any
// overrides merged. Without an active campaign this is just the base plan.
func (c *MealController) GetDayPlan(w http.ResponseWriter, r *http.Request) {
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
	day := services.DateOnly(date)

	var items []models.MealPlanItem
	if err := c.DB.Where("user_id = ? AND plan_date = ?", userID, day).
		Order("id").Find(&items).Error; err != nil {
		logger.Error("Failed to load meal plan", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load meal plan")
		return
	}

	targets, err := c.Svc.GetEffectiveTargets(userID, day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	overrides, err := c.Svc.GetOverrides(userID, day)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]PlanEntry, 0, len(items))
	for _, it := range items {
		entry := PlanEntry{
			MealID:       it.MealID,
			Label:        it.Label,
			PortionLabel: it.PortionLabel,
			Calories:     it.Calories,
			Protein:      it.Protein,
			Carbs:        it.Carbs,
			Fat:          it.Fat,
			Consumed:     it.Consumed,
		}
		if ov, found := overrides[it.MealID]; found && !it.Consumed {
			entry.Calories = ov.Calories
			entry.Protein = ov.Protein
			entry.Carbs = ov.Carbs
			entry.Fat = ov.Fat
			entry.PortionLabel = ov.PortionLabel
			entry.Adjusted = true
			entry.AdjustmentNote = ov.AdjustmentNote
			entry.AdjustmentMethod = ov.AdjustmentMethod
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":    day.Format(time.DateOnly),
		"targets": targets,
		"meals":   entries,
	})
}

type logMealRequest struct {
	MealID   string  `json:"meal_id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// LogMeal records an eaten meal, marks its plan slot consumed, and when a
// campaign is active regenerates overrides for the rest of the day so the
// remaining budget stays on target.
func (c *MealController) LogMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req logMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" && req.MealID == "" {
		writeError(w, http.StatusBadRequest, "meal_id or name is required")
		return
	}

	now := time.Now()
	day := services.DateOnly(now)

	entry := models.MealLog{
		UserID:   userID,
		MealID:   req.MealID,
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		LoggedAt: now,
	}
	if err := c.DB.Create(&entry).Error; err != nil {
		logger.Error("Failed to log meal", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log meal")
		return
	}

	if req.MealID != "" {
		c.DB.Model(&models.MealPlanItem{}).
			Where("user_id = ? AND plan_date = ? AND meal_id = ?", userID, day, req.MealID).
			Update("consumed", true)
	}

	logger.Info("Meal logged", "user_id", userID, "meal_id", req.MealID, "calories", req.Calories)

	// A logged meal shifts the remaining budget; recompute the rest of the
	// day when a campaign is running.
	cfg, err := c.Svc.GetActiveConfig(userID, day)
	if err == nil && cfg != nil {
		if err := c.Svc.GenerateOverrides(r.Context(), cfg, day); err != nil {
			logger.Warn("Failed to refresh overrides after meal log", "user_id", userID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":      "success",
		"meal_log_id": entry.ID,
	})
}
