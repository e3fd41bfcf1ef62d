package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/models"
	"github.com/lalit-mendapara/fittrack/services"
	"gorm.io/gorm"
)

// ProfileController manages the user's nutrition profile. Targets are always
// recomputed through services.DeriveTargets before a write; the store never
// recalculates them on its own.
type ProfileController struct {
	DB *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{DB: db}
}

func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var profile models.NutritionProfile
	if err := c.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		writeError(w, http.StatusNotFound, "no nutrition profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`
	ActivityLevel string  `json:"activity_level"`
	GoalType      string  `json:"goal_type"`
}

// Put upserts the profile. Note that an in-progress banking campaign keeps
// its frozen snapshot; new targets only affect future activations.
func (c *ProfileController) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var profile models.NutritionProfile
	err := c.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		profile = models.NutritionProfile{UserID: userID}
	}

	profile.WeightKg = req.WeightKg
	profile.HeightCm = req.HeightCm
	profile.Age = req.Age
	profile.Sex = req.Sex
	profile.ActivityLevel = req.ActivityLevel
	profile.GoalType = req.GoalType

	targets := services.DeriveTargets(&profile)
	profile.DailyCalories = targets.Calories
	profile.DailyProtein = targets.Protein
	profile.DailyCarbs = targets.Carbs
	profile.DailyFat = targets.Fat

	if err := c.DB.Save(&profile).Error; err != nil {
		logger.Error("Failed to save profile", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	logger.Info("Profile updated", "user_id", userID, "daily_calories", profile.DailyCalories)
	writeJSON(w, http.StatusOK, profile)
}
