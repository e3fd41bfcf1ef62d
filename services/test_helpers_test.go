package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lalit-mendapara/fittrack/database"
	"github.com/lalit-mendapara/fittrack/llm"
	"github.com/lalit-mendapara/fittrack/models"
	"github.com/lalit-mendapara/fittrack/services"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Test clock: a Monday morning, well clear of month boundaries.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testDate(daysFromNow int) time.Time {
	return services.DateOnly(testNow).AddDate(0, 0, daysFromNow)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fittrack.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB, adjuster services.Adjuster) *services.FeastService {
	t.Helper()
	svc := services.NewFeastService(db, adjuster, nil)
	svc.Now = func() time.Time { return testNow }
	return svc
}

// stubAdjuster lets tests script the generative collaborator.
type stubAdjuster struct {
	fn    func(items []llm.AdjustItem, direction string, magnitude float64, phase string) ([]llm.MealAdjustment, error)
	calls int
}

func (s *stubAdjuster) AdjustMeals(_ context.Context, items []llm.AdjustItem, direction string, magnitude float64, phase string) ([]llm.MealAdjustment, error) {
	s.calls++
	return s.fn(items, direction, magnitude, phase)
}

// scaleAdjuster behaves like a well-behaved generative service: it scales
// every non-protein macro toward the budget and keeps protein fixed.
func scaleAdjuster() *stubAdjuster {
	return &stubAdjuster{fn: func(items []llm.AdjustItem, direction string, magnitude float64, phase string) ([]llm.MealAdjustment, error) {
		var planned float64
		for _, it := range items {
			planned += it.Calories
		}
		delta := magnitude
		if direction == "reduce" {
			delta = -magnitude
		}
		ratio := (planned + delta) / planned
		out := make([]llm.MealAdjustment, len(items))
		for i, it := range items {
			out[i] = llm.MealAdjustment{
				MealID:       it.MealID,
				Calories:     it.Calories * ratio,
				Protein:      it.Protein,
				Carbs:        it.Carbs * ratio,
				Fat:          it.Fat * ratio,
				PortionLabel: it.PortionLabel,
				Note:         "resized to fit the day's budget",
			}
		}
		return out, nil
	}}
}

func seedProfile(t *testing.T, db *gorm.DB, userID uint, calories, protein, carbs, fat float64) {
	t.Helper()
	profile := models.NutritionProfile{
		UserID:        userID,
		DailyCalories: calories,
		DailyProtein:  protein,
		DailyCarbs:    carbs,
		DailyFat:      fat,
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func seedPlanItem(t *testing.T, db *gorm.DB, userID uint, date time.Time, mealID, label, portion string, calories, protein, carbs, fat float64, snack bool) {
	t.Helper()
	item := models.MealPlanItem{
		UserID:       userID,
		PlanDate:     services.DateOnly(date),
		MealID:       mealID,
		Label:        label,
		PortionLabel: portion,
		Calories:     calories,
		Protein:      protein,
		Carbs:        carbs,
		Fat:          fat,
		IsSnack:      snack,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed plan item: %v", err)
	}
}

func intPtr(v int) *int { return &v }
