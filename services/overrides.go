package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/lalit-mendapara/fittrack/llm"
	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/metrics"
	"github.com/lalit-mendapara/fittrack/models"
	"gorm.io/gorm/clause"
)

const (
	// Budget drift below this is ignored; regenerating overrides for a
	// handful of kcal just churns the plan.
	deadBandKcal = 20.0

	// Hard safety bounds on the deterministic rescale.
	minRatio = 0.5
	maxRatio = 2.0

	// Protein may drift at most this fraction of its original value.
	proteinTolerance = 0.05
)

// GenerateOverrides recomputes today's per-meal overrides for a campaign:
// it measures the gap between the day's effective budget and what is still
// planned, asks the generative service to requantify the remaining meals,
// and falls back to deterministic ratio scaling when that call fails or
// breaks its contract. Results are upserted per (config, date, meal), so
// repeated generation is idempotent.
func (s *FeastService) GenerateOverrides(ctx context.Context, cfg *models.BankingConfig, date time.Time) error {
	day := DateOnly(date)

	var items []models.MealPlanItem
	if err := s.db.Where("user_id = ? AND plan_date = ? AND consumed = ?", cfg.UserID, day, false).
		Order("id").Find(&items).Error; err != nil {
		return &PersistenceError{Op: "load plan items", Err: err}
	}
	if len(items) == 0 {
		logger.Debug("No remaining meals to adjust", "user_id", cfg.UserID, "date", day.Format(time.DateOnly))
		metrics.AdjustmentRuns.WithLabelValues("skipped").Inc()
		return nil
	}

	effective := EffectiveTargets(cfg, day)
	consumed, err := s.consumedCalories(cfg.UserID, day)
	if err != nil {
		return &PersistenceError{Op: "sum consumed calories", Err: err}
	}
	remaining := effective.Calories - consumed

	var planned float64
	for _, it := range items {
		planned += it.Calories
	}

	delta := remaining - planned
	if math.Abs(delta) < deadBandKcal {
		logger.Debug("Within dead band, leaving plan untouched", "user_id", cfg.UserID, "delta", delta)
		metrics.AdjustmentRuns.WithLabelValues("skipped").Inc()
		return nil
	}

	direction := "increase"
	if delta < 0 {
		direction = "reduce"
	}
	phase := "banking"
	if day.Equal(DateOnly(cfg.EventDate)) {
		phase = "feast"
	}

	overrides, method := s.buildOverrides(ctx, cfg, day, items, remaining, delta, direction, phase)
	if len(overrides) == 0 {
		metrics.AdjustmentRuns.WithLabelValues("skipped").Inc()
		return nil
	}

	for i := range overrides {
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "config_id"}, {Name: "override_date"}, {Name: "meal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"calories", "protein", "carbs", "fat",
				"portion_label", "adjustment_note", "adjustment_method", "updated_at",
			}),
		}).Create(&overrides[i]).Error
		if err != nil {
			return &PersistenceError{Op: "upsert override", Err: err}
		}
	}

	metrics.AdjustmentRuns.WithLabelValues(method).Inc()
	logger.Info("Meal overrides generated",
		"user_id", cfg.UserID, "config_id", cfg.ID, "date", day.Format(time.DateOnly),
		"method", method, "delta", delta, "meals", len(overrides))
	return nil
}

// buildOverrides tries the generative path once, then degrades to the ratio
// fallback. The fallback is total: it always yields a bounded result.
func (s *FeastService) buildOverrides(ctx context.Context, cfg *models.BankingConfig, day time.Time, items []models.MealPlanItem, remaining, delta float64, direction, phase string) ([]models.MealOverride, string) {
	if s.adjuster != nil {
		overrides, err := s.generativeOverrides(ctx, cfg, day, items, delta, direction, phase)
		if err == nil {
			return overrides, models.MethodGenerative
		}
		logger.Warn("Generative adjustment unavailable, using ratio fallback",
			"user_id", cfg.UserID, "config_id", cfg.ID, "error", err)
	}
	return ratioOverrides(cfg, day, items, remaining, direction), models.MethodRatio
}

func (s *FeastService) generativeOverrides(ctx context.Context, cfg *models.BankingConfig, day time.Time, items []models.MealPlanItem, delta float64, direction, phase string) ([]models.MealOverride, error) {
	adjItems := make([]llm.AdjustItem, len(items))
	for i, it := range items {
		adjItems[i] = llm.AdjustItem{
			MealID:       it.MealID,
			Label:        it.Label,
			PortionLabel: it.PortionLabel,
			Calories:     it.Calories,
			Protein:      it.Protein,
			Carbs:        it.Carbs,
			Fat:          it.Fat,
			IsSnack:      it.IsSnack,
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.AdjustTimeout)
	defer cancel()

	s.Tracer.Start(cfg.UserID, len(items), direction, math.Abs(delta))
	start := time.Now()
	adjustments, err := s.adjuster.AdjustMeals(callCtx, adjItems, direction, math.Abs(delta), phase)
	elapsed := time.Since(start)
	metrics.GenerativeLatency.Observe(elapsed.Seconds())
	s.Tracer.End(cfg.UserID, models.MethodGenerative, elapsed, err)

	if err != nil {
		metrics.GenerativeFailures.WithLabelValues("error").Inc()
		return nil, &UpstreamServiceError{Service: "generative adjustment", Err: err}
	}
	if err := validateAdjustments(items, adjustments); err != nil {
		metrics.GenerativeFailures.WithLabelValues("contract").Inc()
		return nil, &UpstreamServiceError{Service: "generative adjustment", Err: err}
	}

	byMeal := make(map[string]llm.MealAdjustment, len(adjustments))
	for _, a := range adjustments {
		byMeal[a.MealID] = a
	}

	overrides := make([]models.MealOverride, 0, len(items))
	for _, it := range items {
		a := byMeal[it.MealID]
		overrides = append(overrides, models.MealOverride{
			ConfigID:         cfg.ID,
			UserID:           cfg.UserID,
			OverrideDate:     day,
			MealID:           it.MealID,
			Calories:         a.Calories,
			Protein:          a.Protein,
			Carbs:            a.Carbs,
			Fat:              a.Fat,
			PortionLabel:     a.PortionLabel,
			AdjustmentNote:   a.Note,
			AdjustmentMethod: models.MethodGenerative,
		})
	}
	return overrides, nil
}

// validateAdjustments enforces the generative contract: one adjustment per
// input item, positive calories, and protein within 5% of its original
// value. Any violation sends the whole run to the fallback.
func validateAdjustments(items []models.MealPlanItem, adjustments []llm.MealAdjustment) error {
	if len(adjustments) != len(items) {
		return fmt.Errorf("expected %d adjustments, got %d", len(items), len(adjustments))
	}
	byMeal := make(map[string]llm.MealAdjustment, len(adjustments))
	for _, a := range adjustments {
		if _, dup := byMeal[a.MealID]; dup {
			return fmt.Errorf("duplicate adjustment for meal %q", a.MealID)
		}
		byMeal[a.MealID] = a
	}
	for _, it := range items {
		a, ok := byMeal[it.MealID]
		if !ok {
			return fmt.Errorf("missing adjustment for meal %q", it.MealID)
		}
		if a.Calories <= 0 {
			return fmt.Errorf("non-positive calories for meal %q", it.MealID)
		}
		tolerance := proteinTolerance * it.Protein
		if tolerance < 1 {
			tolerance = 1 // grams; zero-protein items get a small absolute allowance
		}
		if math.Abs(a.Protein-it.Protein) > tolerance {
			return fmt.Errorf("protein moved beyond tolerance for meal %q: %.1f -> %.1f", it.MealID, it.Protein, a.Protein)
		}
	}
	return nil
}

// ratioOverrides is the deterministic fallback: scale every remaining item
// by remaining/planned, clamped to [0.5, 2.0], and rewrite the numeric
// quantities inside each portion label by the same factor.
func ratioOverrides(cfg *models.BankingConfig, day time.Time, items []models.MealPlanItem, remaining float64, direction string) []models.MealOverride {
	var planned float64
	for _, it := range items {
		planned += it.Calories
	}
	if planned <= 0 {
		return nil
	}

	ratio := remaining / planned
	if ratio < minRatio {
		ratio = minRatio
	} else if ratio > maxRatio {
		ratio = maxRatio
	}

	note := fmt.Sprintf("Portion scaled to %.2fx to %s today's remaining budget", ratio, direction)

	overrides := make([]models.MealOverride, 0, len(items))
	for _, it := range items {
		overrides = append(overrides, models.MealOverride{
			ConfigID:         cfg.ID,
			UserID:           cfg.UserID,
			OverrideDate:     day,
			MealID:           it.MealID,
			Calories:         math.Round(it.Calories * ratio),
			Protein:          math.Round(it.Protein*ratio*10) / 10,
			Carbs:            math.Round(it.Carbs*ratio*10) / 10,
			Fat:              math.Round(it.Fat*ratio*10) / 10,
			PortionLabel:     ScalePortionLabel(it.PortionLabel, ratio),
			AdjustmentNote:   note,
			AdjustmentMethod: models.MethodRatio,
		})
	}
	return overrides
}

var quantityPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ScalePortionLabel multiplies every numeric quantity token in a portion
// label by ratio. "2 rotis + 150g dal" at 0.5 becomes "1 rotis + 75g dal".
// This is a textual rewrite, not a structural reparse.
func ScalePortionLabel(label string, ratio float64) string {
	return quantityPattern.ReplaceAllStringFunc(label, func(tok string) string {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return tok
		}
		scaled := v * ratio
		if scaled == math.Trunc(scaled) {
			return strconv.FormatFloat(scaled, 'f', 0, 64)
		}
		return strconv.FormatFloat(math.Round(scaled*10)/10, 'f', -1, 64)
	})
}

// consumedCalories sums what was already logged as eaten on a date.
func (s *FeastService) consumedCalories(userID uint, day time.Time) (float64, error) {
	start := DateOnly(day)
	end := start.Add(24 * time.Hour)

	var logs []models.MealLog
	if err := s.db.Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Find(&logs).Error; err != nil {
		return 0, err
	}
	var total float64
	for _, l := range logs {
		total += l.Calories
	}
	return total, nil
}

// GetOverrides returns the overrides in force for a user on a date, keyed by
// meal slot. No campaign, or no rows for that exact date, yields an empty
// map; stale rows from other dates can never leak in.
func (s *FeastService) GetOverrides(userID uint, date time.Time) (map[string]models.MealOverride, error) {
	result := make(map[string]models.MealOverride)

	cfg, err := s.GetActiveConfig(userID, date)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return result, nil
	}

	var rows []models.MealOverride
	if err := s.db.Where("config_id = ? AND override_date = ?", cfg.ID, DateOnly(date)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.MealID] = row
	}
	return result, nil
}
