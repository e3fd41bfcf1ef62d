package services

import (
	"time"

	"github.com/lalit-mendapara/fittrack/models"
)

// Macro energy split applied to a banked deduction: 60% of the withheld kcal
// come out of carbs (4 kcal/g), 40% out of fat (9 kcal/g). Protein is the
// protected macro and is never touched. On the feast day the credited bank
// splits 50/50 between carbs and fat.
const (
	bankCarbShare  = 0.6
	bankFatShare   = 0.4
	feastCarbShare = 0.5
	feastFatShare  = 0.5
	kcalPerGCarb   = 4.0
	kcalPerGFat    = 9.0
)

// GetActiveConfig returns the user's active campaign whose event has not yet
// passed relative to date, or nil when there is none. Expired rows are
// filtered here regardless of their stored status.
func (s *FeastService) GetActiveConfig(userID uint, date time.Time) (*models.BankingConfig, error) {
	day := DateOnly(date)
	var cfg models.BankingConfig
	err := s.db.Where("user_id = ? AND is_active = ? AND event_date >= ?", userID, true, day).
		Order("created_at desc").First(&cfg).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetEffectiveTargets projects the day's adjusted nutrition budget. Pure
// read: no status mutation happens here, even for expired configs.
func (s *FeastService) GetEffectiveTargets(userID uint, date time.Time) (Targets, error) {
	cfg, err := s.GetActiveConfig(userID, date)
	if err != nil {
		return Targets{}, err
	}
	if cfg == nil {
		return s.baseTargets(userID), nil
	}
	return EffectiveTargets(cfg, date), nil
}

// EffectiveTargets applies a config's banking or feast adjustment to its
// frozen base snapshot for a calendar date. Outside [StartDate, EventDate]
// the base comes back unchanged.
func EffectiveTargets(cfg *models.BankingConfig, date time.Time) Targets {
	base := Targets{
		Calories: cfg.BaseCalories,
		Protein:  cfg.BaseProtein,
		Carbs:    cfg.BaseCarbs,
		Fat:      cfg.BaseFat,
	}

	day := DateOnly(date)
	start := DateOnly(cfg.StartDate)
	event := DateOnly(cfg.EventDate)

	switch {
	case day.Before(start) || day.After(event):
		return base
	case day.Before(event):
		d := float64(cfg.DailyDeduction)
		base.Calories -= d
		base.Carbs -= d * bankCarbShare / kcalPerGCarb
		base.Fat -= d * bankFatShare / kcalPerGFat
	default:
		b := float64(cfg.TargetBankAmount)
		base.Calories += b
		base.Carbs += b * feastCarbShare / kcalPerGCarb
		base.Fat += b * feastFatShare / kcalPerGFat
	}
	return base
}

// Phase resolves a config's lifecycle phase for a date. Stored status is an
// audit trail only; this is the source of truth for "where is the campaign."
func Phase(cfg *models.BankingConfig, date time.Time) string {
	day := DateOnly(date)
	event := DateOnly(cfg.EventDate)
	switch {
	case !cfg.IsActive:
		return cfg.Status
	case day.Before(event):
		return models.StatusBanking
	case day.Equal(event):
		return models.StatusFeastDay
	default:
		return models.StatusCompleted
	}
}
