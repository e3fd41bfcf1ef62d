package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/models"
	"gorm.io/gorm"
)

// CancelResult is what Cancel returns. Cancelling with no active campaign is
// a no-op, not an error.
type CancelResult struct {
	Message string `json:"message"`
}

// UpdateResult reports a mid-campaign strategy change.
type UpdateResult struct {
	Message string                `json:"message"`
	Config  *models.BankingConfig `json:"config"`
}

// Status is a read projection of the active campaign for a date.
type Status struct {
	Config           *models.BankingConfig `json:"config"`
	Phase            string                `json:"phase"`
	DaysRemaining    int                   `json:"days_remaining"`
	EffectiveTargets Targets               `json:"effective_targets"`
}

// Activate starts a banking campaign from a proposal. Any prior active
// campaign is superseded in the same transaction, so a reader never observes
// zero or two active configs. The user's current targets are frozen into the
// new config, and today's overrides are generated immediately after the
// write commits.
func (s *FeastService) Activate(ctx context.Context, userID uint, eventDate time.Time, eventName string, customDeduction *int, workoutBoost bool) (*models.BankingConfig, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	// Recompute rather than trust a client-supplied schedule; this also
	// re-validates the event window at activation time.
	proposal, err := s.Propose(userID, eventDate, eventName, customDeduction)
	if err != nil {
		return nil, err
	}

	base := s.baseTargets(userID)

	cfg := models.BankingConfig{
		UserID:                userID,
		EventName:             proposal.EventName,
		EventDate:             proposal.EventDate,
		StartDate:             proposal.StartDate,
		DailyDeduction:        proposal.DailyDeduction,
		TargetBankAmount:      proposal.TotalBank,
		UserSelectedDeduction: customDeduction,
		BaseCalories:          base.Calories,
		BaseProtein:           base.Protein,
		BaseCarbs:             base.Carbs,
		BaseFat:               base.Fat,
		Status:                models.StatusBanking,
		IsActive:              true,
		WorkoutBoostEnabled:   workoutBoost,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.BankingConfig{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Updates(map[string]any{"is_active": false, "status": models.StatusCancelled}).Error; err != nil {
			return err
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return nil, &PersistenceError{Op: "activate banking config", Err: err}
	}

	logger.Info("Banking campaign activated",
		"user_id", userID, "config_id", cfg.ID, "event", cfg.EventName,
		"event_date", cfg.EventDate.Format(time.DateOnly),
		"deduction", cfg.DailyDeduction, "total_bank", cfg.TargetBankAmount)

	if err := s.GenerateOverrides(ctx, &cfg, s.Now()); err != nil {
		// Overrides are a best-effort projection; the campaign itself is live.
		logger.Warn("Failed to generate overrides on activation", "user_id", userID, "error", err)
	}

	if workoutBoost {
		if err := s.planner.PatchEventDay(userID, cfg.EventDate); err != nil {
			logger.Warn("Workout boost patch failed", "user_id", userID, "error", err)
		}
	}

	return &cfg, nil
}

// Cancel deactivates the user's active campaign. Existing override rows are
// kept; today's plan reverts because reads recompute against the base
// target, not because rows are purged.
func (s *FeastService) Cancel(userID uint) (*CancelResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	cfg, err := s.GetActiveConfig(userID, s.Now())
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &CancelResult{Message: "no active config"}, nil
	}

	err = s.db.Model(cfg).
		Updates(map[string]any{"is_active": false, "status": models.StatusCancelled}).Error
	if err != nil {
		return nil, &PersistenceError{Op: "cancel banking config", Err: err}
	}

	if cfg.WorkoutBoostEnabled {
		if err := s.planner.RestoreEventDay(userID, cfg.EventDate); err != nil {
			logger.Warn("Workout restore failed, continuing", "user_id", userID, "error", err)
		}
	}

	logger.Info("Banking campaign cancelled", "user_id", userID, "config_id", cfg.ID, "event", cfg.EventName)
	return &CancelResult{Message: fmt.Sprintf("cancelled banking for %q", cfg.EventName)}, nil
}

// Update changes the banking strategy mid-campaign. A deduction change is
// rejected on or after the event day; when accepted, today's overrides are
// dropped and regenerated against the new effective target. A workout-boost
// change only toggles the flag.
func (s *FeastService) Update(ctx context.Context, userID uint, newDeduction *int, workoutBoost *bool) (*UpdateResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	today := DateOnly(s.Now())

	cfg, err := s.GetActiveConfig(userID, today)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &NotFoundError{Msg: "no active banking config"}
	}

	if newDeduction != nil {
		days := daysBetween(today, cfg.EventDate)
		if days <= 0 {
			return nil, &InvalidStateError{Msg: "cannot change deduction on or after the event day"}
		}
		if *newDeduction <= 0 {
			return nil, &ValidationError{Msg: "deduction must be positive"}
		}
		d := *newDeduction
		if d > maxDailyDeduction {
			d = maxDailyDeduction
		}
		cfg.DailyDeduction = roundToStep(d)
		cfg.TargetBankAmount = cfg.DailyDeduction * days
		cfg.UserSelectedDeduction = newDeduction
	}
	if workoutBoost != nil {
		cfg.WorkoutBoostEnabled = *workoutBoost
	}

	if err := s.db.Save(cfg).Error; err != nil {
		return nil, &PersistenceError{Op: "update banking config", Err: err}
	}

	if newDeduction != nil {
		if err := s.db.Where("config_id = ? AND override_date = ?", cfg.ID, today).
			Delete(&models.MealOverride{}).Error; err != nil {
			return nil, &PersistenceError{Op: "clear today's overrides", Err: err}
		}
		if err := s.GenerateOverrides(ctx, cfg, today); err != nil {
			logger.Warn("Failed to regenerate overrides after update", "user_id", userID, "error", err)
		}
	}

	logger.Info("Banking campaign updated",
		"user_id", userID, "config_id", cfg.ID,
		"deduction", cfg.DailyDeduction, "total_bank", cfg.TargetBankAmount,
		"workout_boost", cfg.WorkoutBoostEnabled)

	return &UpdateResult{Message: "banking config updated", Config: cfg}, nil
}

// GetStatus projects the active campaign for a date: phase, days remaining,
// and the day's effective targets. Returns nil when no campaign is active.
func (s *FeastService) GetStatus(userID uint, date time.Time) (*Status, error) {
	cfg, err := s.GetActiveConfig(userID, date)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	return &Status{
		Config:           cfg,
		Phase:            Phase(cfg, date),
		DaysRemaining:    daysBetween(date, cfg.EventDate),
		EffectiveTargets: EffectiveTargets(cfg, date),
	}, nil
}
