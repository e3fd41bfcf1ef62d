package services

import (
	"time"

	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/models"
	"gorm.io/gorm"
)

// WorkoutStore is the gorm-backed WorkoutPlanner. PatchEventDay snapshots
// the existing session before replacing it; RestoreEventDay puts the most
// recent snapshot back, or skips quietly when there is none.
type WorkoutStore struct {
	db *gorm.DB
}

func NewWorkoutStore(db *gorm.DB) *WorkoutStore {
	return &WorkoutStore{db: db}
}

// PatchEventDay injects a compensatory session on the event date. Calling it
// twice for the same day is safe: an already-compensatory session is left
// alone.
func (w *WorkoutStore) PatchEventDay(userID uint, date time.Time) error {
	day := DateOnly(date)

	var existing models.WorkoutDay
	err := w.db.Where("user_id = ? AND date = ?", userID, day).First(&existing).Error
	if err == nil {
		if existing.Compensatory {
			return nil
		}
		snapshot := models.WorkoutSnapshot{
			UserID:      userID,
			Date:        day,
			Focus:       existing.Focus,
			DurationMin: existing.DurationMin,
			TakenAt:     time.Now(),
		}
		if err := w.db.Create(&snapshot).Error; err != nil {
			return err
		}
		existing.Focus = "Full-body conditioning"
		existing.DurationMin = 60
		existing.Compensatory = true
		return w.db.Save(&existing).Error
	}
	if !isNotFound(err) {
		return err
	}

	return w.db.Create(&models.WorkoutDay{
		UserID:       userID,
		Date:         day,
		Focus:        "Full-body conditioning",
		DurationMin:  60,
		Compensatory: true,
	}).Error
}

// RestoreEventDay reverts the event day to its most recent snapshot. Absent
// history is logged and skipped, never a failure.
func (w *WorkoutStore) RestoreEventDay(userID uint, date time.Time) error {
	day := DateOnly(date)

	var snap models.WorkoutSnapshot
	err := w.db.Where("user_id = ? AND date = ?", userID, day).
		Order("taken_at desc").First(&snap).Error
	if isNotFound(err) {
		logger.Info("No workout snapshot to restore, skipping", "user_id", userID, "date", day.Format(time.DateOnly))
		return nil
	}
	if err != nil {
		return err
	}

	var existing models.WorkoutDay
	err = w.db.Where("user_id = ? AND date = ?", userID, day).First(&existing).Error
	if isNotFound(err) {
		return w.db.Create(&models.WorkoutDay{
			UserID:      userID,
			Date:        day,
			Focus:       snap.Focus,
			DurationMin: snap.DurationMin,
		}).Error
	}
	if err != nil {
		return err
	}

	existing.Focus = snap.Focus
	existing.DurationMin = snap.DurationMin
	existing.Compensatory = false
	return w.db.Save(&existing).Error
}
