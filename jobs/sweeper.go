package jobs

import (
	"sync"
	"time"

	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/metrics"
	"github.com/lalit-mendapara/fittrack/models"
	"github.com/lalit-mendapara/fittrack/services"
	"gorm.io/gorm"
)

// ExpirySweeper closes out banking campaigns whose event date has passed.
// Reads never trust the stored status, so the sweep is purely housekeeping:
// it keeps the audit trail honest and stops expired rows accumulating as
// is_active.
type ExpirySweeper struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
}

var (
	sweeper     *ExpirySweeper
	sweeperOnce sync.Once
)

// StartSweeper launches the singleton background sweeper.
func StartSweeper(db *gorm.DB) *ExpirySweeper {
	sweeperOnce.Do(func() {
		sweeper = &ExpirySweeper{
			db:       db,
			interval: time.Hour,
			stop:     make(chan struct{}),
		}
		go sweeper.run()
		logger.Info("Expiry sweeper started", "interval", sweeper.interval)
	})
	return sweeper
}

func (s *ExpirySweeper) run() {
	// Sweep once at startup, then on the ticker.
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Stop terminates the sweep loop.
func (s *ExpirySweeper) Stop() {
	close(s.stop)
}

// Sweep marks every active config with a past event date as COMPLETED.
func (s *ExpirySweeper) Sweep() {
	count, err := SweepExpired(s.db, time.Now())
	if err != nil {
		logger.Error("Expiry sweep failed", "error", err)
		return
	}
	if count > 0 {
		metrics.SweeperCompleted.Add(float64(count))
		logger.Info("Expired campaigns completed", "count", count)
	}
}

// SweepExpired closes active configs whose event date lies before now's
// calendar date. Returns how many rows were closed.
func SweepExpired(db *gorm.DB, now time.Time) (int64, error) {
	today := services.DateOnly(now)

	result := db.Model(&models.BankingConfig{}).
		Where("is_active = ? AND event_date < ?", true, today).
		Updates(map[string]any{"is_active": false, "status": models.StatusCompleted})
	return result.RowsAffected, result.Error
}
