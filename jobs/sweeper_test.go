package jobs_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lalit-mendapara/fittrack/database"
	"github.com/lalit-mendapara/fittrack/jobs"
	"github.com/lalit-mendapara/fittrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

func TestSweepExpiredClosesPastCampaigns(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2026, 3, 2+offset, 0, 0, 0, 0, time.UTC)
	}

	expired := models.BankingConfig{
		UserID: 1, EventName: "old", StartDate: day(-5), EventDate: day(-1),
		DailyDeduction: 200, TargetBankAmount: 800,
		BaseCalories: 2000, BaseProtein: 150, BaseCarbs: 200, BaseFat: 60,
		Status: models.StatusBanking, IsActive: true,
	}
	current := models.BankingConfig{
		UserID: 2, EventName: "upcoming", StartDate: day(0), EventDate: day(3),
		DailyDeduction: 200, TargetBankAmount: 600,
		BaseCalories: 2000, BaseProtein: 150, BaseCarbs: 200, BaseFat: 60,
		Status: models.StatusBanking, IsActive: true,
	}
	feastToday := models.BankingConfig{
		UserID: 3, EventName: "today", StartDate: day(-3), EventDate: day(0),
		DailyDeduction: 200, TargetBankAmount: 600,
		BaseCalories: 2000, BaseProtein: 150, BaseCarbs: 200, BaseFat: 60,
		Status: models.StatusBanking, IsActive: true,
	}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&current).Error)
	require.NoError(t, db.Create(&feastToday).Error)

	count, err := jobs.SweepExpired(db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	var got models.BankingConfig
	require.NoError(t, db.First(&got, expired.ID).Error)
	assert.False(t, got.IsActive)
	assert.Equal(t, models.StatusCompleted, got.Status)

	got = models.BankingConfig{}
	require.NoError(t, db.First(&got, current.ID).Error)
	assert.True(t, got.IsActive)

	// A feast happening today is not expired yet.
	got = models.BankingConfig{}
	require.NoError(t, db.First(&got, feastToday.ID).Error)
	assert.True(t, got.IsActive)
}

func TestSweepExpiredIdempotent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cfg := models.BankingConfig{
		UserID: 1, EventName: "old", StartDate: now.AddDate(0, 0, -5), EventDate: now.AddDate(0, 0, -1),
		DailyDeduction: 200, TargetBankAmount: 800,
		BaseCalories: 2000, BaseProtein: 150, BaseCarbs: 200, BaseFat: 60,
		Status: models.StatusBanking, IsActive: true,
	}
	require.NoError(t, db.Create(&cfg).Error)

	count, err := jobs.SweepExpired(db, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = jobs.SweepExpired(db, now)
	require.NoError(t, err)
	assert.Zero(t, count)
}
