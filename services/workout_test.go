package services_test

import (
	"testing"

	"github.com/lalit-mendapara/fittrack/models"
	"github.com/lalit-mendapara/fittrack/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchEventDayIsIdempotent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	store := services.NewWorkoutStore(db)

	require.NoError(t, store.PatchEventDay(3, testDate(2)))
	require.NoError(t, store.PatchEventDay(3, testDate(2)))

	var days []models.WorkoutDay
	require.NoError(t, db.Where("user_id = ?", 3).Find(&days).Error)
	require.Len(t, days, 1)
	assert.True(t, days[0].Compensatory)

	var snaps int64
	require.NoError(t, db.Model(&models.WorkoutSnapshot{}).Where("user_id = ?", 3).Count(&snaps).Error)
	assert.Zero(t, snaps, "no original session, nothing to snapshot")
}

func TestRestoreEventDayWithoutHistoryIsNoOp(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	store := services.NewWorkoutStore(db)

	require.NoError(t, store.RestoreEventDay(3, testDate(2)))
}

func TestPatchThenRestoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	store := services.NewWorkoutStore(db)

	require.NoError(t, db.Create(&models.WorkoutDay{
		UserID: 3, Date: testDate(2), Focus: "Leg day", DurationMin: 50,
	}).Error)

	require.NoError(t, store.PatchEventDay(3, testDate(2)))
	require.NoError(t, store.RestoreEventDay(3, testDate(2)))

	var day models.WorkoutDay
	require.NoError(t, db.Where("user_id = ? AND date = ?", 3, testDate(2)).First(&day).Error)
	assert.Equal(t, "Leg day", day.Focus)
	assert.Equal(t, 50, day.DurationMin)
	assert.False(t, day.Compensatory)
}
