package services_test

import (
	"testing"

	"github.com/lalit-mendapara/fittrack/models"
	"github.com/lalit-mendapara/fittrack/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankingConfig(deduction, bank int) *models.BankingConfig {
	return &models.BankingConfig{
		UserID:           1,
		EventName:        "feast",
		StartDate:        testDate(0),
		EventDate:        testDate(5),
		DailyDeduction:   deduction,
		TargetBankAmount: bank,
		BaseCalories:     2000,
		BaseProtein:      150,
		BaseCarbs:        200,
		BaseFat:          60,
		Status:           models.StatusBanking,
		IsActive:         true,
	}
}

func TestEffectiveTargetsBankingPhase(t *testing.T) {
	t.Parallel()
	cfg := bankingConfig(200, 1000)

	got := services.EffectiveTargets(cfg, testDate(2))

	assert.Equal(t, 1800.0, got.Calories)
	assert.Equal(t, 150.0, got.Protein, "protein is the protected macro")
	assert.InDelta(t, 200-200*0.6/4, got.Carbs, 0.001)
	assert.InDelta(t, 60-200*0.4/9, got.Fat, 0.001)
	assert.Less(t, got.Calories, cfg.BaseCalories)
}

func TestEffectiveTargetsFeastDay(t *testing.T) {
	t.Parallel()
	cfg := bankingConfig(200, 1000)

	got := services.EffectiveTargets(cfg, testDate(5))

	assert.Equal(t, 3000.0, got.Calories)
	assert.Equal(t, 150.0, got.Protein)
	assert.InDelta(t, 200+1000*0.5/4, got.Carbs, 0.001)
	assert.InDelta(t, 60+1000*0.5/9, got.Fat, 0.001)
	assert.Greater(t, got.Calories, cfg.BaseCalories)
}

func TestEffectiveTargetsOutsideWindow(t *testing.T) {
	t.Parallel()
	cfg := bankingConfig(200, 1000)
	base := services.Targets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 60}

	assert.Equal(t, base, services.EffectiveTargets(cfg, testDate(-1)), "before start")
	assert.Equal(t, base, services.EffectiveTargets(cfg, testDate(6)), "after event")
}

func TestPhaseResolution(t *testing.T) {
	t.Parallel()
	cfg := bankingConfig(200, 1000)

	assert.Equal(t, models.StatusBanking, services.Phase(cfg, testDate(2)))
	assert.Equal(t, models.StatusFeastDay, services.Phase(cfg, testDate(5)))
	assert.Equal(t, models.StatusCompleted, services.Phase(cfg, testDate(6)))

	cfg.IsActive = false
	cfg.Status = models.StatusCancelled
	assert.Equal(t, models.StatusCancelled, services.Phase(cfg, testDate(2)))
}

func TestGetEffectiveTargetsWithoutConfig(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newService(t, db, nil)

	got, err := svc.GetEffectiveTargets(42, testNow)
	require.NoError(t, err)
	assert.Equal(t, services.Targets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 60}, got)

	seedProfile(t, db, 42, 2300, 160, 240, 65)
	got, err = svc.GetEffectiveTargets(42, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2300.0, got.Calories)
}

func TestGetActiveConfigFiltersExpired(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := newService(t, db, nil)

	cfg := bankingConfig(200, 1000)
	cfg.EventDate = testDate(-1) // event already passed, status never swept
	require.NoError(t, db.Create(cfg).Error)

	got, err := svc.GetActiveConfig(1, testNow)
	require.NoError(t, err)
	assert.Nil(t, got, "expired configs are invisible to reads regardless of status")
}
