package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lalit-mendapara/fittrack/config"
	"github.com/lalit-mendapara/fittrack/llm"
	"github.com/lalit-mendapara/fittrack/models"
	"gorm.io/gorm"
)

// Targets is a daily nutrition budget in kcal and grams.
type Targets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Fallback targets for users without a nutrition profile.
var defaultTargets = Targets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 60}

// Adjuster is the generative adjustment collaborator. llm.Client satisfies it.
type Adjuster interface {
	AdjustMeals(ctx context.Context, items []llm.AdjustItem, direction string, magnitude float64, phase string) ([]llm.MealAdjustment, error)
}

// WorkoutPlanner patches the event day with a compensatory session and
// restores it on cancellation. Restoration without history is a no-op.
type WorkoutPlanner interface {
	PatchEventDay(userID uint, date time.Time) error
	RestoreEventDay(userID uint, date time.Time) error
}

// AdjustmentTracer observes the generative call. The default is a no-op;
// inject one to hook tracing in.
type AdjustmentTracer interface {
	Start(userID uint, itemCount int, direction string, magnitude float64)
	End(userID uint, method string, elapsed time.Duration, err error)
}

type noopTracer struct{}

func (noopTracer) Start(uint, int, string, float64)       {}
func (noopTracer) End(uint, string, time.Duration, error) {}

// FeastService is the calorie-banking engine: proposals, lifecycle,
// effective targets, and per-meal override generation.
type FeastService struct {
	db       *gorm.DB
	adjuster Adjuster
	planner  WorkoutPlanner

	// Injectable for tests and tracing.
	Now           func() time.Time
	Tracer        AdjustmentTracer
	AdjustTimeout time.Duration

	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
}

// NewFeastService wires the engine. adjuster and planner may be nil: a nil
// adjuster means every generation takes the ratio fallback, a nil planner
// gets the default gorm-backed workout store.
func NewFeastService(db *gorm.DB, adjuster Adjuster, planner WorkoutPlanner) *FeastService {
	if planner == nil {
		planner = NewWorkoutStore(db)
	}
	timeout, err := time.ParseDuration(config.GetEnv("ADJUST_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}
	return &FeastService{
		db:            db,
		adjuster:      adjuster,
		planner:       planner,
		Now:           time.Now,
		Tracer:        noopTracer{},
		AdjustTimeout: timeout,
		userLocks:     make(map[uint]*sync.Mutex),
	}
}

// lockUser serializes lifecycle mutations per user so the deactivate+insert
// window in Activate cannot race into two active configs.
func (s *FeastService) lockUser(userID uint) func() {
	s.mu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// baseTargets reads the user's live profile targets, falling back to the
// stock defaults when no profile exists.
func (s *FeastService) baseTargets(userID uint) Targets {
	var profile models.NutritionProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil || profile.DailyCalories <= 0 {
		return defaultTargets
	}
	return Targets{
		Calories: profile.DailyCalories,
		Protein:  profile.DailyProtein,
		Carbs:    profile.DailyCarbs,
		Fat:      profile.DailyFat,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
