package models

import (
	"time"

	"gorm.io/gorm"
)

// BankingConfig status values. Status is an audit trail; the current phase is
// always resolved from dates at read time.
const (
	StatusBanking   = "BANKING"
	StatusFeastDay  = "FEAST_DAY"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Adjustment methods recorded on MealOverride rows.
const (
	MethodGenerative = "generative"
	MethodRatio      = "ratio"
)

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NutritionProfile holds a user's live daily targets plus the inputs they are
// derived from. Targets are recomputed by services.DeriveTargets before every
// profile write; nothing recalculates them behind the store's back.
type NutritionProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`

	WeightKg      float64 `gorm:"default:0" json:"weight_kg"`
	HeightCm      float64 `gorm:"default:0" json:"height_cm"`
	Age           int     `gorm:"default:0" json:"age"`
	Sex           string  `gorm:"size:10" json:"sex"`
	ActivityLevel string  `gorm:"size:20" json:"activity_level"` // sedentary, light, moderate, active
	GoalType      string  `gorm:"size:20" json:"goal_type"`      // cut, maintain, bulk

	DailyCalories float64 `gorm:"default:0" json:"daily_calories"`
	DailyProtein  float64 `gorm:"default:0" json:"daily_protein"`
	DailyCarbs    float64 `gorm:"default:0" json:"daily_carbs"`
	DailyFat      float64 `gorm:"default:0" json:"daily_fat"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BankingConfig is one calorie-banking campaign: a daily deduction withheld
// during [StartDate, EventDate) and credited back in full on EventDate.
// At most one active config with a future event exists per user.
type BankingConfig struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	EventName string    `gorm:"size:255;not null" json:"event_name"`
	EventDate time.Time `gorm:"not null;index" json:"event_date"`
	StartDate time.Time `gorm:"not null" json:"start_date"`

	DailyDeduction        int  `gorm:"not null" json:"daily_deduction"` // kcal/day, multiple of 50, <= 500
	TargetBankAmount      int  `gorm:"not null" json:"target_bank_amount"`
	UserSelectedDeduction *int `json:"user_selected_deduction,omitempty"`

	// Frozen copy of the user's targets at activation time. Profile edits
	// mid-campaign must not distort an in-progress bank.
	BaseCalories float64 `gorm:"not null" json:"base_calories"`
	BaseProtein  float64 `gorm:"not null" json:"base_protein"`
	BaseCarbs    float64 `gorm:"not null" json:"base_carbs"`
	BaseFat      float64 `gorm:"not null" json:"base_fat"`

	Status   string `gorm:"size:20;not null;default:'BANKING'" json:"status"`
	IsActive bool   `gorm:"not null;default:true;index" json:"is_active"`

	WorkoutBoostEnabled bool `gorm:"default:false" json:"workout_boost_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Overrides []MealOverride `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE" json:"overrides,omitempty"`
}

// MealOverride is a per-meal, per-date replacement of planned macros and
// portion, generated so the day's plan matches the effective target.
// (ConfigID, OverrideDate, MealID) is unique: regeneration replaces, never
// duplicates.
type MealOverride struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ConfigID uint `gorm:"not null;uniqueIndex:idx_cfg_date_meal" json:"config_id"`
	UserID   uint `gorm:"not null;index" json:"user_id"`

	OverrideDate time.Time `gorm:"not null;uniqueIndex:idx_cfg_date_meal" json:"override_date"`
	MealID       string    `gorm:"size:50;not null;uniqueIndex:idx_cfg_date_meal" json:"meal_id"`

	Calories     float64 `gorm:"not null" json:"calories"`
	Protein      float64 `gorm:"not null" json:"protein"`
	Carbs        float64 `gorm:"not null" json:"carbs"`
	Fat          float64 `gorm:"not null" json:"fat"`
	PortionLabel string  `gorm:"size:255" json:"portion_label"`

	AdjustmentNote   string `gorm:"type:text" json:"adjustment_note"`
	AdjustmentMethod string `gorm:"size:20;not null" json:"adjustment_method"` // generative or ratio

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MealPlanItem is one planned slot of a user's day (breakfast, lunch, ...).
type MealPlanItem struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_user_date_meal" json:"user_id"`

	PlanDate time.Time `gorm:"not null;uniqueIndex:idx_user_date_meal" json:"plan_date"`
	MealID   string    `gorm:"size:50;not null;uniqueIndex:idx_user_date_meal" json:"meal_id"`

	Label        string  `gorm:"size:255;not null" json:"label"`
	PortionLabel string  `gorm:"size:255" json:"portion_label"`
	Calories     float64 `gorm:"not null" json:"calories"`
	Protein      float64 `gorm:"not null" json:"protein"`
	Carbs        float64 `gorm:"not null" json:"carbs"`
	Fat          float64 `gorm:"not null" json:"fat"`
	IsSnack      bool    `gorm:"default:false" json:"is_snack"`

	Consumed bool `gorm:"default:false" json:"consumed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MealLog records what was actually eaten.
type MealLog struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	MealID   string    `gorm:"size:50" json:"meal_id"`
	Name     string    `gorm:"size:255" json:"name"`
	Calories float64   `gorm:"default:0" json:"calories"`
	Protein  float64   `gorm:"default:0" json:"protein"`
	Carbs    float64   `gorm:"default:0" json:"carbs"`
	Fat      float64   `gorm:"default:0" json:"fat"`
	LoggedAt time.Time `gorm:"index" json:"logged_at"`
}

// WorkoutDay is the planned session for a user on a given date.
type WorkoutDay struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_workout_date" json:"user_id"`
	Date        time.Time `gorm:"not null;uniqueIndex:idx_user_workout_date" json:"date"`
	Focus       string    `gorm:"size:255" json:"focus"`
	DurationMin int       `gorm:"default:0" json:"duration_min"`

	// Set when the session was injected to compensate a feast day.
	Compensatory bool `gorm:"default:false" json:"compensatory"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkoutSnapshot preserves a day's original session before it is patched,
// so cancellation can restore it best-effort.
type WorkoutSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Focus       string    `gorm:"size:255" json:"focus"`
	DurationMin int       `gorm:"default:0" json:"duration_min"`
	TakenAt     time.Time `json:"taken_at"`
}
