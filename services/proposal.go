package services

import (
	"fmt"
	"math"
	"time"
)

const (
	maxBankingWindowDays = 14
	maxDailyDeduction    = 500
	defaultBankTarget    = 800
	deductionStep        = 50
)

// Proposal is a computed banking schedule, previewed to the user before
// activation. Nothing is persisted at proposal time.
type Proposal struct {
	EventName             string    `json:"event_name"`
	EventDate             time.Time `json:"event_date"`
	DaysRemaining         int       `json:"days_remaining"`
	DailyDeduction        int       `json:"daily_deduction"`
	TotalBank             int       `json:"total_bank"`
	StartDate             time.Time `json:"start_date"`
	BaseCalories          float64   `json:"base_calories"`
	EffectiveCalories     float64   `json:"effective_calories"`
	UserSelectedDeduction *int      `json:"user_selected_deduction,omitempty"`
}

// Propose computes a banking schedule for an event. The event must lie
// strictly in the future and at most 14 days out. The daily deduction is
// always a multiple of 50 capped at 500, and TotalBank is exactly
// DailyDeduction * DaysRemaining.
func (s *FeastService) Propose(userID uint, eventDate time.Time, eventName string, customDeduction *int) (*Proposal, error) {
	today := DateOnly(s.Now())
	event := DateOnly(eventDate)

	days := daysBetween(today, event)
	if days <= 0 {
		return nil, &ValidationError{Msg: "event date must be in the future"}
	}
	if days > maxBankingWindowDays {
		return nil, &ValidationError{Msg: fmt.Sprintf("event date must be at most %d days out", maxBankingWindowDays)}
	}

	var deduction int
	if customDeduction != nil {
		if *customDeduction <= 0 {
			return nil, &ValidationError{Msg: "deduction must be positive"}
		}
		d := *customDeduction
		if d > maxDailyDeduction {
			d = maxDailyDeduction
		}
		deduction = roundToStep(d)
	} else {
		deduction = int(math.Round(float64(defaultBankTarget) / float64(days)))
		if deduction > maxDailyDeduction {
			deduction = maxDailyDeduction
		}
		// Round after capping so TotalBank below is always exact.
		deduction = roundToStep(deduction)
	}

	base := s.baseTargets(userID)

	return &Proposal{
		EventName:             eventName,
		EventDate:             event,
		DaysRemaining:         days,
		DailyDeduction:        deduction,
		TotalBank:             deduction * days,
		StartDate:             today,
		BaseCalories:          base.Calories,
		EffectiveCalories:     base.Calories - float64(deduction),
		UserSelectedDeduction: customDeduction,
	}, nil
}

// roundToStep rounds to the nearest multiple of 50.
func roundToStep(d int) int {
	return int(math.Round(float64(d)/deductionStep)) * deductionStep
}
