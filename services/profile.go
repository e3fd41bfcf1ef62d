package services

import (
	"math"
	"strings"

	"github.com/lalit-mendapara/fittrack/models"
)

var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// DeriveTargets computes daily targets from a profile's inputs
// (Mifflin-St Jeor BMR, activity multiplier, goal offset). Controllers call
// it synchronously before persisting any profile change; there are no
// storage-layer hooks recomputing targets behind the scenes. Profiles with
// incomplete inputs get the stock defaults.
func DeriveTargets(p *models.NutritionProfile) Targets {
	if p.WeightKg <= 0 || p.HeightCm <= 0 || p.Age <= 0 {
		return defaultTargets
	}

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if strings.EqualFold(p.Sex, "female") {
		bmr -= 161
	} else {
		bmr += 5
	}

	factor, ok := activityFactors[strings.ToLower(p.ActivityLevel)]
	if !ok {
		factor = activityFactors["sedentary"]
	}
	calories := bmr * factor

	switch strings.ToLower(p.GoalType) {
	case "cut":
		calories -= 400
	case "bulk":
		calories += 300
	}

	protein := 1.8 * p.WeightKg
	fat := calories * 0.25 / 9
	carbs := (calories - protein*4 - fat*9) / 4
	if carbs < 0 {
		carbs = 0
	}

	return Targets{
		Calories: math.Round(calories),
		Protein:  math.Round(protein),
		Carbs:    math.Round(carbs),
		Fat:      math.Round(fat),
	}
}
