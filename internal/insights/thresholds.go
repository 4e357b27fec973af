package insights

import "github.com/AnshRaj112/nutrameter-backend/internal/analytics"

// Thresholds parameterize the rules. The defaults are the values the product
// has always shipped with; they are not clinical guidance.
type Thresholds struct {
	CalorieOverRatio     float64
	CalorieUnderRatio    float64
	CalorieUnderMinMeals int

	ProteinCalorieShare float64 // share of the calorie target eaten as protein
	KcalPerGramProtein  float64
	ProteinLowRatio     float64
	ProteinHighRatio    float64

	SodiumAlertMg      float64
	SodiumDailyLimitMg float64 // quoted in the alert message only

	HealthHighScore float64
	HealthLowScore  float64

	ConsistencyHighDays int
	ConsistencyLowDays  int

	MaxAITips int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CalorieOverRatio:     1.1,
		CalorieUnderRatio:    0.6,
		CalorieUnderMinMeals: 2,
		ProteinCalorieShare:  0.30,
		KcalPerGramProtein:   4,
		ProteinLowRatio:      0.6,
		ProteinHighRatio:     0.9,
		SodiumAlertMg:        2000,
		SodiumDailyLimitMg:   2300,
		HealthHighScore:      70,
		HealthLowScore:       50,
		ConsistencyHighDays:  5,
		ConsistencyLowDays:   3,
		MaxAITips:            3,
	}
}

// ProteinTarget is the daily protein goal in grams for a calorie target.
func (t Thresholds) ProteinTarget(calorieTarget float64) int {
	if t.KcalPerGramProtein <= 0 {
		return 0
	}
	return analytics.RoundHalfUp(calorieTarget * t.ProteinCalorieShare / t.KcalPerGramProtein)
}
