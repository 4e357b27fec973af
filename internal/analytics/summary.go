package analytics

import (
	"math"
	"time"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

// WeeklySummary describes the rolling week window.
type WeeklySummary struct {
	MealsLogged      int `json:"mealsLogged"`
	LoggedDays       int `json:"loggedDays"`
	ConsistencyScore int `json:"consistencyScore"`
	AvgDailyCalories int `json:"avgDailyCalories"`
	AvgHealthScore   int `json:"avgHealthScore"`
}

// Week summarizes meals already filtered to the week window. Average daily
// calories divide by seven days, not by logged days.
func Week(weekMeals []models.Meal, loc *time.Location) WeeklySummary {
	s := WeeklySummary{MealsLogged: len(weekMeals)}
	if len(weekMeals) == 0 {
		return s
	}
	var cals float64
	for _, m := range weekMeals {
		cals += m.Calories
	}
	s.LoggedDays = LoggedDayCount(weekMeals, loc)
	s.ConsistencyScore = ConsistencyScore(s.LoggedDays)
	s.AvgDailyCalories = RoundHalfUp(cals / WeekDays)
	s.AvgHealthScore = RoundHalfUp(AverageHealthScore(weekMeals))
	return s
}

// WaterProgress is today's water intake against the user's target.
type WaterProgress struct {
	IntakeMl float64 `json:"intakeMl"`
	TargetMl float64 `json:"targetMl"`
	Percent  int     `json:"percent"`
}

// TodayWater sums the water intake of progress entries dated on now's
// calendar day. Percent is capped at 100.
func TodayWater(entries []models.Progress, target float64, now time.Time) WaterProgress {
	w := WaterProgress{TargetMl: target}
	for _, e := range entries {
		if SameDay(e.Date, now, now.Location()) {
			w.IntakeMl += e.WaterIntake
		}
	}
	w.Percent = Percent(w.IntakeMl, target)
	return w
}

// Percent returns round(value/target*100) capped to [0, 100]; 0 when target
// is not positive.
func Percent(value, target float64) int {
	if target <= 0 {
		return 0
	}
	p := RoundHalfUp(value / target * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// BMI is body-mass index with its category, or nil when weight or height is
// not positive.
type BMI struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

func CalculateBMI(weightKg, heightCm float64) *BMI {
	if weightKg <= 0 || heightCm <= 0 {
		return nil
	}
	h := heightCm / 100.0
	bmi := weightKg / (h * h)
	return &BMI{
		Value:    math.Round(bmi*10) / 10,
		Category: BMICategory(bmi),
	}
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal"
	case bmi < 30.0:
		return "Overweight"
	default:
		return "Obese"
	}
}
