package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

func TestWeek(t *testing.T) {
	assert.Equal(t, WeeklySummary{}, Week(nil, testLoc))

	meals := []models.Meal{
		meal(at(2026, 10, 17, 8, 0, 0), 2000, 0, 80),
		meal(at(2026, 10, 16, 8, 0, 0), 1500, 0, 61),
		meal(at(2026, 10, 16, 19, 0, 0), 100, 0, 60),
	}
	s := Week(meals, testLoc)

	assert.Equal(t, 3, s.MealsLogged)
	assert.Equal(t, 2, s.LoggedDays)
	assert.Equal(t, 29, s.ConsistencyScore)
	assert.Equal(t, 514, s.AvgDailyCalories) // 3600 / 7 = 514.28
	assert.Equal(t, 67, s.AvgHealthScore)    // 201 / 3 = 67
}

func TestTodayWater(t *testing.T) {
	now := at(2026, 10, 17, 18, 0, 0)
	entries := []models.Progress{
		{Weight: 70, WaterIntake: 500, Date: at(2026, 10, 17, 9, 0, 0)},
		{Weight: 70, WaterIntake: 750, Date: at(2026, 10, 17, 13, 0, 0)},
		{Weight: 70, WaterIntake: 2000, Date: at(2026, 10, 16, 13, 0, 0)},
	}

	w := TodayWater(entries, 2500, now)
	assert.Equal(t, 1250.0, w.IntakeMl)
	assert.Equal(t, 50, w.Percent)

	w = TodayWater(append(entries, models.Progress{Weight: 70, WaterIntake: 5000, Date: now}), 2500, now)
	assert.Equal(t, 100, w.Percent)

	assert.Equal(t, 0, TodayWater(entries, 0, now).Percent)
}

func TestCalculateBMI(t *testing.T) {
	assert.Nil(t, CalculateBMI(0, 175))
	assert.Nil(t, CalculateBMI(70, -1))

	bmi := CalculateBMI(70, 175)
	require.NotNil(t, bmi)
	assert.Equal(t, 22.9, bmi.Value)
	assert.Equal(t, "Normal", bmi.Category)

	assert.Equal(t, "Underweight", BMICategory(18.4))
	assert.Equal(t, "Overweight", BMICategory(25))
	assert.Equal(t, "Obese", BMICategory(30))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(10, 0))
	assert.Equal(t, 50, Percent(1000, 2000))
	assert.Equal(t, 100, Percent(3000, 2000))
	assert.Equal(t, 0, Percent(-5, 2000))
}
