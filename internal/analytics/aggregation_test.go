package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

var testLoc = time.FixedZone("UTC+2", 2*60*60)

func at(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, testLoc)
}

func meal(created time.Time, cals, protein float64, score int) models.Meal {
	return models.Meal{
		Name:        "meal",
		MealType:    models.MealLunch,
		Calories:    cals,
		Macros:      models.Macros{Protein: protein, Carbs: 10, Fats: 5, Fiber: 1, Sugar: 2},
		HealthScore: score,
		CreatedAt:   created,
	}
}

func TestTodayTotalsIsCalendarDayExact(t *testing.T) {
	now := at(2026, 10, 17, 15, 0, 0)
	meals := []models.Meal{
		meal(at(2026, 10, 17, 0, 0, 0), 100, 10, 80),
		meal(at(2026, 10, 17, 23, 59, 59), 200, 20, 60),
		meal(at(2026, 10, 18, 0, 0, 1), 400, 40, 10),
		meal(time.Date(2026, 10, 16, 23, 59, 59, 999e6, testLoc), 800, 80, 10),
	}

	totals := TodayTotals(meals, now)

	assert.Equal(t, 300.0, totals.Calories)
	assert.Equal(t, 30.0, totals.Macros.Protein)
	assert.Equal(t, 20.0, totals.Macros.Carbs)
	assert.Equal(t, 10.0, totals.Macros.Fats)
	assert.Equal(t, 2, totals.MealCount)
	assert.Equal(t, 70.0, totals.AvgHealthScore)
}

func TestTodayUsesReferenceLocation(t *testing.T) {
	// 23:30 UTC on the 16th is 01:30 on the 17th in UTC+2.
	now := at(2026, 10, 17, 9, 0, 0)
	m := meal(time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC), 500, 0, 0)

	assert.Len(t, TodayMeals([]models.Meal{m}, now), 1)
	assert.Empty(t, TodayMeals([]models.Meal{m}, now.In(time.UTC)))
}

func TestTodayTotalsSumsSodium(t *testing.T) {
	now := at(2026, 10, 17, 12, 0, 0)
	a := meal(now.Add(-time.Hour), 100, 0, 0)
	a.Micronutrients = map[string]float64{"sodium": 1200, "iron": 3}
	b := meal(now.Add(-2*time.Hour), 100, 0, 0)
	b.Micronutrients = map[string]float64{"sodium": 900.5}
	c := meal(now.Add(-3*time.Hour), 100, 0, 0)

	assert.Equal(t, 2100.5, TodayTotals([]models.Meal{a, b, c}, now).Sodium)
}

func TestWeekWindowIsRolling(t *testing.T) {
	now := at(2026, 10, 17, 12, 0, 0)
	tooOld := meal(now.Add(-WeekWindow-time.Second), 1, 0, 0)
	boundary := meal(now.Add(-WeekWindow), 2, 0, 0)
	recent := meal(now.Add(-(6*24*time.Hour + 23*time.Hour)), 3, 0, 0)
	// Same calendar date as the cutoff but earlier in the day: a calendar-day
	// window would keep it, the rolling one must not.
	sameDateEarlier := meal(at(2026, 10, 10, 8, 0, 0), 4, 0, 0)

	got := WeekWindowMeals([]models.Meal{tooOld, boundary, recent, sameDateEarlier}, now)

	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Calories)
	assert.Equal(t, 3.0, got[1].Calories)
}

func TestLoggedDayCount(t *testing.T) {
	meals := []models.Meal{
		meal(at(2026, 10, 17, 8, 0, 0), 0, 0, 0),
		meal(at(2026, 10, 17, 20, 0, 0), 0, 0, 0),
		meal(at(2026, 10, 15, 12, 0, 0), 0, 0, 0),
		meal(at(2026, 10, 14, 1, 0, 0), 0, 0, 0),
	}
	assert.Equal(t, 3, LoggedDayCount(meals, testLoc))
	assert.Equal(t, 0, LoggedDayCount(nil, testLoc))
}

func TestConsistencyScore(t *testing.T) {
	assert.Equal(t, 0, ConsistencyScore(0))
	assert.Equal(t, 14, ConsistencyScore(1))
	assert.Equal(t, 29, ConsistencyScore(2))
	assert.Equal(t, 57, ConsistencyScore(4))
	assert.Equal(t, 100, ConsistencyScore(7))
	assert.Equal(t, 100, ConsistencyScore(9))
	assert.Equal(t, 0, ConsistencyScore(-2))

	prev := ConsistencyScore(0)
	for n := 1; n <= 10; n++ {
		cur := ConsistencyScore(n)
		assert.GreaterOrEqual(t, cur, prev, "n=%d", n)
		assert.LessOrEqual(t, cur, 100)
		prev = cur
	}
}

func TestDailySeries(t *testing.T) {
	now := at(2026, 10, 17, 12, 0, 0)
	meals := []models.Meal{
		meal(at(2026, 10, 17, 8, 0, 0), 500, 30, 0),
		meal(at(2026, 10, 17, 13, 0, 0), 250, 10, 0),
		meal(at(2026, 10, 11, 0, 0, 0), 700, 40, 0),
		meal(at(2026, 10, 10, 23, 59, 59), 999, 99, 0),
	}

	series := DailySeries(meals, now, 7)

	require.Len(t, series, 7)
	assert.Equal(t, DayPoint{Date: "2026-10-11", Day: "Sun", Calories: 700, Protein: 40, Logged: true}, series[0])
	assert.Equal(t, DayPoint{Date: "2026-10-17", Day: "Sat", Calories: 750, Protein: 40, Logged: true}, series[6])
	for _, p := range series[1:6] {
		assert.False(t, p.Logged, p.Date)
		assert.Zero(t, p.Calories)
	}
	assert.Empty(t, DailySeries(meals, now, 0))
}

func TestAverageHealthScore(t *testing.T) {
	assert.Equal(t, 0.0, AverageHealthScore(nil))
	meals := []models.Meal{meal(time.Time{}, 0, 0, 70), meal(time.Time{}, 0, 0, 75)}
	assert.Equal(t, 72.5, AverageHealthScore(meals))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 73, RoundHalfUp(72.5))
	assert.Equal(t, 72, RoundHalfUp(72.49))
	assert.Equal(t, 0, RoundHalfUp(0))
	assert.Equal(t, -2, RoundHalfUp(-2.5))
}

func TestDayBounds(t *testing.T) {
	ref := at(2026, 10, 17, 15, 4, 5)
	assert.Equal(t, at(2026, 10, 17, 0, 0, 0), DayStart(ref, testLoc))
	assert.Equal(t, time.Date(2026, 10, 17, 23, 59, 59, 999e6, testLoc), DayEnd(ref, testLoc))
}
