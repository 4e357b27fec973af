// Package analytics derives nutrition aggregates from a meal log. Every
// function is pure: it reads the meals it is given and never touches storage.
//
// Two notions of time coexist and must not be merged. "Today" is calendar-day
// equality in the location of the reference time. "Week" is a rolling window
// of exactly seven 24-hour periods ending at the reference time.
package analytics

import (
	"math"
	"time"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

const (
	WeekDays   = 7
	WeekWindow = WeekDays * 24 * time.Hour
)

// Totals are sums over a set of meals.
type Totals struct {
	Calories       float64       `json:"calories"`
	Macros         models.Macros `json:"macros"`
	Sodium         float64       `json:"sodium"`
	MealCount      int           `json:"mealCount"`
	AvgHealthScore float64       `json:"avgHealthScore"`
}

// DayPoint is one entry of a per-day series.
type DayPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Day      string  `json:"day"`  // Mon, Tue, ...
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Logged   bool    `json:"logged"`
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayStart returns 00:00:00.000 of t's calendar date in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayEnd returns 23:59:59.999 of t's calendar date in loc.
func DayEnd(t time.Time, loc *time.Location) time.Time {
	return DayStart(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// TodayMeals returns the meals logged on now's calendar date.
func TodayMeals(meals []models.Meal, now time.Time) []models.Meal {
	loc := now.Location()
	out := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if SameDay(m.CreatedAt, now, loc) {
			out = append(out, m)
		}
	}
	return out
}

// TodayTotals sums calories, macros and sodium over the meals of now's
// calendar date.
func TodayTotals(meals []models.Meal, now time.Time) Totals {
	return Sum(TodayMeals(meals, now))
}

// Sum totals the given meals without any date filtering.
func Sum(meals []models.Meal) Totals {
	var t Totals
	for _, m := range meals {
		t.Calories += m.Calories
		t.Macros = t.Macros.Add(m.Macros)
		t.Sodium += m.Sodium()
	}
	t.MealCount = len(meals)
	t.AvgHealthScore = AverageHealthScore(meals)
	return t
}

// WeekWindowMeals keeps meals created at or after now minus seven days.
func WeekWindowMeals(meals []models.Meal, now time.Time) []models.Meal {
	cutoff := now.Add(-WeekWindow)
	out := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if !m.CreatedAt.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// LoggedDayCount counts distinct calendar dates (in loc) among the meals.
func LoggedDayCount(meals []models.Meal, loc *time.Location) int {
	days := make(map[string]struct{}, WeekDays)
	for _, m := range meals {
		days[m.CreatedAt.In(loc).Format(time.DateOnly)] = struct{}{}
	}
	return len(days)
}

// ConsistencyScore is the share of the last seven days with a logged meal, as
// a percentage in [0, 100].
func ConsistencyScore(loggedDays int) int {
	if loggedDays <= 0 {
		return 0
	}
	score := RoundHalfUp(float64(loggedDays) / WeekDays * 100)
	if score > 100 {
		return 100
	}
	return score
}

// DailySeries sums calories and protein per calendar date for the trailing
// days dates ending at now, oldest first.
func DailySeries(meals []models.Meal, now time.Time, days int) []DayPoint {
	if days <= 0 {
		return []DayPoint{}
	}
	loc := now.Location()
	today := DayStart(now, loc)

	series := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := today.AddDate(0, 0, i-(days-1))
		key := d.Format(time.DateOnly)
		series[i] = DayPoint{Date: key, Day: d.Weekday().String()[:3]}
		index[key] = i
	}

	for _, m := range meals {
		i, ok := index[m.CreatedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		series[i].Calories += m.Calories
		series[i].Protein += m.Macros.Protein
		series[i].Logged = true
	}
	return series
}

// AverageHealthScore is the mean health score, or 0 for no meals. Callers that
// must tell "no data" from "score 0" should check len(meals).
func AverageHealthScore(meals []models.Meal) float64 {
	if len(meals) == 0 {
		return 0
	}
	var sum int
	for _, m := range meals {
		sum += m.HealthScore
	}
	return float64(sum) / float64(len(meals))
}

// RoundHalfUp rounds to the nearest integer with .5 going up.
func RoundHalfUp(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int(math.Floor(x + 0.5))
}
