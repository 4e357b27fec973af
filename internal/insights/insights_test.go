package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

func keys(list []Insight) []string {
	out := make([]string, len(list))
	for i, in := range list {
		out[i] = in.Key
	}
	return out
}

func find(list []Insight, key string) (Insight, bool) {
	for _, in := range list {
		if in.Key == key {
			return in, true
		}
	}
	return Insight{}, false
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 150, th.ProteinTarget(2000))
	assert.Equal(t, 135, th.ProteinTarget(1800))
	assert.Equal(t, 0, Thresholds{}.ProteinTarget(2000))
}

func TestGenerateEmpty(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{CalorieTarget: 2000})

	require.Len(t, got, 1)
	assert.Equal(t, "empty_state", got[0].Key)
	assert.Equal(t, TypeInfo, got[0].Type)
}

func TestCalorieOver(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{TodayCalories: 2300, TodayMealCount: 3, LoggedDays: 4, CalorieTarget: 2000})

	over, ok := find(got, "calorie_over")
	require.True(t, ok)
	assert.Equal(t, TypeWarning, over.Type)
	assert.Equal(t, "2300 kcal", over.Badge)
	assert.Contains(t, over.Message, "300 kcal over")
	_, onTrack := find(got, "calorie_on_track")
	assert.False(t, onTrack)
}

func TestCalorieRulesAreExclusive(t *testing.T) {
	g := NewGenerator(DefaultThresholds())
	tests := []struct {
		name  string
		in    Input
		want  string
		empty bool
	}{
		{name: "over", in: Input{TodayCalories: 2201, TodayMealCount: 1}, want: "calorie_over"},
		{name: "exactly 110 percent is on track", in: Input{TodayCalories: 2200, TodayMealCount: 1}, want: "calorie_on_track"},
		{name: "under with two meals", in: Input{TodayCalories: 1000, TodayMealCount: 2}, want: "calorie_under"},
		{name: "under with one meal is on track", in: Input{TodayCalories: 1000, TodayMealCount: 1}, want: "calorie_on_track"},
		{name: "nothing eaten", in: Input{}, empty: true},
		{name: "zero-calorie meals", in: Input{TodayMealCount: 2, LoggedDays: 1}, empty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.CalorieTarget = 2000
			got := g.Generate(tt.in)
			var calorie []string
			for _, k := range keys(got) {
				if k == "calorie_over" || k == "calorie_under" || k == "calorie_on_track" {
					calorie = append(calorie, k)
				}
			}
			if tt.empty {
				assert.Empty(t, calorie)
				return
			}
			assert.Equal(t, []string{tt.want}, calorie)
		})
	}
}

func TestProteinRules(t *testing.T) {
	g := NewGenerator(DefaultThresholds())
	// Target 150g: low below 90g, high from 135g.
	tests := []struct {
		protein float64
		want    string
	}{
		{protein: 20, want: "protein_low"},
		{protein: 100, want: ""},
		{protein: 135, want: "protein_high"},
		{protein: 0, want: ""},
	}
	for _, tt := range tests {
		got := g.Generate(Input{TodayProtein: tt.protein, TodayCalories: 1, TodayMealCount: 1, CalorieTarget: 2000})
		_, low := find(got, "protein_low")
		_, high := find(got, "protein_high")
		switch tt.want {
		case "protein_low":
			assert.True(t, low, "protein=%v", tt.protein)
			assert.False(t, high, "protein=%v", tt.protein)
		case "protein_high":
			assert.False(t, low, "protein=%v", tt.protein)
			assert.True(t, high, "protein=%v", tt.protein)
		default:
			assert.False(t, low || high, "protein=%v", tt.protein)
		}
	}

	got := g.Generate(Input{TodayProtein: 20.5, TodayCalories: 1, TodayMealCount: 1, CalorieTarget: 2000})
	low, _ := find(got, "protein_low")
	assert.Equal(t, "20.5g", low.Badge)
	assert.Contains(t, low.Message, "~150g")
}

func TestSodiumUsesAlertThresholdAndQuotesLimit(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{TodaySodium: 2000, CalorieTarget: 2000})
	_, ok := find(got, "sodium_high")
	assert.False(t, ok)

	got = g.Generate(Input{TodaySodium: 2100, CalorieTarget: 2000})
	s, ok := find(got, "sodium_high")
	require.True(t, ok)
	assert.Equal(t, "2100mg", s.Badge)
	assert.Contains(t, s.Message, "2300mg daily limit")
}

func TestHealthRules(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{TodayAvgHealthScore: 72.5, TodayMealCount: 2, CalorieTarget: 2000})
	h, ok := find(got, "health_high")
	require.True(t, ok)
	assert.Contains(t, h.Message, "73/100")

	got = g.Generate(Input{TodayAvgHealthScore: 30, TodayMealCount: 1, CalorieTarget: 2000})
	_, ok = find(got, "health_low")
	assert.True(t, ok)

	got = g.Generate(Input{TodayAvgHealthScore: 60, TodayMealCount: 1, CalorieTarget: 2000})
	_, high := find(got, "health_high")
	_, low := find(got, "health_low")
	assert.False(t, high || low)
}

func TestConsistency(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{LoggedDays: 5, CalorieTarget: 2000})
	require.Equal(t, "consistency_high", got[0].Key)
	assert.Equal(t, "5/7", got[0].Badge)

	got = g.Generate(Input{LoggedDays: 2, CalorieTarget: 2000})
	require.Equal(t, "consistency_low", got[0].Key)
	assert.Equal(t, TypeWarning, got[0].Type)
	assert.Equal(t, "2/7", got[0].Badge)

	got = g.Generate(Input{LoggedDays: 3, CalorieTarget: 2000})
	assert.Equal(t, []string{"empty_state"}, keys(got))
}

func TestAITips(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{
		CalorieTarget:   2000,
		LoggedDays:      4,
		Recommendations: []string{"Drink water", "", "Eat greens", "Drink water", "  ", "Less sugar", "More fiber"},
	})

	require.Len(t, got, 3)
	for _, in := range got {
		assert.Equal(t, "ai_tip", in.Key)
		assert.Equal(t, TypeTip, in.Type)
	}
	assert.Equal(t, "Drink water", got[0].Message)
	assert.Equal(t, "Eat greens", got[1].Message)
	assert.Equal(t, "Less sugar", got[2].Message)
}

func TestOutputFollowsRuleOrder(t *testing.T) {
	g := NewGenerator(DefaultThresholds())

	got := g.Generate(Input{
		LoggedDays:          6,
		TodayCalories:       2500,
		TodayProtein:        160,
		TodaySodium:         2500,
		TodayMealCount:      3,
		TodayAvgHealthScore: 80,
		Recommendations:     []string{"Keep going"},
		CalorieTarget:       2000,
	})

	assert.Equal(t, []string{
		"consistency_high", "calorie_over", "protein_high", "sodium_high", "health_high", "ai_tip",
	}, keys(got))
}

func TestCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.SodiumAlertMg = 1500
	th.MaxAITips = 1
	g := NewGenerator(th)

	got := g.Generate(Input{TodaySodium: 1600, Recommendations: []string{"a", "b"}, CalorieTarget: 2000})

	assert.Equal(t, []string{"sodium_high", "ai_tip"}, keys(got))
}

func TestNewInput(t *testing.T) {
	loc := time.FixedZone("test", 0)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, loc)
	meals := []models.Meal{
		{Calories: 600, Macros: models.Macros{Protein: 30}, HealthScore: 80,
			Micronutrients: map[string]float64{"sodium": 900}, Recommendations: []string{"newest"}, CreatedAt: now.Add(-time.Hour)},
		{Calories: 400, Macros: models.Macros{Protein: 10}, HealthScore: 60,
			Recommendations: []string{"older"}, CreatedAt: now.Add(-2 * time.Hour)},
		{Calories: 900, Recommendations: []string{"last week"}, CreatedAt: now.AddDate(0, 0, -3)},
		{Calories: 900, Recommendations: []string{"too old"}, CreatedAt: now.AddDate(0, 0, -8)},
	}

	in := NewInput(meals, now, 0)

	assert.Equal(t, 1000.0, in.TodayCalories)
	assert.Equal(t, 40.0, in.TodayProtein)
	assert.Equal(t, 900.0, in.TodaySodium)
	assert.Equal(t, 2, in.TodayMealCount)
	assert.Equal(t, 70.0, in.TodayAvgHealthScore)
	assert.Equal(t, 2, in.LoggedDays)
	assert.Equal(t, []string{"newest", "older", "last week"}, in.Recommendations)
	assert.Equal(t, float64(models.DefaultCalorieTarget), in.CalorieTarget)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "2300", formatNumber(2300))
	assert.Equal(t, "20.5", formatNumber(20.5))
	assert.Equal(t, "0.3", formatNumber(0.1+0.2))
	assert.Equal(t, "-50", formatNumber(-50))
}
