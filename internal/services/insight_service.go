package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/nutrameter-backend/internal/analytics"
	"github.com/AnshRaj112/nutrameter-backend/internal/insights"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
	"github.com/AnshRaj112/nutrameter-backend/internal/store"
)

// Macro split used for the dashboard targets, as share of calories and kcal
// per gram.
const (
	carbsCalorieShare = 0.45
	fatsCalorieShare  = 0.25
	kcalPerGramCarbs  = 4
	kcalPerGramFat    = 9
)

type InsightsReport struct {
	Insights []insights.Insight      `json:"insights"`
	Summary  analytics.WeeklySummary `json:"summary"`
}

type MacroTargets struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fats    int `json:"fats"`
}

type Dashboard struct {
	Date              string                  `json:"date"`
	Today             analytics.Totals        `json:"today"`
	CalorieTarget     float64                 `json:"calorieTarget"`
	RemainingCalories float64                 `json:"remainingCalories"`
	CaloriePercent    int                     `json:"caloriePercent"`
	MacroTargets      MacroTargets            `json:"macroTargets"`
	Water             analytics.WaterProgress `json:"water"`
	Week              []analytics.DayPoint    `json:"week"`
	Summary           analytics.WeeklySummary `json:"summary"`
	BMI               *analytics.BMI          `json:"bmi"`
	TodayMeals        []models.Meal           `json:"todayMeals"`
}

// InsightService reads the ledger and derives everything on demand. Nothing
// it computes is stored.
type InsightService struct {
	store     store.Store
	generator *insights.Generator
	th        insights.Thresholds
	loc       *time.Location
	now       func() time.Time
}

func NewInsightService(s store.Store, th insights.Thresholds, loc *time.Location) *InsightService {
	return &InsightService{
		store:     s,
		generator: insights.NewGenerator(th),
		th:        th,
		loc:       loc,
		now:       time.Now,
	}
}

// weekMeals returns the user's meals in the rolling week window, which also
// covers today and the trailing seven calendar days.
func (s *InsightService) weekMeals(ctx context.Context, userID string, now time.Time) ([]models.Meal, error) {
	return s.store.ListMeals(ctx, userID, models.MealFilter{From: now.Add(-analytics.WeekWindow)})
}

func (s *InsightService) Insights(ctx context.Context, userID string) (*InsightsReport, error) {
	now := s.now().In(s.loc)
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.weekMeals(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	in := insights.NewInput(meals, now, user.DailyCalorieTarget)
	return &InsightsReport{
		Insights: s.generator.Generate(in),
		Summary:  analytics.Week(analytics.WeekWindowMeals(meals, now), s.loc),
	}, nil
}

func (s *InsightService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	now := s.now().In(s.loc)
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals, err := s.weekMeals(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListProgress(ctx, userID, models.MaxProgressLimit)
	if err != nil {
		return nil, err
	}

	target := user.DailyCalorieTarget
	if target <= 0 {
		target = models.DefaultCalorieTarget
	}
	waterTarget := user.DailyWaterTarget
	if waterTarget <= 0 {
		waterTarget = models.DefaultWaterTarget
	}
	todayMeals := analytics.TodayMeals(meals, now)
	today := analytics.Sum(todayMeals)

	weight := user.Weight
	if len(entries) > 0 {
		weight = entries[0].Weight
	}

	return &Dashboard{
		Date:              now.Format(time.DateOnly),
		Today:             today,
		CalorieTarget:     target,
		RemainingCalories: max(target-today.Calories, 0),
		CaloriePercent:    analytics.RoundHalfUp(today.Calories / target * 100),
		MacroTargets: MacroTargets{
			Protein: s.th.ProteinTarget(target),
			Carbs:   analytics.RoundHalfUp(target * carbsCalorieShare / kcalPerGramCarbs),
			Fats:    analytics.RoundHalfUp(target * fatsCalorieShare / kcalPerGramFat),
		},
		Water:      analytics.TodayWater(entries, waterTarget, now),
		Week:       analytics.DailySeries(meals, now, analytics.WeekDays),
		Summary:    analytics.Week(analytics.WeekWindowMeals(meals, now), s.loc),
		BMI:        analytics.CalculateBMI(weight, user.Height),
		TodayMeals: todayMeals,
	}, nil
}
