// Package insights turns nutrition aggregates into an ordered list of insight
// cards. Generation is a pure function of its Input.
package insights

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/nutrameter-backend/internal/analytics"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeTip     Type = "tip"
	TypeInfo    Type = "info"
)

type Insight struct {
	Key     string `json:"key"`
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Badge   string `json:"badge,omitempty"`
}

// Input is everything the rules look at.
type Input struct {
	TodayCalories       float64
	TodayProtein        float64
	TodaySodium         float64
	TodayMealCount      int
	TodayAvgHealthScore float64

	LoggedDays int // distinct dates in the rolling week window

	// Recommendations of the week-window meals, in ledger order.
	Recommendations []string

	CalorieTarget float64
}

// NewInput derives an Input from a user's meals. Meals must be in ledger
// order (newest first) for tips to come out in first-seen order.
func NewInput(meals []models.Meal, now time.Time, calorieTarget float64) Input {
	if calorieTarget <= 0 {
		calorieTarget = models.DefaultCalorieTarget
	}
	today := analytics.TodayTotals(meals, now)
	week := analytics.WeekWindowMeals(meals, now)

	var recs []string
	for _, m := range week {
		recs = append(recs, m.Recommendations...)
	}

	return Input{
		TodayCalories:       today.Calories,
		TodayProtein:        today.Macros.Protein,
		TodaySodium:         today.Sodium,
		TodayMealCount:      today.MealCount,
		TodayAvgHealthScore: today.AvgHealthScore,
		LoggedDays:          analytics.LoggedDayCount(week, now.Location()),
		Recommendations:     recs,
		CalorieTarget:       calorieTarget,
	}
}

// rule fires at most once. Rules sharing a non-empty group are alternatives:
// the first one whose condition holds wins and the rest are skipped.
type rule struct {
	key    string
	group  string
	when   func(in Input, t Thresholds) bool
	render func(in Input, t Thresholds) Insight
}

type Generator struct {
	th    Thresholds
	rules []rule
}

func NewGenerator(th Thresholds) *Generator {
	return &Generator{th: th, rules: defaultRules()}
}

// Generate evaluates the rules in order. The result is never empty: when no
// rule fires it holds the empty-state card alone.
func (g *Generator) Generate(in Input) []Insight {
	out := make([]Insight, 0, 8)
	fired := make(map[string]bool, 4)

	for _, r := range g.rules {
		if r.group != "" && fired[r.group] {
			continue
		}
		if !r.when(in, g.th) {
			continue
		}
		if r.group != "" {
			fired[r.group] = true
		}
		ins := r.render(in, g.th)
		ins.Key = r.key
		out = append(out, ins)
	}

	out = append(out, aiTips(in.Recommendations, g.th.MaxAITips)...)

	if len(out) == 0 {
		out = append(out, Insight{
			Key:     "empty_state",
			Type:    TypeInfo,
			Title:   "Start Logging Meals",
			Message: "Log your first meal to receive personalized AI-powered nutritional insights!",
		})
	}
	return out
}

func defaultRules() []rule {
	return []rule{
		{
			key:   "consistency_high",
			group: "consistency",
			when:  func(in Input, t Thresholds) bool { return in.LoggedDays >= t.ConsistencyHighDays },
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeSuccess,
					Title:   "Great Consistency!",
					Message: fmt.Sprintf("You've logged meals %d out of the last 7 days. Keep it up!", in.LoggedDays),
					Badge:   fmt.Sprintf("%d/7", in.LoggedDays),
				}
			},
		},
		{
			// A week with nothing logged is the empty state, not a nag.
			key:   "consistency_low",
			group: "consistency",
			when: func(in Input, t Thresholds) bool {
				return in.LoggedDays > 0 && in.LoggedDays < t.ConsistencyLowDays
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeWarning,
					Title:   "Track More Consistently",
					Message: fmt.Sprintf("You've only logged %d days this week. Consistent tracking leads to better insights.", in.LoggedDays),
					Badge:   fmt.Sprintf("%d/7", in.LoggedDays),
				}
			},
		},
		{
			key:   "calorie_over",
			group: "calories",
			when: func(in Input, t Thresholds) bool {
				return in.TodayCalories > in.CalorieTarget*t.CalorieOverRatio
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:  TypeWarning,
					Title: "Over Calorie Goal",
					Message: fmt.Sprintf("You're %s kcal over your daily target of %s kcal.",
						formatNumber(in.TodayCalories-in.CalorieTarget), formatNumber(in.CalorieTarget)),
					Badge: formatNumber(in.TodayCalories) + " kcal",
				}
			},
		},
		{
			key:   "calorie_under",
			group: "calories",
			when: func(in Input, t Thresholds) bool {
				return in.TodayCalories > 0 &&
					in.TodayCalories < in.CalorieTarget*t.CalorieUnderRatio &&
					in.TodayMealCount >= t.CalorieUnderMinMeals
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeTip,
					Title:   "Low Calorie Intake",
					Message: fmt.Sprintf("You've only had %s kcal. Consider a nutritious snack to meet your energy needs.", formatNumber(in.TodayCalories)),
				}
			},
		},
		{
			key:   "calorie_on_track",
			group: "calories",
			when:  func(in Input, t Thresholds) bool { return in.TodayCalories > 0 },
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeSuccess,
					Title:   "On Track Today!",
					Message: fmt.Sprintf("%s / %s kcal consumed. You're pacing well for the day.", formatNumber(in.TodayCalories), formatNumber(in.CalorieTarget)),
				}
			},
		},
		{
			key:   "protein_low",
			group: "protein",
			when: func(in Input, t Thresholds) bool {
				target := float64(t.ProteinTarget(in.CalorieTarget))
				return in.TodayProtein > 0 && in.TodayProtein < target*t.ProteinLowRatio
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:  TypeWarning,
					Title: "Low Protein Intake",
					Message: fmt.Sprintf("You're getting %sg protein vs a target of ~%dg. Add lean meats, eggs, or legumes.",
						formatNumber(in.TodayProtein), t.ProteinTarget(in.CalorieTarget)),
					Badge: formatNumber(in.TodayProtein) + "g",
				}
			},
		},
		{
			key:   "protein_high",
			group: "protein",
			when: func(in Input, t Thresholds) bool {
				target := float64(t.ProteinTarget(in.CalorieTarget))
				return in.TodayProtein > 0 && in.TodayProtein >= target*t.ProteinHighRatio
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeSuccess,
					Title:   "Excellent Protein!",
					Message: fmt.Sprintf("Great job hitting %sg protein today. Your muscles will thank you!", formatNumber(in.TodayProtein)),
					Badge:   formatNumber(in.TodayProtein) + "g",
				}
			},
		},
		{
			key:  "sodium_high",
			when: func(in Input, t Thresholds) bool { return in.TodaySodium > t.SodiumAlertMg },
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:  TypeWarning,
					Title: "High Sodium Alert",
					Message: fmt.Sprintf("Today's sodium intake is %smg, exceeding the %smg daily limit. Limit processed foods.",
						formatNumber(in.TodaySodium), formatNumber(t.SodiumDailyLimitMg)),
					Badge: formatNumber(in.TodaySodium) + "mg",
				}
			},
		},
		{
			key:   "health_high",
			group: "health",
			when: func(in Input, t Thresholds) bool {
				return in.TodayMealCount > 0 && in.TodayAvgHealthScore >= t.HealthHighScore
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeSuccess,
					Title:   "High Quality Meals",
					Message: fmt.Sprintf("Your average meal health score is %d/100. You're making nutritious choices!", analytics.RoundHalfUp(in.TodayAvgHealthScore)),
				}
			},
		},
		{
			key:   "health_low",
			group: "health",
			when: func(in Input, t Thresholds) bool {
				return in.TodayAvgHealthScore > 0 && in.TodayAvgHealthScore < t.HealthLowScore
			},
			render: func(in Input, t Thresholds) Insight {
				return Insight{
					Type:    TypeTip,
					Title:   "Improve Meal Quality",
					Message: fmt.Sprintf("Average health score is %d/100. Try adding more whole foods and vegetables.", analytics.RoundHalfUp(in.TodayAvgHealthScore)),
				}
			},
		},
	}
}

func aiTips(recs []string, max int) []Insight {
	if max <= 0 {
		return nil
	}
	seen := make(map[string]bool, max)
	var out []Insight
	for _, r := range recs {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, Insight{Key: "ai_tip", Type: TypeTip, Title: "AI Nutrition Tip", Message: r})
		if len(out) == max {
			break
		}
	}
	return out
}

// formatNumber prints whole numbers without decimals and keeps at most two
// decimals otherwise.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
