package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/AnshRaj112/nutrameter-backend/internal/analytics"
	"github.com/AnshRaj112/nutrameter-backend/internal/apperr"
	"github.com/AnshRaj112/nutrameter-backend/internal/models"
)

// Analyzer sends a food photo to a vision model and returns its raw text
// answer, which should hold the JSON described by nutritionistPrompt.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, image []byte, mimeType string) (string, error)
}

const nutritionistPrompt = `You are a certified nutritionist AI. Analyze the food image carefully.
Identify all visible food items.
Estimate portion sizes realistically.
Provide a detailed nutritional breakdown.

Return ONLY valid JSON in this exact format (no markdown, no explanation):
{
  "food_items": ["item1", "item2"],
  "calories": 450,
  "macros": {
    "protein": 25,
    "carbs": 45,
    "fats": 15,
    "fiber": 5,
    "sugar": 8
  },
  "micronutrients": {
    "vitaminA": 120,
    "vitaminC": 35,
    "vitaminD": 0,
    "vitaminE": 2,
    "iron": 3.5,
    "calcium": 150,
    "potassium": 520,
    "sodium": 480,
    "magnesium": 45,
    "zinc": 2.1
  },
  "health_score": 72,
  "recommendations": [
    "Consider adding more vegetables for fiber",
    "Good protein source detected"
  ]
}

Ensure estimates are realistic and scientifically reasonable. If you cannot identify food items, make your best estimate based on visual cues.`

type rawAnalysis struct {
	FoodItems       []string               `json:"food_items"`
	Calories        modelNumber            `json:"calories"`
	Macros          rawMacros              `json:"macros"`
	Micronutrients  map[string]modelNumber `json:"micronutrients"`
	HealthScore     modelNumber            `json:"health_score"`
	Recommendations []string               `json:"recommendations"`
}

type rawMacros struct {
	Protein modelNumber `json:"protein"`
	Carbs   modelNumber `json:"carbs"`
	Fats    modelNumber `json:"fats"`
	Fiber   modelNumber `json:"fiber"`
	Sugar   modelNumber `json:"sugar"`
}

// modelNumber accepts a JSON number or a quoted one such as "450" or
// "450 kcal". Anything else reads as zero.
type modelNumber float64

func (n *modelNumber) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		if f, err := num.Float64(); err == nil {
			*n = modelNumber(f)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		field := strings.Fields(s)
		if len(field) > 0 {
			if f, err := strconv.ParseFloat(strings.TrimSuffix(field[0], "g"), 64); err == nil {
				*n = modelNumber(f)
				return nil
			}
		}
	}
	*n = 0
	return nil
}

// ParseNutrition extracts the nutrition JSON from a model answer and
// normalizes it: missing fields become zero or empty, negative numbers become
// zero, unknown micronutrients are dropped and the health score is clamped.
func ParseNutrition(text string) (*models.NutritionEstimate, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(cleanLLMResponse(text)), &raw); err != nil {
		return nil, apperr.Upstream(err, "Could not parse AI response as JSON")
	}

	micros := make(map[string]float64, len(raw.Micronutrients))
	for k, v := range raw.Micronutrients {
		micros[k] = nonNegative(float64(v))
	}

	return &models.NutritionEstimate{
		FoodItems:       cleanStrings(raw.FoodItems),
		Calories:        nonNegative(float64(raw.Calories)),
		Micronutrients:  models.NormalizeMicronutrients(micros),
		HealthScore:     models.ClampHealthScore(analytics.RoundHalfUp(float64(raw.HealthScore))),
		Recommendations: cleanStrings(raw.Recommendations),
		Macros: models.Macros{
			Protein: nonNegative(float64(raw.Macros.Protein)),
			Carbs:   nonNegative(float64(raw.Macros.Carbs)),
			Fats:    nonNegative(float64(raw.Macros.Fats)),
			Fiber:   nonNegative(float64(raw.Macros.Fiber)),
			Sugar:   nonNegative(float64(raw.Macros.Sugar)),
		},
	}, nil
}

// cleanLLMResponse strips markdown fences and any prose around the outermost
// JSON object.
func cleanLLMResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return response
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
