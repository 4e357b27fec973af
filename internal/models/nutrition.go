package models

// NutritionEstimate is the normalized output of an image analysis, shaped like
// the nutrition part of a Meal so clients can post it back as a new meal.
type NutritionEstimate struct {
	FoodItems       []string           `json:"foodItems"`
	Calories        float64            `json:"calories"`
	Macros          Macros             `json:"macros"`
	Micronutrients  map[string]float64 `json:"micronutrients"`
	HealthScore     int                `json:"healthScore"`
	Recommendations []string           `json:"recommendations"`
	ImageURL        string             `json:"imageUrl,omitempty"`
}
