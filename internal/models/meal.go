package models

import (
	"time"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Macros are in grams.
type Macros struct {
	Protein float64 `bson:"protein" json:"protein"`
	Carbs   float64 `bson:"carbs" json:"carbs"`
	Fats    float64 `bson:"fats" json:"fats"`
	Fiber   float64 `bson:"fiber" json:"fiber"`
	Sugar   float64 `bson:"sugar" json:"sugar"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Protein: m.Protein + o.Protein,
		Carbs:   m.Carbs + o.Carbs,
		Fats:    m.Fats + o.Fats,
		Fiber:   m.Fiber + o.Fiber,
		Sugar:   m.Sugar + o.Sugar,
	}
}

func (m Macros) HasNegative() bool {
	return m.Protein < 0 || m.Carbs < 0 || m.Fats < 0 || m.Fiber < 0 || m.Sugar < 0
}

// MicronutrientKeys is the fixed vocabulary of micronutrients a meal may carry.
// Vitamins A, D and E are in mcg, everything else in mg.
var MicronutrientKeys = []string{
	"vitaminA", "vitaminC", "vitaminD", "vitaminE",
	"iron", "calcium", "potassium", "sodium", "magnesium", "zinc",
}

const MicronutrientSodium = "sodium"

var micronutrientSet = func() map[string]bool {
	set := make(map[string]bool, len(MicronutrientKeys))
	for _, k := range MicronutrientKeys {
		set[k] = true
	}
	return set
}()

func IsMicronutrient(key string) bool { return micronutrientSet[key] }

// NormalizeMicronutrients keeps only vocabulary keys. The result is never nil.
func NormalizeMicronutrients(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if micronutrientSet[k] {
			out[k] = v
		}
	}
	return out
}

const (
	MinHealthScore = 0
	MaxHealthScore = 100
)

func ClampHealthScore(score int) int {
	if score < MinHealthScore {
		return MinHealthScore
	}
	if score > MaxHealthScore {
		return MaxHealthScore
	}
	return score
}

type Meal struct {
	ID              string             `bson:"-" json:"id"`
	UserID          string             `bson:"user_id" json:"userId"`
	Name            string             `bson:"name" json:"name"`
	ImageURL        string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	MealType        MealType           `bson:"meal_type" json:"mealType"`
	FoodItems       []string           `bson:"food_items" json:"foodItems"`
	Calories        float64            `bson:"calories" json:"calories"`
	Macros          Macros             `bson:"macros" json:"macros"`
	Micronutrients  map[string]float64 `bson:"micronutrients" json:"micronutrients"`
	HealthScore     int                `bson:"health_score" json:"healthScore"`
	Recommendations []string           `bson:"recommendations" json:"recommendations"`
	IsAIAnalyzed    bool               `bson:"is_ai_analyzed" json:"isAiAnalyzed"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

// Sodium returns the meal's sodium in mg, 0 when absent.
func (m Meal) Sodium() float64 {
	return m.Micronutrients[MicronutrientSodium]
}

// MealFilter narrows a ledger listing. Zero From/To leave that side open;
// both bounds are inclusive.
type MealFilter struct {
	From     time.Time
	To       time.Time
	MealType MealType
}

func (f MealFilter) Matches(m Meal) bool {
	if f.MealType != "" && m.MealType != f.MealType {
		return false
	}
	if !f.From.IsZero() && m.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && m.CreatedAt.After(f.To) {
		return false
	}
	return true
}

// MealPatch is a partial meal update. id, owner and createdAt are not part of
// it and so cannot be changed.
type MealPatch struct {
	Name            *string             `json:"name"`
	ImageURL        *string             `json:"imageUrl"`
	MealType        *MealType           `json:"mealType"`
	FoodItems       *[]string           `json:"foodItems"`
	Calories        *float64            `json:"calories"`
	Macros          *Macros             `json:"macros"`
	Micronutrients  *map[string]float64 `json:"micronutrients"`
	HealthScore     *int                `json:"healthScore"`
	Recommendations *[]string           `json:"recommendations"`
	IsAIAnalyzed    *bool               `json:"isAiAnalyzed"`
}

func (p MealPatch) Apply(m *Meal) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.MealType != nil {
		m.MealType = *p.MealType
	}
	if p.FoodItems != nil {
		m.FoodItems = *p.FoodItems
	}
	if p.Calories != nil {
		m.Calories = *p.Calories
	}
	if p.Macros != nil {
		m.Macros = *p.Macros
	}
	if p.Micronutrients != nil {
		m.Micronutrients = *p.Micronutrients
	}
	if p.HealthScore != nil {
		m.HealthScore = *p.HealthScore
	}
	if p.Recommendations != nil {
		m.Recommendations = *p.Recommendations
	}
	if p.IsAIAnalyzed != nil {
		m.IsAIAnalyzed = *p.IsAIAnalyzed
	}
}
