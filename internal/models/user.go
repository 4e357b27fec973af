package models

import "time"

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalMaintain   Goal = "maintain"
	GoalGainMuscle Goal = "gain_muscle"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalMaintain, GoalGainMuscle:
		return true
	}
	return false
}

// Profile defaults applied at registration.
const (
	DefaultWeightKg      = 70
	DefaultHeightCm      = 170
	DefaultAge           = 25
	DefaultCalorieTarget = 2000
	DefaultWaterTarget   = 2500
)

type User struct {
	ID           string `bson:"-" json:"id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	PasswordHash string `bson:"password_hash" json:"-"` // Don't return password hash in JSON

	Weight             float64 `bson:"weight" json:"weight"`
	Height             float64 `bson:"height" json:"height"`
	Age                int     `bson:"age" json:"age"`
	Goal               Goal    `bson:"goal" json:"goal"`
	DailyCalorieTarget float64 `bson:"daily_calorie_target" json:"dailyCalorieTarget"`
	DailyWaterTarget   float64 `bson:"daily_water_target" json:"dailyWaterTarget"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// UserUpdate holds the profile fields a user may change. Anything else in a
// request body is ignored by decoding into this type.
type UserUpdate struct {
	Name               *string  `json:"name"`
	Weight             *float64 `json:"weight"`
	Height             *float64 `json:"height"`
	Age                *int     `json:"age"`
	Goal               *Goal    `json:"goal"`
	DailyCalorieTarget *float64 `json:"dailyCalorieTarget"`
	DailyWaterTarget   *float64 `json:"dailyWaterTarget"`
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Weight == nil && u.Height == nil && u.Age == nil &&
		u.Goal == nil && u.DailyCalorieTarget == nil && u.DailyWaterTarget == nil
}

func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Weight != nil {
		user.Weight = *u.Weight
	}
	if u.Height != nil {
		user.Height = *u.Height
	}
	if u.Age != nil {
		user.Age = *u.Age
	}
	if u.Goal != nil {
		user.Goal = *u.Goal
	}
	if u.DailyCalorieTarget != nil {
		user.DailyCalorieTarget = *u.DailyCalorieTarget
	}
	if u.DailyWaterTarget != nil {
		user.DailyWaterTarget = *u.DailyWaterTarget
	}
}
