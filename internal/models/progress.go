package models

import "time"

// Progress is a point-in-time body weight and water sample.
type Progress struct {
	ID          string    `bson:"-" json:"id"`
	UserID      string    `bson:"user_id" json:"userId"`
	Weight      float64   `bson:"weight" json:"weight"`
	WaterIntake float64   `bson:"water_intake" json:"waterIntake"`
	Date        time.Time `bson:"date" json:"date"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

const (
	DefaultProgressLimit = 30
	MaxProgressLimit     = 365
)
