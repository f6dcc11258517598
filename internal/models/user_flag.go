package models

import "time"

// UserFlag counts the unsafe images a user has uploaded.
type UserFlag struct {
	Username     string    `json:"username" bson:"username"`
	Strikes      int       `json:"strikes" bson:"strikes"`
	LastObject   string    `json:"lastObject,omitempty" bson:"last_object,omitempty"`
	LastStrikeAt time.Time `json:"lastStrikeAt" bson:"last_strike_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}
