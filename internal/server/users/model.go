package users

import "time"

type User struct {
	ID           string
	Email        string
	Nick         string
	PasswordHash []byte
	ProfileImage string
	Address      string
	Longitude    float64
	Latitude     float64
	Points       int
	Temperature  float64
	CreatedAt    time.Time
}

// ProfileUpdate replaces the editable profile fields. Nick must not be
// empty.
type ProfileUpdate struct {
	Nick        string
	Address     string
	Longitude   float64
	Latitude    float64
	Points      int
	Temperature float64
}
