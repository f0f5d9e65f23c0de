package models

import "time"

// Category is a competition bracket of a tournament, bounded by age and gender,
// and carrying the scoring rules for its matches.
type Category struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	AgeMin       int       `json:"age_min" db:"age_min"`
	AgeMax       int       `json:"age_max" db:"age_max"`
	Gender       Gender    `json:"gender" db:"gender"`
	SetsPerMatch int       `json:"sets_per_match" db:"sets_per_match"`
	PointsPerSet int       `json:"points_per_set" db:"points_per_set"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SetsToWin is the number of sets that decides a match of this category.
func (c Category) SetsToWin() int {
	return c.SetsPerMatch/2 + 1
}
