package models

import "time"

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Player is an individual competitor. Age and gender decide category eligibility.
type Player struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	BirthDate     time.Time `json:"birth_date" db:"birth_date"`
	Gender        Gender    `json:"gender" db:"gender"`
	City          string    `json:"city" db:"city"`
	Country       string    `json:"country" db:"country"`
	AssociationID *int      `json:"association_id,omitempty" db:"association_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	Association *Association `json:"association,omitempty" db:"-"`
}

// AgeOn returns the player's age in whole years on the given day.
func (p Player) AgeOn(day time.Time) int {
	age := day.Year() - p.BirthDate.Year()
	if day.Month() < p.BirthDate.Month() ||
		(day.Month() == p.BirthDate.Month() && day.Day() < p.BirthDate.Day()) {
		age--
	}
	return age
}
