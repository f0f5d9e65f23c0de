package models

import "time"

// Tournament is a table-tennis event with its registration window and table count.
type Tournament struct {
	ID                int       `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	StartDate         time.Time `json:"start_date" db:"start_date"`
	EndDate           time.Time `json:"end_date" db:"end_date"`
	RegistrationStart time.Time `json:"registration_start" db:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end" db:"registration_end"`
	AvailableTables   int       `json:"available_tables" db:"available_tables"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// RegistrationOpenOn reports whether day lies inside the registration window.
// Only the calendar date of each bound is compared.
func (t Tournament) RegistrationOpenOn(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(t.RegistrationStart)) && !d.After(DateOnly(t.RegistrationEnd))
}

// DateOnly drops the clock part of t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
