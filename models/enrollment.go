package models

import "time"

// Enrollment registers a player into a tournament category.
type Enrollment struct {
	PlayerID     int       `json:"player_id" db:"player_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DoublesEnrollment registers a doubles team into a tournament category.
type DoublesEnrollment struct {
	TeamID       int       `json:"team_id" db:"team_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
