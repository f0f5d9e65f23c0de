package models

import "time"

type SetResult struct {
	ID          int       `json:"id" db:"id"`
	MatchID     int       `json:"match_id" db:"match_id"`
	SetNumber   int       `json:"set_number" db:"set_number"`
	Side1Points int       `json:"side1_points" db:"side1_points"`
	Side2Points int       `json:"side2_points" db:"side2_points"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
