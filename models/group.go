package models

import "time"

type Group struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	CategoryID   int       `json:"category_id" db:"category_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Members []Player `json:"members,omitempty" db:"-"`
}

// GroupMembership links a player to a group. Position keeps insertion order,
// which is the order round-robin pairings are generated in.
type GroupMembership struct {
	GroupID   int       `json:"group_id" db:"group_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
