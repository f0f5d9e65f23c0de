package models

import "time"

// Team is a doubles pair. The pair is unordered: (a, b) and (b, a) are the same team.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Player1ID int       `json:"player1_id" db:"player1_id"`
	Player2ID int       `json:"player2_id" db:"player2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
}

// OrderedPair returns the player ids lowest first.
func (t Team) OrderedPair() (int, int) {
	if t.Player1ID <= t.Player2ID {
		return t.Player1ID, t.Player2ID
	}
	return t.Player2ID, t.Player1ID
}
