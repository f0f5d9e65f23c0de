package models

import "time"

type MatchType string

const (
	MatchTypeIndividual MatchType = "individual"
	MatchTypeDoubles    MatchType = "doubles"
)

// ParticipantKind tells which slot family a participant id belongs to.
type ParticipantKind string

const (
	ParticipantPlayer ParticipantKind = "player"
	ParticipantTeam   ParticipantKind = "team"
)

const (
	RoundGroupStage = "group stage"
	RoundFirst      = "Round 1"
)

// Kind returns the participant kind that plays matches of this type.
func (t MatchType) Kind() ParticipantKind {
	if t == MatchTypeDoubles {
		return ParticipantTeam
	}
	return ParticipantPlayer
}

// Match is a singles or doubles game. Exactly one slot family is used,
// chosen by Type. AdvancesToMatchID is a weak reference to the next bracket match.
type Match struct {
	ID                int       `json:"id" db:"id"`
	Type              MatchType `json:"type" db:"type"`
	TournamentID      int       `json:"tournament_id" db:"tournament_id"`
	CategoryID        int       `json:"category_id" db:"category_id"`
	ScheduledAt       time.Time `json:"scheduled_at" db:"scheduled_at"`
	TableNumber       int       `json:"table_number" db:"table_number"`
	Round             *string   `json:"round,omitempty" db:"round"`
	IsBye             bool      `json:"is_bye" db:"is_bye"`
	BracketPosition   *int      `json:"bracket_position,omitempty" db:"bracket_position"`
	AdvancesToMatchID *int      `json:"advances_to_match_id,omitempty" db:"advances_to_match_id"`
	Player1ID         *int      `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID         *int      `json:"player2_id,omitempty" db:"player2_id"`
	Team1ID           *int      `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID           *int      `json:"team2_id,omitempty" db:"team2_id"`
	GroupID           *int      `json:"group_id,omitempty" db:"group_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Slots returns the two participant slots used by the match type.
func (m *Match) Slots() (*int, *int) {
	if m.Type == MatchTypeDoubles {
		return m.Team1ID, m.Team2ID
	}
	return m.Player1ID, m.Player2ID
}

// SetSlots writes both participant slots of the match type.
func (m *Match) SetSlots(side1, side2 *int) {
	if m.Type == MatchTypeDoubles {
		m.Team1ID, m.Team2ID = side1, side2
		return
	}
	m.Player1ID, m.Player2ID = side1, side2
}

// RoundLabel returns the round label or an empty string.
func (m *Match) RoundLabel() string {
	if m.Round == nil {
		return ""
	}
	return *m.Round
}
