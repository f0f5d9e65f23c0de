// Package scoring holds the table-tennis rules that decide sets and matches.
package scoring

import "github.com/Dosada05/tabletennis/models"

type Side int

const (
	NoSide Side = iota
	Side1
	Side2
)

// SetWinner decides a set played to pointsPerSet. A side wins with at least
// pointsPerSet points and a lead of two or more. Past the deuce threshold
// (both sides on at least pointsPerSet-1) a lead of exactly two also wins.
// Anything else is undecided.
func SetWinner(side1, side2, pointsPerSet int) Side {
	switch {
	case side1 >= pointsPerSet && side1-side2 >= 2:
		return Side1
	case side2 >= pointsPerSet && side2-side1 >= 2:
		return Side2
	}

	if side1 >= pointsPerSet-1 && side2 >= pointsPerSet-1 {
		switch side1 - side2 {
		case 2:
			return Side1
		case -2:
			return Side2
		}
	}
	return NoSide
}

// Tally is the state of a match after counting its sets in set-number order.
type Tally struct {
	Side1Sets int
	Side2Sets int
	SetsToWin int
	Winner    Side
	// DecidedAt is the set number that decided the match, 0 while pending.
	DecidedAt int
}

func (t Tally) Decided() bool {
	return t.Winner != NoSide
}

// TallySets counts set wins for a category. The first side to reach the
// category's sets-to-win takes the match; later sets do not change the result.
// sets must be ordered by set number.
func TallySets(sets []*models.SetResult, category models.Category) Tally {
	t := Tally{SetsToWin: category.SetsToWin()}
	for _, s := range sets {
		switch SetWinner(s.Side1Points, s.Side2Points, category.PointsPerSet) {
		case Side1:
			t.Side1Sets++
		case Side2:
			t.Side2Sets++
		}
		if t.Winner != NoSide {
			continue
		}
		if t.Side1Sets >= t.SetsToWin {
			t.Winner, t.DecidedAt = Side1, s.SetNumber
		} else if t.Side2Sets >= t.SetsToWin {
			t.Winner, t.DecidedAt = Side2, s.SetNumber
		}
	}
	return t
}

// WinnerID returns the participant id on the winning side of m, or nil when
// the tally is pending or the winning slot is empty.
func WinnerID(m *models.Match, t Tally) *int {
	side1, side2 := m.Slots()
	switch t.Winner {
	case Side1:
		return side1
	case Side2:
		return side2
	}
	return nil
}
