package scoring

import (
	"testing"

	"github.com/Dosada05/tabletennis/models"
)

func TestSetWinner(t *testing.T) {
	tests := []struct {
		side1, side2, points int
		want                 Side
	}{
		{11, 9, 11, Side1},
		{9, 11, 11, Side2},
		{12, 10, 11, Side1},
		{10, 12, 11, Side2},
		{10, 9, 11, NoSide},
		{11, 10, 11, NoSide},
		{11, 0, 11, Side1},
		{15, 13, 11, Side1},
		{10, 10, 11, NoSide},
		{21, 19, 21, Side1},
		{5, 3, 5, Side1},
		// primary rule applies first: 11-8 is won without reaching deuce
		{11, 8, 11, Side1},
		{0, 0, 11, NoSide},
	}

	for _, tt := range tests {
		if got := SetWinner(tt.side1, tt.side2, tt.points); got != tt.want {
			t.Errorf("SetWinner(%d, %d, %d) = %v, want %v", tt.side1, tt.side2, tt.points, got, tt.want)
		}
	}
}

func sets(scores ...[2]int) []*models.SetResult {
	out := make([]*models.SetResult, len(scores))
	for i, s := range scores {
		out[i] = &models.SetResult{SetNumber: i + 1, Side1Points: s[0], Side2Points: s[1]}
	}
	return out
}

func TestTallySets(t *testing.T) {
	bestOfFive := models.Category{SetsPerMatch: 5, PointsPerSet: 11}

	tests := []struct {
		name      string
		sets      []*models.SetResult
		category  models.Category
		want      Side
		decidedAt int
	}{
		{"three straight", sets([2]int{11, 5}, [2]int{11, 7}, [2]int{11, 9}), bestOfFive, Side1, 3},
		{"one set only", sets([2]int{11, 5}), bestOfFive, NoSide, 0},
		{"side two in five", sets([2]int{11, 5}, [2]int{3, 11}, [2]int{11, 13}, [2]int{11, 4}, [2]int{9, 11}), bestOfFive, Side2, 5},
		{"undecided sets ignored", sets([2]int{10, 9}, [2]int{11, 5}), models.Category{SetsPerMatch: 1, PointsPerSet: 11}, Side1, 2},
		{"best of three", sets([2]int{11, 5}, [2]int{11, 7}), models.Category{SetsPerMatch: 3, PointsPerSet: 11}, Side1, 2},
		{"even sets per match", sets([2]int{11, 5}, [2]int{11, 7}), models.Category{SetsPerMatch: 4, PointsPerSet: 11}, NoSide, 0},
		{"first to reach wins", sets([2]int{11, 5}, [2]int{11, 7}, [2]int{5, 11}, [2]int{5, 11}), models.Category{SetsPerMatch: 3, PointsPerSet: 11}, Side1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TallySets(tt.sets, tt.category)
			if got.Winner != tt.want || got.DecidedAt != tt.decidedAt {
				t.Errorf("TallySets = %+v, want winner %v at set %d", got, tt.want, tt.decidedAt)
			}
			if got.SetsToWin != tt.category.SetsToWin() {
				t.Errorf("SetsToWin = %d, want %d", got.SetsToWin, tt.category.SetsToWin())
			}
		})
	}
}

func TestWinnerID(t *testing.T) {
	p1, p2, t1, t2 := 1, 2, 10, 20

	individual := &models.Match{Type: models.MatchTypeIndividual, Player1ID: &p1, Player2ID: &p2}
	if got := WinnerID(individual, Tally{Winner: Side2}); got == nil || *got != p2 {
		t.Errorf("individual winner = %v, want %d", got, p2)
	}

	doubles := &models.Match{Type: models.MatchTypeDoubles, Team1ID: &t1, Team2ID: &t2}
	if got := WinnerID(doubles, Tally{Winner: Side1}); got == nil || *got != t1 {
		t.Errorf("doubles winner = %v, want %d", got, t1)
	}

	if got := WinnerID(individual, Tally{}); got != nil {
		t.Errorf("pending winner = %d, want nil", *got)
	}
}
