package brackets

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/tabletennis/models"
)

func TestRoundRobinPairsInOrder(t *testing.T) {
	gen := NewRoundRobinGenerator()
	matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{ParticipantIDs: []int{1, 2, 3}})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}

	want := [][2]int{{1, 2}, {1, 3}, {2, 3}}
	if len(matches) != len(want) {
		t.Fatalf("got %d matches, want %d", len(matches), len(want))
	}
	for i, m := range matches {
		got := [2]int{*m.Participant1ID, *m.Participant2ID}
		if got != want[i] {
			t.Errorf("match %d = %v, want %v", i, got, want[i])
		}
		if m.Round != models.RoundGroupStage || m.IsBye {
			t.Errorf("match %d: round=%q bye=%v", i, m.Round, m.IsBye)
		}
	}
}

func TestRoundRobinNeedsTwoParticipants(t *testing.T) {
	_, err := NewRoundRobinGenerator().GenerateBracket(context.Background(), GenerateBracketParams{ParticipantIDs: []int{1}})
	if !errors.Is(err, ErrNotEnoughParticipants) {
		t.Fatalf("error = %v, want ErrNotEnoughParticipants", err)
	}
}

func TestBracketSize(t *testing.T) {
	tests := map[int]int{0: 2, 1: 2, 2: 2, 3: 4, 4: 4, 5: 8, 8: 8, 9: 16}
	for n, want := range tests {
		if got := BracketSize(n); got != want {
			t.Errorf("BracketSize(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSingleEliminationByes(t *testing.T) {
	tests := []struct {
		participants int
		wantMatches  int
		wantByes     int
	}{
		{1, 1, 1},
		{2, 1, 0},
		{3, 2, 1},
		{5, 4, 3},
		{6, 4, 2},
		{8, 4, 0},
		{11, 8, 5},
	}

	for _, tt := range tests {
		ids := make([]int, tt.participants)
		for i := range ids {
			ids[i] = i + 1
		}
		gen := NewSingleEliminationGenerator(NewSeededShuffler(42))
		matches, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{ParticipantIDs: ids})
		if err != nil {
			t.Fatalf("n=%d: %v", tt.participants, err)
		}
		if len(matches) != tt.wantMatches {
			t.Errorf("n=%d: %d matches, want %d", tt.participants, len(matches), tt.wantMatches)
		}

		byes, seen := 0, map[int]bool{}
		for i, m := range matches {
			if m.Participant1ID == nil && m.Participant2ID == nil {
				t.Errorf("n=%d: match %d has no participants", tt.participants, i)
			}
			if m.IsBye {
				byes++
			}
			if m.OrderInRound != i+1 || m.Round != models.RoundFirst {
				t.Errorf("n=%d: match %d position=%d round=%q", tt.participants, i, m.OrderInRound, m.Round)
			}
			for _, p := range []*int{m.Participant1ID, m.Participant2ID} {
				if p != nil {
					if seen[*p] {
						t.Errorf("n=%d: participant %d drawn twice", tt.participants, *p)
					}
					seen[*p] = true
				}
			}
		}
		if byes != tt.wantByes {
			t.Errorf("n=%d: %d byes, want %d", tt.participants, byes, tt.wantByes)
		}
		if len(seen) != tt.participants {
			t.Errorf("n=%d: %d participants drawn", tt.participants, len(seen))
		}
	}
}

func TestSingleEliminationEmpty(t *testing.T) {
	matches, err := NewSingleEliminationGenerator(nil).GenerateBracket(context.Background(), GenerateBracketParams{})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want 0", len(matches))
	}
}

func TestSingleEliminationWithoutShuffleKeepsOrder(t *testing.T) {
	matches, err := NewSingleEliminationGenerator(nil).GenerateBracket(context.Background(), GenerateBracketParams{ParticipantIDs: []int{10, 20, 30, 40, 50}})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	got := make([][2]int, len(matches))
	for i, m := range matches {
		var a, b int
		if m.Participant1ID != nil {
			a = *m.Participant1ID
		}
		if m.Participant2ID != nil {
			b = *m.Participant2ID
		}
		got[i] = [2]int{a, b}
	}
	want := [][2]int{{10, 50}, {20, 0}, {30, 0}, {40, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestSeededShuffleIsDeterministic(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5, 6, 7, 8}
	draw := func() []*BracketMatch {
		m, err := NewSingleEliminationGenerator(NewSeededShuffler(7)).GenerateBracket(context.Background(), GenerateBracketParams{ParticipantIDs: ids})
		if err != nil {
			t.Fatalf("GenerateBracket: %v", err)
		}
		return m
	}
	if !reflect.DeepEqual(draw(), draw()) {
		t.Fatal("same seed produced different draws")
	}
	if !reflect.DeepEqual(ids, []int{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatal("input slice was reordered")
	}
}

func TestPlanNextRound(t *testing.T) {
	plan, err := PlanNextRound(models.RoundFirst, 5)
	if err != nil {
		t.Fatalf("PlanNextRound: %v", err)
	}
	if plan.Round != "Round 2" {
		t.Errorf("Round = %q, want Round 2", plan.Round)
	}
	want := [][]int{{0, 1}, {2, 3}, {4}}
	if !reflect.DeepEqual(plan.Feeders, want) {
		t.Errorf("Feeders = %v, want %v", plan.Feeders, want)
	}
}

func TestPlanNextRoundErrors(t *testing.T) {
	if _, err := PlanNextRound(models.RoundGroupStage, 4); !errors.Is(err, ErrUnknownRound) {
		t.Errorf("group stage: error = %v, want ErrUnknownRound", err)
	}
	if _, err := PlanNextRound("Round 3", 1); !errors.Is(err, ErrFinalRound) {
		t.Errorf("final: error = %v, want ErrFinalRound", err)
	}
}
