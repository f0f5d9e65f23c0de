package brackets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/tabletennis/models"
)

type SingleEliminationGenerator struct {
	shuffler Shuffler
}

// NewSingleEliminationGenerator uses shuffler to draw the first round. A nil
// shuffler keeps the participants in the given order.
func NewSingleEliminationGenerator(shuffler Shuffler) BracketGenerator {
	return &SingleEliminationGenerator{shuffler: shuffler}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// BracketSize is the smallest power of two holding n participants, and at least 2.
func BracketSize(n int) int {
	size := 2
	for size < n {
		size <<= 1
	}
	return size
}

// GenerateBracket draws the first elimination round. Participants take the
// first slot of every pair, then the second slots in order, so the empty slots
// fall into distinct matches and each of them is a bye.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	n := len(params.ParticipantIDs)
	if n == 0 {
		return []*BracketMatch{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]int, n)
	copy(ids, params.ParticipantIDs)
	if g.shuffler != nil {
		g.shuffler.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}

	size := BracketSize(n)
	slots := make([]*int, size)
	next := 0
	for _, parity := range []int{0, 1} {
		for i := parity; i < size && next < n; i += 2 {
			slots[i] = intPtr(ids[next])
			next++
		}
	}

	matches := make([]*BracketMatch, 0, size/2)
	for i := 0; i < size; i += 2 {
		matches = append(matches, &BracketMatch{
			Round:          models.RoundFirst,
			OrderInRound:   i/2 + 1,
			Participant1ID: slots[i],
			Participant2ID: slots[i+1],
			IsBye:          slots[i] == nil || slots[i+1] == nil,
		})
	}
	return matches, nil
}

// NextRoundPlan lays out the round after an elimination round. Feeders[i] holds
// the indexes, in bracket order, of the current matches whose winners meet in
// match i of the next round.
type NextRoundPlan struct {
	Round   string
	Feeders [][]int
}

// PlanNextRound pairs consecutive matches of an elimination round labelled
// "Round N". An odd match out feeds a next-round match alone.
func PlanNextRound(round string, matchCount int) (*NextRoundPlan, error) {
	number, err := roundNumber(round)
	if err != nil {
		return nil, err
	}
	if matchCount < 2 {
		return nil, fmt.Errorf("%w: %q has %d match(es)", ErrFinalRound, round, matchCount)
	}

	plan := &NextRoundPlan{Round: RoundLabel(number + 1)}
	for i := 0; i < matchCount; i += 2 {
		if i+1 < matchCount {
			plan.Feeders = append(plan.Feeders, []int{i, i + 1})
		} else {
			plan.Feeders = append(plan.Feeders, []int{i})
		}
	}
	return plan, nil
}

// RoundLabel formats an elimination round number.
func RoundLabel(number int) string {
	return "Round " + strconv.Itoa(number)
}

func roundNumber(label string) (int, error) {
	rest, ok := strings.CutPrefix(label, "Round ")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRound, label)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRound, label)
	}
	return n, nil
}
