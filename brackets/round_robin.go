package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tabletennis/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket pairs every participant with every later one, once, in
// participant order: (0,1), (0,2), ..., (1,2), ...
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	ids := params.ParticipantIDs
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: round robin needs at least 2, got %d", ErrNotEnoughParticipants, len(ids))
	}

	matches := make([]*BracketMatch, 0, len(ids)*(len(ids)-1)/2)
	order := 0
	for i := 0; i < len(ids); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(ids); j++ {
			order++
			matches = append(matches, &BracketMatch{
				Round:          models.RoundGroupStage,
				OrderInRound:   order,
				Participant1ID: intPtr(ids[i]),
				Participant2ID: intPtr(ids[j]),
			})
		}
	}
	return matches, nil
}
