package brackets

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants")
	ErrUnknownRound          = errors.New("round label is not an elimination round")
	ErrFinalRound            = errors.New("round has a single match, there is no next round")
)

// BracketMatch is a generated pairing, not yet persisted. Participant ids are
// player or team ids depending on the match type being generated.
type BracketMatch struct {
	Round        string
	OrderInRound int

	Participant1ID *int
	Participant2ID *int

	IsBye bool
}

type GenerateBracketParams struct {
	// ParticipantIDs in membership or enrollment order.
	ParticipantIDs []int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type lockedShuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (s *lockedShuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(n, swap)
}

// NewRandomShuffler returns a time-seeded Shuffler safe for concurrent use.
func NewRandomShuffler() Shuffler {
	return &lockedShuffler{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededShuffler returns a deterministic Shuffler for the given seed.
func NewSeededShuffler(seed int64) Shuffler {
	return &lockedShuffler{rnd: rand.New(rand.NewSource(seed))}
}

func intPtr(v int) *int {
	return &v
}
