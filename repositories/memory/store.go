// Package memory is an in-process implementation of repositories.Store.
// It reproduces the constraint names and delete rules of db/schema.sql so the
// services behave the same on both backends.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tabletennis/models"
	"github.com/Dosada05/tabletennis/repositories"
)

type enrollmentKey struct {
	entityID     int
	tournamentID int
	categoryID   int
}

type memberKey struct {
	groupID  int
	playerID int
}

type storedEnrollment struct {
	seq int
	models.Enrollment
}

type storedDoublesEnrollment struct {
	seq int
	models.DoublesEnrollment
}

type state struct {
	seq int

	associations map[int]models.Association
	players      map[int]models.Player
	tournaments  map[int]models.Tournament
	categories   map[int]models.Category
	teams        map[int]models.Team
	groups       map[int]models.Group
	members      map[memberKey]models.GroupMembership
	matches      map[int]models.Match
	sets         map[int]models.SetResult
	enrollments  map[enrollmentKey]storedEnrollment
	doubles      map[enrollmentKey]storedDoublesEnrollment
}

func newState() *state {
	return &state{
		associations: map[int]models.Association{},
		players:      map[int]models.Player{},
		tournaments:  map[int]models.Tournament{},
		categories:   map[int]models.Category{},
		teams:        map[int]models.Team{},
		groups:       map[int]models.Group{},
		members:      map[memberKey]models.GroupMembership{},
		matches:      map[int]models.Match{},
		sets:         map[int]models.SetResult{},
		enrollments:  map[enrollmentKey]storedEnrollment{},
		doubles:      map[enrollmentKey]storedDoublesEnrollment{},
	}
}

func (s *state) nextID() int {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.associations {
		c.associations[k] = v
	}
	for k, v := range s.players {
		c.players[k] = clonePlayer(v)
	}
	for k, v := range s.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.teams {
		c.teams[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = cloneMatch(v)
	}
	for k, v := range s.sets {
		c.sets[k] = v
	}
	for k, v := range s.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range s.doubles {
		c.doubles[k] = v
	}
	return c
}

// shared is the state owned by one store and all of its transactional views.
type shared struct {
	mu    sync.Mutex
	data  *state
	clock func() time.Time
}

// Store keeps every table in memory behind a single mutex. A transaction holds
// the mutex for its whole duration and restores a snapshot when it fails.
type Store struct {
	sh   *shared
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{sh: &shared{data: newState(), clock: time.Now}}
}

// WithClock sets the clock used for created_at stamps.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.sh.clock = clock
	return s
}

// run executes fn with exclusive access to the tables. Inside a transaction the
// mutex is already held.
func (s *Store) run(fn func(d *state) error) error {
	if s.inTx {
		return fn(s.sh.data)
	}
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()
	return fn(s.sh.data)
}

func (s *Store) now() time.Time {
	return s.sh.clock().UTC()
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) (txErr error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()

	snapshot := s.sh.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.sh.data = snapshot
			panic(p)
		}
		if txErr != nil {
			s.sh.data = snapshot
		}
	}()

	return fn(&Store{sh: s.sh, inTx: true})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Players() repositories.PlayerRepository           { return &playerRepo{s} }
func (s *Store) Associations() repositories.AssociationRepository { return &associationRepo{s} }
func (s *Store) Tournaments() repositories.TournamentRepository   { return &tournamentRepo{s} }
func (s *Store) Categories() repositories.CategoryRepository      { return &categoryRepo{s} }
func (s *Store) Teams() repositories.TeamRepository               { return &teamRepo{s} }
func (s *Store) Groups() repositories.GroupRepository             { return &groupRepo{s} }
func (s *Store) Matches() repositories.MatchRepository            { return &matchRepo{s} }
func (s *Store) SetResults() repositories.SetResultRepository     { return &setResultRepo{s} }
func (s *Store) Enrollments() repositories.EnrollmentRepository   { return &enrollmentRepo{s} }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func clonePlayer(p models.Player) models.Player {
	p.AssociationID = cloneInt(p.AssociationID)
	p.PhotoKey = cloneString(p.PhotoKey)
	p.PhotoURL = nil
	p.Association = nil
	return p
}

func cloneMatch(m models.Match) models.Match {
	m.Round = cloneString(m.Round)
	m.BracketPosition = cloneInt(m.BracketPosition)
	m.AdvancesToMatchID = cloneInt(m.AdvancesToMatchID)
	m.Player1ID = cloneInt(m.Player1ID)
	m.Player2ID = cloneInt(m.Player2ID)
	m.Team1ID = cloneInt(m.Team1ID)
	m.Team2ID = cloneInt(m.Team2ID)
	m.GroupID = cloneInt(m.GroupID)
	return m
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func page[T any](items []T, opts repositories.ListOptions) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return items[:0]
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func uniqueViolation(constraint string) error {
	return repositories.NewConstraintError(repositories.ErrUniqueViolation, constraint)
}

func fkViolation(constraint string) error {
	return repositories.NewConstraintError(repositories.ErrForeignKeyViolation, constraint)
}

func checkViolation(constraint string) error {
	return repositories.NewConstraintError(repositories.ErrCheckViolation, constraint)
}

func intIs(p *int, v int) bool {
	return p != nil && *p == v
}
