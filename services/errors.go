package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Every error returned by the services wraps exactly one of them.
var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
)

// Not found.
var (
	ErrPlayerNotFound      = fmt.Errorf("%w: player not found", ErrNotFound)
	ErrAssociationNotFound = fmt.Errorf("%w: association not found", ErrNotFound)
	ErrTournamentNotFound  = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("%w: category not found", ErrNotFound)
	ErrTeamNotFound        = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrGroupNotFound       = fmt.Errorf("%w: group not found", ErrNotFound)
	ErrGroupMemberNotFound = fmt.Errorf("%w: player is not a member of the group", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrSetResultNotFound   = fmt.Errorf("%w: set result not found", ErrNotFound)
	ErrEnrollmentNotFound  = fmt.Errorf("%w: enrollment not found", ErrNotFound)
)

// Invariant violations.
var (
	ErrValidationFailed = fmt.Errorf("%w: validation failed", ErrInvalidState)

	ErrTournamentDateOrder = fmt.Errorf("%w: dates must satisfy registration_start <= registration_end <= start_date <= end_date", ErrInvalidState)
	ErrNoTables            = fmt.Errorf("%w: available_tables must be at least 1", ErrInvalidState)
	ErrCategoryAgeRange    = fmt.Errorf("%w: age_min must not exceed age_max", ErrInvalidState)
	ErrCategoryRules       = fmt.Errorf("%w: sets_per_match and points_per_set must be positive", ErrInvalidState)
	ErrBirthDateInFuture   = fmt.Errorf("%w: birth_date is in the future", ErrInvalidState)
	ErrTeamSamePlayer      = fmt.Errorf("%w: a team needs two different players", ErrInvalidState)

	ErrTableOutOfRange       = fmt.Errorf("%w: table number outside the tournament's tables", ErrInvalidState)
	ErrSameParticipant       = fmt.Errorf("%w: a match needs two different participants", ErrInvalidState)
	ErrWrongParticipantSlots = fmt.Errorf("%w: participant slots do not match the match type", ErrInvalidState)
	ErrByeParticipants       = fmt.Errorf("%w: a bye match holds at most one participant", ErrInvalidState)
	ErrMatchTypeImmutable    = fmt.Errorf("%w: match type cannot be changed", ErrInvalidState)
	ErrParticipantsImmutable = fmt.Errorf("%w: match participants cannot be changed", ErrInvalidState)
	ErrGroupScope            = fmt.Errorf("%w: group belongs to another tournament or category", ErrInvalidState)
	ErrAdvanceScope          = fmt.Errorf("%w: next match belongs to another tournament, category or type", ErrInvalidState)
	ErrAdvanceCycle          = fmt.Errorf("%w: bracket link would create a cycle", ErrInvalidState)

	ErrSetNumberNotConsecutive = fmt.Errorf("%w: set number must follow the last recorded set", ErrInvalidState)
	ErrSetNumberExceedsMatch   = fmt.Errorf("%w: set number exceeds the category's sets per match", ErrInvalidState)
	ErrNegativePoints          = fmt.Errorf("%w: points cannot be negative", ErrInvalidState)
	ErrSetNumberImmutable      = fmt.Errorf("%w: set number cannot be changed", ErrInvalidState)
	ErrOnlyLastSetDeletable    = fmt.Errorf("%w: only the last set of a match can be deleted", ErrInvalidState)
	ErrMatchAlreadyDecided     = fmt.Errorf("%w: match is already decided", ErrInvalidState)

	ErrMatchPending         = fmt.Errorf("%w: match has no winner yet", ErrInvalidState)
	ErrNoNextMatch          = fmt.Errorf("%w: match does not advance to another match", ErrInvalidState)
	ErrNextMatchFull        = fmt.Errorf("%w: next match already has both participants", ErrInvalidState)
	ErrAlreadyAdvanced      = fmt.Errorf("%w: winner already placed in the next match", ErrInvalidState)
	ErrParticipantKind      = fmt.Errorf("%w: participant kind does not fit the next match", ErrInvalidState)
	ErrRoundNotPlayable     = fmt.Errorf("%w: round already has a following round", ErrInvalidState)
	ErrRegistrationClosed   = fmt.Errorf("%w: registration is not open", ErrInvalidState)
	ErrAgeNotEligible       = fmt.Errorf("%w: player's age is outside the category range", ErrInvalidState)
	ErrGenderNotEligible    = fmt.Errorf("%w: player's gender does not match the category", ErrInvalidState)
	ErrReferenceInvalid     = fmt.Errorf("%w: referenced record does not exist", ErrInvalidState)
	ErrInUse                = fmt.Errorf("%w: record is still referenced", ErrInvalidState)
	ErrUnsupportedPhotoType = fmt.Errorf("%w: unsupported photo content type", ErrInvalidState)
)

// Uniqueness violations.
var (
	ErrAssociationNameConflict = fmt.Errorf("%w: association name already exists", ErrConflict)
	ErrCategoryNameConflict    = fmt.Errorf("%w: category name already exists", ErrConflict)
	ErrTeamConflict            = fmt.Errorf("%w: a team with these players already exists", ErrConflict)
	ErrGroupNameConflict       = fmt.Errorf("%w: group name already used in this tournament category", ErrConflict)
	ErrGroupMemberConflict     = fmt.Errorf("%w: player is already in the group", ErrConflict)
	ErrSetNumberConflict       = fmt.Errorf("%w: set number already recorded", ErrConflict)
	ErrEnrollmentConflict      = fmt.Errorf("%w: already enrolled", ErrConflict)
)

// Input shape problems.
var (
	ErrNotEnoughParticipants = fmt.Errorf("%w: at least 2 participants are required", ErrPrecondition)
	ErrUnknownMatchType      = fmt.Errorf("%w: unknown match type", ErrPrecondition)
	ErrNotEliminationRound   = fmt.Errorf("%w: round is not an elimination round", ErrPrecondition)
	ErrFinalRound            = fmt.Errorf("%w: round is the final", ErrPrecondition)
	ErrEmptyRound            = fmt.Errorf("%w: round has no matches", ErrPrecondition)
	ErrPhotoStorageDisabled  = fmt.Errorf("%w: photo storage is not configured", ErrPrecondition)
)

// ValidationError reports field-level input failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%v (%s)", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
