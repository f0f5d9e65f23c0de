package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/tabletennis/repositories"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validateInput checks the validate tags of an input struct.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must not exceed " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

var constraintErrors = map[string]error{
	repositories.ConstraintAssociationName:   ErrAssociationNameConflict,
	repositories.ConstraintCategoryName:      ErrCategoryNameConflict,
	repositories.ConstraintTeamPair:          ErrTeamConflict,
	repositories.ConstraintTeamDistinct:      ErrTeamSamePlayer,
	repositories.ConstraintGroupName:         ErrGroupNameConflict,
	repositories.ConstraintGroupMember:       ErrGroupMemberConflict,
	repositories.ConstraintSetNumber:         ErrSetNumberConflict,
	repositories.ConstraintEnrollment:        ErrEnrollmentConflict,
	repositories.ConstraintDoublesEnrollment: ErrEnrollmentConflict,
	repositories.ConstraintTournamentDates:   ErrTournamentDateOrder,
	repositories.ConstraintCategoryAges:      ErrCategoryAgeRange,
	repositories.ConstraintCategoryRules:     ErrCategoryRules,
	repositories.ConstraintSetPoints:         ErrNegativePoints,
	repositories.ConstraintMatchSlots:        ErrWrongParticipantSlots,
}

// translateStoreError turns a storage constraint violation into the error the
// matching pre-check would have returned. Other errors pass through.
func translateStoreError(err error) error {
	var ce *repositories.ConstraintError
	if !errors.As(err, &ce) {
		return err
	}
	if mapped, ok := constraintErrors[ce.Constraint]; ok {
		return mapped
	}
	switch {
	case errors.Is(err, repositories.ErrUniqueViolation):
		return fmt.Errorf("%w: %s", ErrConflict, ce.Constraint)
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		return fmt.Errorf("%w: %s", ErrReferenceInvalid, ce.Constraint)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidState, ce.Constraint)
	}
}

// translateDeleteError reports restrict violations of a delete as ErrInUse.
func translateDeleteError(err error, notFound error) error {
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return notFound
	case errors.Is(err, repositories.ErrForeignKeyViolation):
		name, _ := repositories.ConstraintName(err)
		return fmt.Errorf("%w: %s", ErrInUse, name)
	}
	return translateStoreError(err)
}

// notFoundOr maps ErrRecordNotFound to the given service error and wraps the rest.
// A nil err stays nil.
func notFoundOr(err error, notFound error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", action, err)
}
