package bracket

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrOutOfOrder          = errors.New("feeder games are not final yet")
	ErrSlotConflict        = errors.New("destination slot already holds a different team")
	ErrMalformedBracket    = errors.New("malformed bracket")
)

// ValidationError reports malformed or missing input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IntegrityError reports that stored bracket state contradicts the graph:
// out-of-order finalization, conflicting slot writes, or a bad seed.
type IntegrityError struct {
	Reason string
	Err    error
}

func (e *IntegrityError) Error() string {
	if e.Err == nil {
		return "bracket integrity: " + e.Reason
	}
	return fmt.Sprintf("bracket integrity: %s: %v", e.Reason, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// Invalid builds a *ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Integrity builds an *IntegrityError, optionally wrapping a sentinel.
func Integrity(err error, format string, args ...any) error {
	return &IntegrityError{Reason: fmt.Sprintf(format, args...), Err: err}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsIntegrity(err error) bool {
	var i *IntegrityError
	return errors.As(err, &i)
}
