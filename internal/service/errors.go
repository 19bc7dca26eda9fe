package service

import (
	"errors"  // Error inspection
	"strings" // Driver message matching

	"gorm.io/gorm" // GORM error values
)

// Kind classifies a service failure; the HTTP layer maps each kind to a status
type Kind int

const (
	KindInternal       Kind = iota // Unhandled storage or runtime failure
	KindValidation                 // Malformed or missing input
	KindAuthentication             // Bad credentials
	KindAuthorization              // Missing, invalid or expired token
	KindNotFound                   // Missing or not-owned resource
	KindConflict                   // Uniqueness violation or resource in use
	KindInactiveHabit              // Completion of an inactive habit
	KindConfiguration              // Service misconfigured (e.g. no JWT secret)
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInactiveHabit:
		return "inactive_habit"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails
type Error struct {
	Kind    Kind   // Failure class
	Message string // Caller-safe message
	Err     error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind using the sentinel values below
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is(err, service.ErrNotFound) style checks
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrInactiveHabit  = &Error{Kind: KindInactiveHabit}
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrInternal       = &Error{Kind: KindInternal}
)

// Messages shared by several operations
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgHabitNotFound      = "Habit not found"
	MsgTagNotFound        = "Tag not found"
	MsgUserNotFound       = "User not found"
	MsgInvalidReference   = "Invalid reference"
	MsgTagExists          = "Tag with this name already exists"
	MsgTagInUse           = "Cannot delete tag that is currently in use"
	MsgUserExists         = "User with this email or username already exists"
	MsgInactiveHabit      = "Cannot complete an inactive habit"
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// isUniqueViolation recognises duplicate-key failures whether or not the
// driver supports gorm's error translation
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}

// isForeignKeyViolation recognises references to rows that do not exist
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}

// classify converts storage errors into service errors. Errors that are
// already classified pass through untouched.
func classify(err error, notFoundMsg, internalMsg string) error {
	if err == nil {
		return nil
	}
	var se *Error
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newError(KindNotFound, notFoundMsg, nil)
	case isUniqueViolation(err):
		return newError(KindConflict, "Resource already exists", err)
	case isForeignKeyViolation(err):
		return newError(KindValidation, MsgInvalidReference, err)
	default:
		return newError(KindInternal, internalMsg, err)
	}
}
