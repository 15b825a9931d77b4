package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. Every rule violation
// the engine reports wraps exactly one of these kinds.

var (
	// ErrValidation reports malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound reports an unknown task id or reward cost.
	ErrNotFound = errors.New("not found")

	// ErrState reports an illegal transition (completing a completed day,
	// completing a task that is not active, creating a second profile).
	ErrState = errors.New("invalid state")

	// ErrInsufficientPoints reports a redemption that exceeds the balance.
	ErrInsufficientPoints = errors.New("insufficient points")
)

// Error is a rule violation with a user-facing message.
// errors.Is(err, ErrValidation) etc. match on Kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the sentinel kind.
func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error kind names as reported to shells.
const (
	KindValidation         = "validation"
	KindNotFound           = "not_found"
	KindState              = "state"
	KindInsufficientPoints = "insufficient_points"
	KindInternal           = "internal"
)

// KindOf classifies err for a structured failure response.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrState):
		return KindState
	case errors.Is(err, ErrInsufficientPoints):
		return KindInsufficientPoints
	default:
		return KindInternal
	}
}
