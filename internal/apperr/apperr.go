// Package apperr defines the closed set of error kinds surfaced by the usecases.
//
// Every error leaving a usecase carries exactly one kind. The boundary layer maps
// kinds to transport codes with a total switch over Kind.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientPreferences
	KindGone
)

var kindNames = [...]string{
	KindInternal:                "internal",
	KindValidation:              "validation",
	KindForbidden:               "forbidden",
	KindNotFound:                "not_found",
	KindConflict:                "conflict",
	KindInsufficientPreferences: "insufficient_preferences",
	KindGone:                    "gone",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindInternal]
	}
	return kindNames[k]
}

var (
	ErrInternal                = errors.New("internal error")
	ErrValidation              = errors.New("validation failed")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrInsufficientPreferences = errors.New("insufficient preferences")
	ErrGone                    = errors.New("gone")
)

var sentinels = [...]error{
	KindInternal:                ErrInternal,
	KindValidation:              ErrValidation,
	KindForbidden:               ErrForbidden,
	KindNotFound:                ErrNotFound,
	KindConflict:                ErrConflict,
	KindInsufficientPreferences: ErrInsufficientPreferences,
	KindGone:                    ErrGone,
}

// Error is a kind plus a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == sentinels[e.Kind]
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

func Forbidden(format string, args ...any) error {
	return New(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return New(KindConflict, format, args...)
}

func Gone(format string, args ...any) error {
	return New(KindGone, format, args...)
}

func InsufficientPreferences(contributing int) error {
	return New(KindInsufficientPreferences,
		"at least 2 members must set preferences, got %d", contributing)
}

// Internal wraps an unexpected failure. Errors that already carry a kind are
// returned untouched so a specific kind is never downgraded.
func Internal(msg string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// ActiveRoundError is the conflict returned when a group already has a voting round.
type ActiveRoundError struct {
	RoundID uuid.UUID
}

func (e *ActiveRoundError) Error() string {
	return fmt.Sprintf("group already has an active round %s", e.RoundID)
}

func (e *ActiveRoundError) Is(target error) bool {
	return target == ErrConflict
}

// KindOf reports the kind carried by err. Untagged errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k := KindValidation; int(k) < len(sentinels); k++ {
		if errors.Is(err, sentinels[k]) {
			return k
		}
	}
	return KindInternal
}

// Message returns the caller-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return ErrInternal.Error()
		}
		return e.Message
	}
	if KindOf(err) == KindInternal {
		return ErrInternal.Error()
	}
	return err.Error()
}
