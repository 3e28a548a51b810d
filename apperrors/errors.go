package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service layer. Services wrap these with context via
// fmt.Errorf("...: %w", ...); controllers map them to HTTP statuses with
// errors.Is, never by matching message strings.
var (
	// ErrInvalidArgument marks missing or malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound covers both a genuinely absent resource and one the caller
	// has no role on. Collapsing the two keeps resource existence from
	// leaking to unauthorized callers.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is used only when the caller already holds some role on
	// the resource, so its existence is not a secret, but the operation
	// needs a higher one.
	ErrForbidden = errors.New("forbidden")

	// ErrGone marks an expired or exhausted public link.
	ErrGone = errors.New("gone")

	// ErrInvalidState marks operations rejected by lifecycle rules, e.g. a
	// restore attempted after the trash window has elapsed.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks a duplicate unique key.
	ErrConflict = errors.New("conflict")

	// ErrInternal wraps storage and collaborator failures.
	ErrInternal = errors.New("internal error")
)

func InvalidArgumentf(format string, args ...interface{}) error {
	return wrapf(ErrInvalidArgument, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return wrapf(ErrNotFound, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return wrapf(ErrForbidden, format, args...)
}

func Gonef(format string, args ...interface{}) error {
	return wrapf(ErrGone, format, args...)
}

func InvalidStatef(format string, args ...interface{}) error {
	return wrapf(ErrInvalidState, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return wrapf(ErrConflict, format, args...)
}

// Internal wraps a collaborator failure so callers can detect the class with
// errors.Is while keeping the cause in the chain.
func Internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
