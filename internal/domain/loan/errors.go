package loan

import "errors"

// Base error kinds. Guard failures wrap one of these with the specific
// message, so callers dispatch on errors.Is and users still see which
// guard rejected the operation.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not permitted")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("loan not found")
	ErrConflict     = errors.New("state conflict")
)

// ErrorKind labels err with its machine-readable kind.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
