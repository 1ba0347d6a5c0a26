package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses at the transport boundary.
var (
	ErrNotFound       = errors.New("not found")
	ErrNoCapacity     = errors.New("not enough rooms available for these dates")
	ErrUnauthorized   = errors.New("missing or invalid credentials")
	ErrForbidden      = errors.New("identity mismatch")
	ErrNotConfirmed   = errors.New("booking is not confirmed")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ValidationError carries a client-facing message about out-of-policy input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
