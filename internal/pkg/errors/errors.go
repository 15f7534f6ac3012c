package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalid            = errors.New("invalid")
	ErrConflict           = errors.New("conflict")
	ErrTooMany            = errors.New("too many requests")
	ErrInternal           = errors.New("internal")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCodeNotFound       = errors.New("verification code not found")
	ErrCodeMismatch       = errors.New("verification code mismatch")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError is an ErrInvalid carrying a message that is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// Message returns the user-facing text of a ValidationError, or fallback for anything else.
func Message(err error, fallback string) string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Msg != "" {
		return verr.Msg
	}
	return fallback
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
