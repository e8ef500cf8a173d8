package common

import "errors"

// Callers should match these values with errors.Is.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")
	ErrRateLimited    = errors.New("too many requests")

	// Registration and login outcomes.
	ErrAlreadyExists               = errors.New("user already exists")
	ErrInvalidCredentials          = errors.New("invalid credentials")
	ErrGoogleOnlyAccount           = errors.New("account uses google sign-in")
	ErrEmailRegisteredWithPassword = errors.New("email already registered with password")
	ErrEmailLinkedToOtherGoogle    = errors.New("email linked to another google account")

	// Session and identity token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError is a rejected input whose message is safe to show to the
// client. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a ValidationError with msg.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
