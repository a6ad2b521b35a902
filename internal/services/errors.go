package services

import "errors"

// Domain errors shared by the services. The API layer maps these to HTTP
// status codes; services never touch status codes themselves.
var (
	// ErrNotFound covers both a truly absent resource and one owned by a
	// different user. The two cases are deliberately indistinguishable so
	// ownership can't be probed by id.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a unique-field collision (username or email).
	ErrConflict = errors.New("resource already exists")

	// ErrUnauthorized is returned for any credential failure. The message is
	// the same whether the account is missing or the password is wrong.
	ErrUnauthorized = errors.New("invalid credentials")
)

// ValidationError describes malformed input on a single request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
