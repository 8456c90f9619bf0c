package services

import "errors"

// Error taxonomy surfaced to the transport layer. All are terminal for the
// current request; the handlers map them onto HTTP statuses.
var (
	// ErrValidation indicates a missing or empty required field.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a duplicate username at registration.
	ErrConflict = errors.New("username already taken")

	// ErrNotFound indicates a referenced username or message id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the authenticated identity lacks rights over
	// the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrAuthentication indicates a wrong password at login.
	ErrAuthentication = errors.New("invalid credentials")
)
