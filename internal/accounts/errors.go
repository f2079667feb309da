package accounts

import "errors"

// Every operation resolves its failure to exactly one of these kinds.
// The HTTP layer owns the mapping to status codes; driver-level detail is
// wrapped underneath and logged, never returned to the caller.
var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("access denied")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("all fields are required")
	ErrStore              = errors.New("store failure")
	ErrMailDispatch       = errors.New("mail dispatch failure")
)
