package store

import "errors"

// Store-level sentinels. The accounts service maps these onto its own
// error taxonomy; everything else a driver returns is a plain store failure.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already taken")
)
