package common

import "errors"

var (
	ErrNotFound           = errors.New("Not found.")
	ErrInvalidUserID      = errors.New("Invalid user id.")
	ErrInvalidCredentials = errors.New("Invalid credentials.")
	ErrNotAuthenticated   = errors.New("Authentication credentials were not provided.")
	ErrInvalidToken       = errors.New("Invalid token.")
	ErrUserInactive       = errors.New("User inactive or deleted.")

	ErrTokenHeaderNoCredentials = errors.New("Invalid token header. No credentials provided.")
	ErrTokenHeaderSpaces        = errors.New("Invalid token header. Token string should not contain spaces.")
)

// ConflictError reports a unique constraint violation on a single column.
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
