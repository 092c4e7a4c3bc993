package services

import "errors"

var (
	// ErrBusy is returned when a login or registration is already running.
	ErrBusy = errors.New("authentication already in progress")
	// ErrNotSignedIn is returned by operations that need a signed-in user.
	ErrNotSignedIn = errors.New("not signed in")
)

// AuthError is a user-facing failure of a session operation. Message is safe
// to display; Err keeps the underlying cause for errors.Is/As.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Op + ": " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }
