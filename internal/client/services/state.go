package services

import "github.com/dmitrijs2005/taskboard/internal/client/models"

// Status is the session lifecycle phase.
type Status int

const (
	StatusInitializing Status = iota
	StatusUnauthenticated
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. User is set only when Authenticated;
// Busy is true while a login or registration is in flight.
type State struct {
	Status Status
	User   *models.User
	Busy   bool
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
