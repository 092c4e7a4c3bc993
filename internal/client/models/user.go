// Package models defines client-side data models used by the taskboard CLI.
package models

import "time"

// User is the denormalized profile the session layer keeps for the signed-in
// account and persists as the last-known profile.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName falls back to the username when no name was given.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// ProfileUpdate is a partial profile edit; nil fields are left unchanged.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
}

// Credentials are what the user types at the sign-in prompt.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

// Registration creates a new account. Name is optional.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
}
