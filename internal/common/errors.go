// Package common defines shared constants and sentinel errors used across
// the taskboard client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage errors.
	ErrStorageWrite = errors.New("storage write failed")

	// Token lifecycle errors.
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrInvalidToken   = errors.New("invalid token")
)
