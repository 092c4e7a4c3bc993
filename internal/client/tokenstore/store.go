// Package tokenstore persists the access/refresh credential pair with
// independent expiries. It knows nothing about the network: the request
// pipeline and the session layer are its only callers, and any Store
// implementation can be swapped in without them noticing.
package tokenstore

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Entry names, shared by every backend.
const (
	accessName  = "access_token"
	refreshName = "refresh_token"
)

// Tokens is whatever subset of the pair is currently present and unexpired.
// An absent or expired entry reads as "".
type Tokens struct {
	Access  string
	Refresh string
}

// Empty reports whether neither token is present.
func (t Tokens) Empty() bool {
	return t.Access == "" && t.Refresh == ""
}

// Store is the credential store contract.
//
// Save overwrites both tokens and must report every write failure.
// Read never fails because an entry is missing or expired.
// Clear removes both entries and is idempotent.
type Store interface {
	Save(ctx context.Context, access, refresh string) error
	Read(ctx context.Context) (Tokens, error)
	Clear(ctx context.Context) error
}

// Lifetimes are the local expiries applied on Save.
type Lifetimes struct {
	Access  time.Duration
	Refresh time.Duration
}

// DefaultLifetimes mirror what the task-board service issues.
var DefaultLifetimes = Lifetimes{Access: 15 * time.Minute, Refresh: 24 * time.Hour}

type options struct {
	lifetimes Lifetimes
	now       func() time.Time
	sealKey   []byte
}

// Option configures a Store backend.
type Option func(*options)

// WithLifetimes overrides DefaultLifetimes.
func WithLifetimes(l Lifetimes) Option {
	return func(o *options) { o.lifetimes = l }
}

// WithClock replaces time.Now; tests use it to cross expiry boundaries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSealKey makes SQLiteStore encrypt token values at rest.
// The key must be a valid AES key (see cryptox.DeriveKey).
func WithSealKey(key []byte) Option {
	return func(o *options) { o.sealKey = key }
}

func newOptions(opts []Option) options {
	o := options{lifetimes: DefaultLifetimes, now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// expiresAt is now+ttl, or the token's own "exp" claim when it is a JWT that
// expires sooner. Opaque tokens always get now+ttl.
func expiresAt(token string, now time.Time, ttl time.Duration) time.Time {
	local := now.Add(ttl)

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return local
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.Before(local) {
		return local
	}
	return claims.ExpiresAt.Time
}
