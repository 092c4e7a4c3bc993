// Package common contains shared constants and sentinel errors used across
// taskboard client components.
package common

// AuthorizationHeaderName is the HTTP header (and lowercase gRPC metadata key)
// carrying the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName correlates a single dispatch across client and server logs.
const RequestIDHeaderName = "X-Request-ID"

// BearerScheme prefixes the access token in the Authorization header.
const BearerScheme = "Bearer"

// Remote auth endpoints, relative to the configured server URL.
const (
	PathLogin          = "/auth/login"
	PathRegister       = "/auth/register"
	PathVerify         = "/auth/verify"
	PathLogout         = "/auth/logout"
	PathRefresh        = "/auth/refresh"
	PathProfile        = "/auth/profile"
	PathChangePassword = "/auth/change-password"
)
