// Package common contains shared constants and sentinel errors used across
// the storefront server.
package common

const (
	// AuthorizationHeaderName carries the bearer token on every non-auth call.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// TokenType is reported to clients alongside an issued access token.
	TokenType = "bearer"
)
