// Package common contains shared constants and sentinel errors used across
// the server and the command-line client.
package common

import "time"

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed back on every response.
const RequestIDHeaderName = "X-Request-ID"

// DeletionGracePeriod is the window between a deletion request and the
// scheduled removal of the account.
const DeletionGracePeriod = 30 * 24 * time.Hour

// Auth providers stored in users.auth_provider.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)
