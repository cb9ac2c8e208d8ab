// Package common contains shared constants and sentinel errors used across
// signin components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound console requests.
const AccessTokenHeaderName = "access_token"

// SessionCookieName is the cookie that carries the signed session token
// for browser requests.
const SessionCookieName = "signin_session"
