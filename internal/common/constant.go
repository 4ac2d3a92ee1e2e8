// Package common contains shared constants and sentinel errors used across
// Anchor components.
package common

// AccessTokenHeaderName is the gRPC/HTTP metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ServerStatusOK is returned by the liveness check.
const ServerStatusOK = "OK"
