// Package common contains shared constants and sentinel errors used across
// hrscreen components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// BearerPrefix is the Authorization header scheme accepted by the HTTP API.
const BearerPrefix = "Bearer "
