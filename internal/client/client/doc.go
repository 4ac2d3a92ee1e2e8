// Package client talks to the Anchor sync service.
//
// GRPCClient implements Client over the AnchorSync gRPC service. It attaches
// the access token to every call, refreshes it once when the server reports
// it expired, and maps status codes to ErrUnauthorized and ErrUnavailable so
// callers can decide between retrying later and asking for a new login.
package client
