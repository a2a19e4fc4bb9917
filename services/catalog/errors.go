package catalog

import "errors"

var (
	// ErrNotFound means the upstream catalog has no entry for the requested ID.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrUpstreamUnavailable means the upstream kept failing after all retry
	// attempts were spent.
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")
	// ErrDataIntegrity means an upstream payload was missing required fields
	// and was discarded without being cached or stored.
	ErrDataIntegrity = errors.New("catalog payload failed validation")
)
