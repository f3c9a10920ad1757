package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrUnauthorized       = errors.New("unauthorized")

	// Lookup errors
	ErrInvalidUPI    = errors.New("invalid UPI address")
	ErrInvalidIFSC   = errors.New("invalid IFSC code")
	ErrUnknownHandle = errors.New("unknown UPI handle")
	ErrUpstream      = errors.New("upstream lookup failed")

	// ErrFeatureDisabled is returned when an optional backend is not configured.
	ErrFeatureDisabled = errors.New("feature disabled")
)
