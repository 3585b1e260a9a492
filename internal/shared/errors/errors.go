package errors

import "errors"

// Scan errors
var (
	// ErrInvalidTarget is returned when no host can be extracted from the input URL.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrConnectionFailure covers DNS, TCP and timeout failures while probing.
	ErrConnectionFailure = errors.New("connection failure")
	// ErrTLSVerification signals an untrusted, mismatched or expired certificate chain.
	ErrTLSVerification = errors.New("tls verification failure")
	// ErrProbe is any other failure inside a single probe.
	ErrProbe = errors.New("probe error")
)

// ErrValidation marks a configuration or request value outside its allowed range.
var ErrValidation = errors.New("validation error")
