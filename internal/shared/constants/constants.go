package constants

import "time"

const (
	// DefaultProbeTimeout bounds every TLS dial and HTTP request made by a scan.
	DefaultProbeTimeout = 10 * time.Second
	// MinProbeTimeout and MaxProbeTimeout are the bounds accepted from configuration.
	MinProbeTimeout = 5 * time.Second
	MaxProbeTimeout = 10 * time.Second
	// DefaultTLSPort is dialed for the certificate check when the URL has no explicit port.
	DefaultTLSPort = "443"
	// MaxRedirects caps redirect following for the header request.
	MaxRedirects = 10
)

const (
	// ExpiryWarningDays marks certificates expiring inside this many days as "expiring soon".
	ExpiryWarningDays = 30
	// TolerableFailures is the number of failing findings an HTTPS site may have and still be reported secure.
	TolerableFailures = 2
)

const (
	// MaxTargetLength rejects absurdly long inputs before parsing.
	MaxTargetLength = 2048
	// MaxRequestBodyBytes caps API request bodies.
	MaxRequestBodyBytes = 1 << 20
)
