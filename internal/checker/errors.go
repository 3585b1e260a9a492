package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"

	errs "github.com/khanhnv2901/sitecheck/internal/shared/errors"
)

// ProbeError records why a single probe failed. Kind is one of the sentinel
// errors from internal/shared/errors, so callers can match with errors.Is.
type ProbeError struct {
	Probe  string
	Kind   error
	Reason string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Probe, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Probe, e.Reason, e.Err)
}

func (e *ProbeError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classifyNetError maps a raw dial/handshake/request error onto the scan's
// error taxonomy and a short human-readable reason.
func classifyNetError(probe string, err error) *ProbeError {
	if err == nil {
		return nil
	}

	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe
	}

	if reason := tlsErrorReason(err); reason != "" {
		return &ProbeError{Probe: probe, Kind: errs.ErrTLSVerification, Reason: reason, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ProbeError{
			Probe:  probe,
			Kind:   errs.ErrConnectionFailure,
			Reason: fmt.Sprintf("could not resolve host %s", dnsErr.Name),
			Err:    err,
		}
	}

	if isTimeoutError(err) {
		return &ProbeError{Probe: probe, Kind: errs.ErrConnectionFailure, Reason: "connection timed out", Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &ProbeError{Probe: probe, Kind: errs.ErrConnectionFailure, Reason: "connection refused or unreachable", Err: err}
	}

	return &ProbeError{Probe: probe, Kind: errs.ErrProbe, Reason: "unexpected error", Err: err}
}

// tlsErrorReason normalizes certificate verification failures into stable strings.
func tlsErrorReason(err error) string {
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return "certificate signed by unknown authority"
	}
	var hostnameError x509.HostnameError
	if errors.As(err, &hostnameError) {
		return "certificate hostname mismatch"
	}
	var certInvalid x509.CertificateInvalidError
	if errors.As(err, &certInvalid) {
		if certInvalid.Reason == x509.Expired {
			return "certificate has expired or is not yet valid"
		}
		return "certificate is invalid"
	}
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return "certificate verification failed"
	}
	return ""
}

// isTimeoutError checks if an error is a timeout.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
