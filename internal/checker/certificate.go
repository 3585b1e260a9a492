package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
	errs "github.com/khanhnv2901/sitecheck/internal/shared/errors"
)

// versionSSL30 represents the legacy SSL 3.0 protocol version (0x0300).
// Defined locally so we can report SSL 3.0 without referencing the
// deprecated tls.VersionSSL30 symbol.
const versionSSL30 uint16 = 0x0300

// CertificateInfo holds the certificate fields reported by the certificate check.
type CertificateInfo struct {
	SubjectCN     string
	IssuerCN      string
	NotAfter      time.Time
	DaysRemaining int
	TLSVersion    string
	CipherSuite   string
}

// fetchCertificate opens a TLS connection to the target and returns the
// negotiated connection state. The handshake performs standard chain and
// hostname verification.
func (i *Inspector) fetchCertificate(ctx context.Context, target *Target) (tls.ConnectionState, error) {
	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	conn, err := i.dialer.DialContext(ctx, "tcp", target.TLSAddress())
	if err != nil {
		return tls.ConnectionState{}, err
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return tls.ConnectionState{}, fmt.Errorf("dialer returned %T, want *tls.Conn", conn)
	}
	// Dialers that skip the handshake (custom test dialers) still need one.
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return tls.ConnectionState{}, err
	}
	return tlsConn.ConnectionState(), nil
}

// checkCertificate runs the certificate probe and turns its outcome into findings.
func (i *Inspector) checkCertificate(ctx context.Context, target *Target) []check.Finding {
	state, err := i.fetchCertificate(ctx, target)
	if err != nil {
		probeErr := classifyNetError(string(check.ProbeCertificate), err)
		i.logger.Warn("certificate probe failed",
			zap.String("target", target.URL),
			zap.String("address", target.TLSAddress()),
			zap.Error(probeErr),
		)
		return []check.Finding{certificateFailure(probeErr)}
	}
	return analyzeConnectionState(&state, i.now(), i.cfg.ExpiryWarningDays)
}

// certificateFailure renders a distinct message per failure family.
func certificateFailure(err *ProbeError) check.Finding {
	var msg string
	switch {
	case errors.Is(err, errs.ErrTLSVerification):
		msg = fmt.Sprintf("SSL certificate validation failed: %s", err.Reason)
	case errors.Is(err, errs.ErrConnectionFailure):
		msg = fmt.Sprintf("failed to establish secure connection: %s", err.Reason)
	default:
		msg = fmt.Sprintf("error checking SSL certificate: %v", err.Err)
	}
	return check.NewFinding(check.ProbeCertificate, check.SeverityFail, msg)
}

// analyzeConnectionState extracts certificate details from a completed
// handshake and grades the leaf certificate's remaining validity.
func analyzeConnectionState(state *tls.ConnectionState, now time.Time, warnDays int) []check.Finding {
	if state == nil || len(state.PeerCertificates) == 0 {
		return []check.Finding{
			check.NewFinding(check.ProbeCertificate, check.SeverityFail, "error checking SSL certificate: server presented no certificate"),
		}
	}

	info := analyzeCertificate(state.PeerCertificates[0], now)
	info.TLSVersion = tlsVersionString(state.Version)
	info.CipherSuite = cipherSuiteString(state.CipherSuite)

	findings := []check.Finding{
		check.NewFinding(check.ProbeCertificate, check.SeverityPass, "valid SSL certificate found"),
		check.NewFinding(check.ProbeCertificate, check.SeverityInfo, "certificate issued to: "+orUnknown(info.SubjectCN)),
		check.NewFinding(check.ProbeCertificate, check.SeverityInfo, "certificate issued by: "+orUnknown(info.IssuerCN)),
		check.NewFinding(check.ProbeCertificate, check.SeverityInfo,
			fmt.Sprintf("negotiated %s with %s", info.TLSVersion, info.CipherSuite)),
	}

	// Only TLS 1.2 and TLS 1.3 are acceptable today.
	if state.Version != 0 && state.Version < tls.VersionTLS12 {
		findings = append(findings, check.NewFinding(check.ProbeCertificate, check.SeverityWarn,
			fmt.Sprintf("outdated protocol %s, upgrade to TLS 1.2 or TLS 1.3", info.TLSVersion)))
	}

	return append(findings, expiryFinding(info.DaysRemaining, warnDays))
}

// analyzeCertificate extracts certificate information
func analyzeCertificate(cert *x509.Certificate, now time.Time) *CertificateInfo {
	return &CertificateInfo{
		SubjectCN:     cert.Subject.CommonName,
		IssuerCN:      cert.Issuer.CommonName,
		NotAfter:      cert.NotAfter,
		DaysRemaining: daysRemaining(cert.NotAfter, now),
	}
}

// daysRemaining counts whole days until notAfter. Partial days round down, so
// a certificate that expired an hour ago reports -1.
func daysRemaining(notAfter, now time.Time) int {
	return int(math.Floor(notAfter.Sub(now).Hours() / 24))
}

// expiryFinding grades the remaining validity window. Certificates with fewer
// than warnDays left are flagged as expiring soon.
func expiryFinding(days, warnDays int) check.Finding {
	switch {
	case days < 0:
		return check.NewFinding(check.ProbeCertificate, check.SeverityFail, "certificate has expired")
	case days < warnDays:
		return check.NewFinding(check.ProbeCertificate, check.SeverityWarn,
			fmt.Sprintf("certificate expiring soon (in %d days)", days))
	default:
		return check.NewFinding(check.ProbeCertificate, check.SeverityPass,
			fmt.Sprintf("certificate valid, %d days remaining", days))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// tlsVersionString converts TLS version constant to string
func tlsVersionString(version uint16) string {
	switch version {
	case versionSSL30:
		return "SSL 3.0"
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}

// cipherSuiteString converts cipher suite constant to string
func cipherSuiteString(suite uint16) string {
	return tls.CipherSuiteName(suite)
}
