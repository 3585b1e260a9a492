package checker

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
	consts "github.com/khanhnv2901/sitecheck/internal/shared/constants"
	errs "github.com/khanhnv2901/sitecheck/internal/shared/errors"
)

// drainLimit caps how much of the response body is read before closing it.
const drainLimit = 64 << 10

// Config controls network behavior of a scan. It is passed explicitly so
// scans never depend on process-wide client defaults.
type Config struct {
	Timeout                 time.Duration  // Bound for the TLS dial and the HTTP GET
	FollowRedirects         bool           // Follow redirects on the header request
	CheckContentTypeOptions bool           // Also require X-Content-Type-Options
	ExpiryWarningDays       int            // Certificates expiring sooner are flagged
	RootCAs                 *x509.CertPool // Trust roots; nil means the system pool
	UserAgent               string
}

// DefaultConfig mirrors the behavior of a stock HTTP client: redirects are
// followed and every standard header is checked.
func DefaultConfig() Config {
	return Config{
		Timeout:                 consts.DefaultProbeTimeout,
		FollowRedirects:         true,
		CheckContentTypeOptions: true,
		ExpiryWarningDays:       consts.ExpiryWarningDays,
		UserAgent:               "sitecheck/1.0",
	}
}

// Option customizes an Inspector.
type Option func(*Inspector)

// WithHTTPClient replaces the client used for the header request.
func WithHTTPClient(client HTTPDoer) Option {
	return func(i *Inspector) { i.client = client }
}

// WithTLSDialer replaces the dialer used for the certificate check.
func WithTLSDialer(dialer TLSDialer) Option {
	return func(i *Inspector) { i.dialer = dialer }
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Inspector) { i.logger = logger }
}

// WithClock overrides the time source used for certificate expiry math.
func WithClock(now func() time.Time) Option {
	return func(i *Inspector) { i.now = now }
}

// Inspector runs the security probes against a single URL.
// It holds no per-scan state, so one Inspector may serve concurrent scans.
type Inspector struct {
	cfg    Config
	client HTTPDoer
	dialer TLSDialer
	logger *zap.Logger
	now    func() time.Time
}

// NewInspector builds an Inspector. Zero values in cfg fall back to the defaults.
func NewInspector(cfg Config, opts ...Option) *Inspector {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.ExpiryWarningDays <= 0 {
		cfg.ExpiryWarningDays = defaults.ExpiryWarningDays
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	i := &Inspector{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.client == nil {
		i.client = newHTTPClient(cfg)
	}
	if i.dialer == nil {
		i.dialer = newTLSDialer(cfg)
	}
	if i.logger == nil {
		i.logger = zap.NewNop()
	}
	return i
}

// Config returns the effective configuration.
func (i *Inspector) Config() Config {
	return i.cfg
}

// Scan inspects raw and always returns a renderable result. Invalid input is
// rejected before any network call; probe failures become fail findings.
func (i *Inspector) Scan(ctx context.Context, raw string) *check.Result {
	start := i.now()

	target, err := NormalizeTarget(raw)
	if err != nil {
		i.logger.Info("rejected invalid target", zap.String("input", raw), zap.Error(err))
		return check.NewResult(raw, false, summaryInvalid, []check.Finding{
			check.NewFinding(check.ProbeTarget, check.SeverityFail, err.Error()),
		}, start, 0)
	}

	logger := i.logger.With(zap.String("target", target.URL))
	logger.Debug("scan started")

	findings := []check.Finding{checkHTTPS(target)}

	if target.IsHTTPS() {
		findings = append(findings, i.runProbe(check.ProbeCertificate, func() []check.Finding {
			return i.checkCertificate(ctx, target)
		})...)
	}

	// The header request runs for plain-http targets too.
	findings = append(findings, i.runProbe(check.ProbeHeaders, func() []check.Finding {
		return i.checkResponse(ctx, target)
	})...)

	secure, summary := Aggregate(target.IsHTTPS(), findings)
	duration := i.now().Sub(start)

	logger.Info("scan complete",
		zap.Bool("secure", secure),
		zap.Int("failures", check.CountSeverity(findings, check.SeverityFail)),
		zap.Int("warnings", check.CountSeverity(findings, check.SeverityWarn)),
		zap.Duration("duration", duration),
	)

	return check.NewResult(target.URL, secure, summary, findings, start, duration)
}

// checkHTTPS reports whether the target uses the secure scheme.
func checkHTTPS(target *Target) check.Finding {
	if target.IsHTTPS() {
		return check.NewFinding(check.ProbeHTTPS, check.SeverityPass, "site uses HTTPS")
	}
	return check.NewFinding(check.ProbeHTTPS, check.SeverityFail,
		"site does not use HTTPS - data in transit is unencrypted")
}

// checkResponse fetches the target once and inspects its headers and cookies.
// When no response is obtained the cookie check is skipped.
func (i *Inspector) checkResponse(ctx context.Context, target *Target) []check.Finding {
	resp, err := i.fetch(ctx, target)
	if err != nil {
		probeErr := classifyNetError(string(check.ProbeHeaders), err)
		i.logger.Warn("header request failed",
			zap.String("target", target.URL),
			zap.Error(probeErr),
		)
		return []check.Finding{headerFailure(probeErr)}
	}

	headers := AnalyzeSecurityHeaders(resp.Header, i.cfg.CheckContentTypeOptions)
	findings := append([]check.Finding{}, headers.Findings...)
	return append(findings, i.runProbe(check.ProbeCookies, func() []check.Finding {
		return cookieFindings(resp)
	})...)
}

// fetch issues the GET and returns the response with its body already drained
// and closed; only headers are inspected.
func (i *Inspector) fetch(ctx context.Context, target *Target) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", i.cfg.UserAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		_ = resp.Body.Close()
	}

	i.logger.Debug("header request complete",
		zap.String("target", target.URL),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func headerFailure(err *ProbeError) check.Finding {
	msg := fmt.Sprintf("error checking security headers: %s", err.Reason)
	if errors.Is(err, errs.ErrProbe) && err.Err != nil {
		msg = fmt.Sprintf("error checking security headers: %v", err.Err)
	}
	return check.NewFinding(check.ProbeHeaders, check.SeverityFail, msg)
}

// runProbe isolates a probe so a panic becomes a fail finding instead of
// aborting the scan.
func (i *Inspector) runProbe(probe check.Probe, fn func() []check.Finding) (findings []check.Finding) {
	defer func() {
		if r := recover(); r != nil {
			err := &ProbeError{Probe: string(probe), Kind: errs.ErrProbe, Reason: fmt.Sprintf("panic: %v", r)}
			i.logger.Error("probe panicked", zap.String("probe", string(probe)), zap.Error(err))
			findings = []check.Finding{
				check.NewFinding(probe, check.SeverityFail, fmt.Sprintf("error running %s check: %v", probe, r)),
			}
		}
	}()
	return fn()
}
