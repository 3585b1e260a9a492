package checker

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	consts "github.com/khanhnv2901/sitecheck/internal/shared/constants"
	errs "github.com/khanhnv2901/sitecheck/internal/shared/errors"
)

const (
	schemeHTTPS = "https"
	schemeHTTP  = "http"
)

// hostProfile is the IDNA lookup profile without STD3 rules, so hosts such as
// dev_app.example.com or _dmarc.example.com resolve as they do in browsers.
var hostProfile = idna.New(idna.MapForLookup(), idna.BidiRule(), idna.StrictDomainName(false))

// Target contains the normalized form of a user-supplied URL.
type Target struct {
	Original string // Raw input as given by the caller
	URL      string // Full normalized URL (always carries a scheme)
	Scheme   string // http or https
	Host     string // ASCII hostname without port
	Port     string // Explicit port, if any
}

// IsHTTPS reports whether the target uses the secure scheme.
func (t *Target) IsHTTPS() bool {
	return t.Scheme == schemeHTTPS
}

// TLSAddress is the host:port dialed by the certificate check.
func (t *Target) TLSAddress() string {
	port := t.Port
	if port == "" {
		port = consts.DefaultTLSPort
	}
	return net.JoinHostPort(t.Host, port)
}

// NormalizeTarget parses raw input into a Target. Inputs without an http:// or
// https:// prefix get https:// prepended:
//   - example.com             -> https://example.com
//   - http://example.com/path -> http://example.com/path
//   - bücher.example          -> https://xn--bcher-kva.example
//
// No network I/O happens here; every failure wraps ErrInvalidTarget.
func NormalizeTarget(raw string) (*Target, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil, fmt.Errorf("%w: empty URL", errs.ErrInvalidTarget)
	}
	if len(input) > consts.MaxTargetLength {
		return nil, fmt.Errorf("%w: URL longer than %d characters", errs.ErrInvalidTarget, consts.MaxTargetLength)
	}

	lower := strings.ToLower(input)
	if !strings.HasPrefix(lower, schemeHTTP+"://") && !strings.HasPrefix(lower, schemeHTTPS+"://") {
		input = schemeHTTPS + "://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidTarget, err)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: no host in %q", errs.ErrInvalidTarget, raw)
	}

	// IP literals are left alone; names go through IDNA so DNS and SNI see ASCII.
	if net.ParseIP(host) == nil {
		ascii, err := hostProfile.ToASCII(host)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid host %q: %v", errs.ErrInvalidTarget, host, err)
		}
		host = ascii
	}

	port := parsed.Port()
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if port != "" {
		parsed.Host = net.JoinHostPort(host, port)
	} else {
		parsed.Host = host
	}
	if strings.Contains(host, ":") && port == "" {
		parsed.Host = "[" + host + "]"
	}

	return &Target{
		Original: raw,
		URL:      parsed.String(),
		Scheme:   parsed.Scheme,
		Host:     host,
		Port:     port,
	}, nil
}
