package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	consts "github.com/khanhnv2901/sitecheck/internal/shared/constants"
)

// HTTPDoer issues the single GET used by the header and cookie checks.
// *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TLSDialer opens the raw TLS connection used by the certificate check.
// *tls.Dialer satisfies it; implementations must return a *tls.Conn.
type TLSDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// newHTTPClient returns a client bounded by cfg.Timeout at every stage.
// Keep-alives are disabled so scans never share connections, and proxy
// environment variables are ignored so the GET reaches the host directly.
func newHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: cfg.RootCAs},
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		DisableKeepAlives:     true,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       cfg.Timeout,
		CheckRedirect: redirectPolicy(cfg.FollowRedirects),
	}
}

// redirectPolicy either stops at the first response or follows up to
// MaxRedirects hops.
func redirectPolicy(follow bool) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}
		if len(via) >= consts.MaxRedirects {
			return fmt.Errorf("stopped after %d redirects", consts.MaxRedirects)
		}
		return nil
	}
}

// newTLSDialer verifies the chain against cfg.RootCAs (system pool when nil).
// ServerName is inferred from the dialed address.
func newTLSDialer(cfg Config) *tls.Dialer {
	return &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: cfg.Timeout},
		Config:    &tls.Config{RootCAs: cfg.RootCAs},
	}
}
