package checker

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
)

// CookieFinding records which protective attributes a cookie lacks.
type CookieFinding struct {
	Name            string
	MissingSecure   bool
	MissingHTTPOnly bool
}

// AnalyzeCookies inspects Set-Cookie headers for missing Secure/HttpOnly flags.
// Only cookies missing at least one flag are returned.
func AnalyzeCookies(resp *http.Response) []CookieFinding {
	if resp == nil {
		return nil
	}

	findings := make([]CookieFinding, 0)
	for _, cookie := range resp.Cookies() {
		finding := CookieFinding{
			Name:            cookie.Name,
			MissingSecure:   !cookie.Secure,
			MissingHTTPOnly: !cookie.HttpOnly,
		}
		if finding.MissingSecure || finding.MissingHTTPOnly {
			findings = append(findings, finding)
		}
	}
	return findings
}

// cookieFindings grades the response's cookies. No cookies yields a single
// info finding; otherwise Secure and HttpOnly are reported independently.
func cookieFindings(resp *http.Response) []check.Finding {
	if resp == nil || len(resp.Cookies()) == 0 {
		return []check.Finding{check.NewFinding(check.ProbeCookies, check.SeverityInfo, "no cookies found")}
	}

	var missingSecure, missingHTTPOnly []string
	for _, f := range AnalyzeCookies(resp) {
		if f.MissingSecure {
			missingSecure = append(missingSecure, f.Name)
		}
		if f.MissingHTTPOnly {
			missingHTTPOnly = append(missingHTTPOnly, f.Name)
		}
	}

	return []check.Finding{
		flagFinding("Secure", missingSecure),
		flagFinding("HttpOnly", missingHTTPOnly),
	}
}

func flagFinding(flag string, missing []string) check.Finding {
	if len(missing) == 0 {
		return check.NewFinding(check.ProbeCookies, check.SeverityPass,
			fmt.Sprintf("cookies have '%s' flag", flag))
	}
	return check.NewFinding(check.ProbeCookies, check.SeverityFail,
		fmt.Sprintf("some cookies missing '%s' flag: %s", flag, strings.Join(missing, ", ")))
}
