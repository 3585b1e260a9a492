package checker

import (
	"fmt"
	"net/http"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
)

// SecurityHeader describes a response header the scan expects to find.
type SecurityHeader struct {
	Name    string
	Purpose string
	// Optional headers can be switched off through Config.CheckContentTypeOptions.
	Optional bool
}

// expectedHeaders lists the inspected headers in report order.
var expectedHeaders = []SecurityHeader{
	{Name: "Strict-Transport-Security", Purpose: "HSTS prevents protocol downgrade attacks"},
	{Name: "Content-Security-Policy", Purpose: "CSP helps prevent XSS and injection attacks"},
	{Name: "X-Content-Type-Options", Purpose: "prevents MIME-type sniffing", Optional: true},
	{Name: "X-Frame-Options", Purpose: "prevents clickjacking attacks"},
	{Name: "X-XSS-Protection", Purpose: "helps prevent XSS attacks in older browsers"},
}

// informationDisclosureHeaders lists headers that should be removed/obfuscated
var informationDisclosureHeaders = []string{
	"Server",
	"X-Powered-By",
	"X-AspNet-Version",
	"X-AspNetMvc-Version",
}

// SecurityHeadersResult summarizes header presence for one response.
type SecurityHeadersResult struct {
	Present  []string
	Missing  []string
	Exposed  map[string]string
	Checked  int
	Findings []check.Finding
}

// Score is the percentage of checked headers that were present.
func (r *SecurityHeadersResult) Score() float64 {
	if r.Checked == 0 {
		return 0
	}
	return float64(len(r.Present)) / float64(r.Checked) * 100
}

// AnalyzeSecurityHeaders checks response headers for the expected security
// headers. http.Header.Get canonicalizes keys, so matching is case-insensitive.
func AnalyzeSecurityHeaders(headers http.Header, includeOptional bool) *SecurityHeadersResult {
	result := &SecurityHeadersResult{
		Present: []string{},
		Missing: []string{},
		Exposed: map[string]string{},
	}

	for _, h := range expectedHeaders {
		if h.Optional && !includeOptional {
			continue
		}
		result.Checked++

		if headerPresent(headers, h.Name) {
			result.Present = append(result.Present, h.Name)
			result.Findings = append(result.Findings, check.NewFinding(check.ProbeHeaders, check.SeverityPass,
				fmt.Sprintf("%s present - %s", h.Name, h.Purpose)))
			continue
		}

		result.Missing = append(result.Missing, h.Name)
		result.Findings = append(result.Findings, check.NewFinding(check.ProbeHeaders, check.SeverityFail,
			fmt.Sprintf("missing %s - %s", h.Name, h.Purpose)))
	}

	result.Findings = append(result.Findings, check.NewFinding(check.ProbeHeaders, check.SeverityInfo,
		fmt.Sprintf("security headers score: %.1f%%", result.Score())))

	checkInformationDisclosure(headers, result)

	return result
}

// headerPresent reports whether the header exists, even with an empty value.
func headerPresent(headers http.Header, name string) bool {
	_, ok := headers[http.CanonicalHeaderKey(name)]
	if ok {
		return true
	}
	// Headers built by hand may bypass canonicalization.
	for key := range headers {
		if http.CanonicalHeaderKey(key) == http.CanonicalHeaderKey(name) {
			return true
		}
	}
	return false
}

// checkInformationDisclosure checks for headers that expose sensitive information
func checkInformationDisclosure(headers http.Header, result *SecurityHeadersResult) {
	for _, headerName := range informationDisclosureHeaders {
		if value := headers.Get(headerName); value != "" {
			result.Exposed[headerName] = value
			result.Findings = append(result.Findings, check.NewFinding(check.ProbeHeaders, check.SeverityWarn,
				fmt.Sprintf("%s header exposes server information: '%s'. Consider removing or obfuscating.", headerName, value)))
		}
	}
}
