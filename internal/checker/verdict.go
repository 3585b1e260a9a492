package checker

import (
	"fmt"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
	consts "github.com/khanhnv2901/sitecheck/internal/shared/constants"
)

const (
	summaryInvalid    = "Invalid URL provided"
	summaryNoHTTPS    = "Not Secure: this website does not use HTTPS"
	summarySecure     = "Secure: this website implements good security practices"
	summaryMostly     = "Mostly Secure: this website has some security issues to address"
	summaryNotFullyFn = "Not Fully Secure: this website has %d security issues to address"
)

// Aggregate turns the collected findings into the overall verdict.
//
// A site without HTTPS is never secure. Otherwise up to two failing findings
// are tolerated and the site is still reported secure; three or more flip the
// verdict.
func Aggregate(isHTTPS bool, findings []check.Finding) (bool, string) {
	if !isHTTPS {
		return false, summaryNoHTTPS
	}

	failures := check.CountSeverity(findings, check.SeverityFail)
	switch {
	case failures == 0:
		return true, summarySecure
	case failures <= consts.TolerableFailures:
		return true, summaryMostly
	default:
		return false, fmt.Sprintf(summaryNotFullyFn, failures)
	}
}
