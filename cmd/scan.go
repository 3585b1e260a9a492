package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/sitecheck/internal/application"
	"github.com/khanhnv2901/sitecheck/internal/domain/check"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Inspect one website's HTTPS, certificate, headers and cookies",
	Example: `  sitecheck scan example.com
  sitecheck scan https://example.com:8443 --json
  sitecheck scan http://intranet.local --follow-redirects=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		cfg := appCtx.Config.Scan
		if err := validateScanConfig(cfg); err != nil {
			return err
		}

		container := application.NewContainer(cfg.checkerConfig(), appCtx.Logger)
		result := container.ScanService.Scan(cmd.Context(), args[0])

		out := cmd.OutOrStdout()
		if cfg.JSON {
			if err := writeResultJSON(out, result); err != nil {
				return err
			}
		} else {
			if !cfg.NoBanner {
				printBanner(out)
			}
			renderResult(out, result)
		}

		return scanOutcome(args[0], result, cfg.FailInsecure)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&cliConfig.Scan.JSON, "json", false, "Print the result as JSON")
	scanCmd.Flags().BoolVar(&cliConfig.Scan.NoBanner, "no-banner", false, "Suppress the ASCII banner")
	scanCmd.Flags().BoolVar(&cliConfig.Scan.FailInsecure, "fail-insecure", false, "Exit non-zero when the site is not considered secure")
}

// scanOutcome maps the verdict onto the command's error return.
func scanOutcome(input string, result *check.Result, failInsecure bool) error {
	for _, f := range result.Findings() {
		if f.Check == check.ProbeTarget && f.Severity == check.SeverityFail {
			return &InvalidTargetError{Input: input, Reason: f.Message}
		}
	}
	if failInsecure && !result.Secure() {
		return &InsecureSiteError{Target: result.Target(), Summary: result.Summary()}
	}
	return nil
}

func writeResultJSON(w io.Writer, result *check.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

var probeTitles = map[check.Probe]string{
	check.ProbeTarget:      "Target",
	check.ProbeHTTPS:       "HTTPS",
	check.ProbeCertificate: "Certificate",
	check.ProbeHeaders:     "Security headers",
	check.ProbeCookies:     "Cookies",
}

// renderResult prints findings grouped by probe, followed by the verdict.
func renderResult(w io.Writer, result *check.Result) {
	fmt.Fprintf(w, "\n%s %s\n", colorBold("Target:"), result.Target())

	var current check.Probe
	for _, f := range result.Findings() {
		if f.Check != current {
			current = f.Check
			fmt.Fprintf(w, "\n%s\n", colorBold(probeTitles[current]))
		}
		fmt.Fprintf(w, "  %s %s\n", severityTag(f.Severity), f.Message)
	}

	verdict := "insecure"
	if result.Secure() {
		verdict = "secure"
	}
	fmt.Fprintf(w, "\n%s %s\n", formatStatusWithColor(strings.ToUpper(verdict)), result.Summary())
	fmt.Fprintf(w, "%d passed, %d failed, %d warnings in %s\n",
		result.Count(check.SeverityPass),
		result.Failures(),
		result.Count(check.SeverityWarn),
		result.Duration().Round(time.Millisecond),
	)
}

func severityTag(sev check.Severity) string {
	tag := fmt.Sprintf("[%s]", strings.ToUpper(string(sev)))
	switch sev {
	case check.SeverityPass:
		return colorSuccess(tag)
	case check.SeverityFail:
		return colorError(tag)
	case check.SeverityWarn:
		return colorWarn(tag)
	default:
		return colorInfo(tag)
	}
}
