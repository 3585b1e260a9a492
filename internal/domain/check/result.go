package check

import (
	"encoding/json"
	"time"
)

// Severity tags the outcome of a single finding.
type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityFail Severity = "fail"
	SeverityWarn Severity = "warn"
	SeverityInfo Severity = "info"
)

// Probe names the inspection step that produced a finding.
type Probe string

const (
	ProbeTarget      Probe = "target"
	ProbeHTTPS       Probe = "https"
	ProbeCertificate Probe = "certificate"
	ProbeHeaders     Probe = "headers"
	ProbeCookies     Probe = "cookies"
)

// Finding is one discrete inspection outcome.
type Finding struct {
	Check    Probe    `json:"check"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// NewFinding builds a finding for the given probe.
func NewFinding(probe Probe, severity Severity, message string) Finding {
	return Finding{Check: probe, Severity: severity, Message: message}
}

// Result represents the outcome of scanning a single target.
// It is immutable once built by NewResult.
type Result struct {
	target    string
	secure    bool
	summary   string
	findings  []Finding
	scannedAt time.Time
	duration  time.Duration
}

// NewResult builds a Result, copying findings so later mutation by the caller
// cannot leak into it.
func NewResult(target string, secure bool, summary string, findings []Finding, scannedAt time.Time, duration time.Duration) *Result {
	return &Result{
		target:    target,
		secure:    secure,
		summary:   summary,
		findings:  append([]Finding(nil), findings...),
		scannedAt: scannedAt,
		duration:  duration,
	}
}

func (r *Result) Target() string          { return r.target }
func (r *Result) Secure() bool            { return r.secure }
func (r *Result) Summary() string         { return r.summary }
func (r *Result) ScannedAt() time.Time    { return r.scannedAt }
func (r *Result) Duration() time.Duration { return r.duration }

// Findings returns a copy of the ordered findings.
func (r *Result) Findings() []Finding {
	return append([]Finding(nil), r.findings...)
}

// Count returns how many findings carry the given severity.
func (r *Result) Count(severity Severity) int {
	return CountSeverity(r.findings, severity)
}

// Failures returns the number of failing findings.
func (r *Result) Failures() int {
	return r.Count(SeverityFail)
}

// CountSeverity counts findings with the given severity.
func CountSeverity(findings []Finding, severity Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

type resultJSON struct {
	Target     string    `json:"target"`
	Secure     bool      `json:"secure"`
	Summary    string    `json:"summary"`
	Findings   []Finding `json:"findings"`
	ScannedAt  time.Time `json:"scanned_at"`
	DurationMS int64     `json:"duration_ms"`
}

// MarshalJSON renders the shape consumed by the API and the CLI --json output.
func (r *Result) MarshalJSON() ([]byte, error) {
	findings := r.findings
	if findings == nil {
		findings = []Finding{}
	}
	return json.Marshal(resultJSON{
		Target:     r.target,
		Secure:     r.secure,
		Summary:    r.summary,
		Findings:   findings,
		ScannedAt:  r.scannedAt,
		DurationMS: r.duration.Milliseconds(),
	})
}
