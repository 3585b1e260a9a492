package check

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewResultCopiesFindings(t *testing.T) {
	findings := []Finding{
		NewFinding(ProbeHTTPS, SeverityPass, "site uses HTTPS"),
		NewFinding(ProbeHeaders, SeverityFail, "missing Content-Security-Policy"),
	}
	result := NewResult("https://example.com", true, "ok", findings, time.Now(), time.Second)

	findings[0].Message = "mutated"
	if got := result.Findings()[0].Message; got != "site uses HTTPS" {
		t.Fatalf("result shares caller slice, got %q", got)
	}

	out := result.Findings()
	out[1].Severity = SeverityPass
	if result.Failures() != 1 {
		t.Fatalf("Findings() must return a copy, failures = %d", result.Failures())
	}
}

func TestResultCount(t *testing.T) {
	result := NewResult("https://example.com", false, "", []Finding{
		NewFinding(ProbeHeaders, SeverityFail, "a"),
		NewFinding(ProbeHeaders, SeverityFail, "b"),
		NewFinding(ProbeCookies, SeverityInfo, "no cookies found"),
		NewFinding(ProbeCertificate, SeverityWarn, "expiring soon"),
	}, time.Now(), 0)

	if result.Failures() != 2 {
		t.Errorf("expected 2 failures, got %d", result.Failures())
	}
	if result.Count(SeverityInfo) != 1 {
		t.Errorf("expected 1 info, got %d", result.Count(SeverityInfo))
	}
	if result.Count(SeverityPass) != 0 {
		t.Errorf("expected 0 pass, got %d", result.Count(SeverityPass))
	}
}

func TestResultMarshalJSON(t *testing.T) {
	scannedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := NewResult("https://example.com", true, "Secure", nil, scannedAt, 1500*time.Millisecond)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"secure":true`, `"findings":[]`, `"duration_ms":1500`, `"target":"https://example.com"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}
