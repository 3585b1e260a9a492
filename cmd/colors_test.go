package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func disableColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = original
	})
}

func TestFormatStatusWithColor(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "success", status: "OK", want: "OK"},
		{name: "pass synonym", status: "pass", want: "pass"},
		{name: "failure", status: "FAILED", want: "FAILED"},
		{name: "warning", status: "warn", want: "warn"},
		{name: "unknown", status: "pending", want: "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStatusWithColor(tt.status); got != tt.want {
				t.Fatalf("formatStatusWithColor(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestFormatStatusWithColorEnabled(t *testing.T) {
	original := color.NoColor
	color.NoColor = false
	t.Cleanup(func() {
		color.NoColor = original
	})

	if got := formatStatusWithColor("fail"); !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escape in %q", got)
	}
}

func TestPrintBanner(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	printBanner(&buf)

	out := buf.String()
	if strings.Count(out, "\n") < 4 {
		t.Fatalf("expected multi-line banner, got %q", out)
	}
	if !strings.Contains(out, "Website security self-assessment") {
		t.Fatalf("expected tagline in banner, got %q", out)
	}
}
