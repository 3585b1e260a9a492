package checker

import (
	"errors"
	"strings"
	"testing"

	errs "github.com/khanhnv2901/sitecheck/internal/shared/errors"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantURL    string
		wantScheme string
		wantHost   string
		wantPort   string
	}{
		{"bare domain", "example.com", "https://example.com", "https", "example.com", ""},
		{"bare domain with path", "example.com/login", "https://example.com/login", "https", "example.com", ""},
		{"explicit https", "https://example.com", "https://example.com", "https", "example.com", ""},
		{"explicit http", "http://example.com/a?b=c", "http://example.com/a?b=c", "http", "example.com", ""},
		{"uppercase scheme", "HTTP://Example.com", "http://example.com", "http", "example.com", ""},
		{"whitespace", "  example.com  ", "https://example.com", "https", "example.com", ""},
		{"port", "example.com:8443", "https://example.com:8443", "https", "example.com", "8443"},
		{"ip", "http://127.0.0.1:8080", "http://127.0.0.1:8080", "http", "127.0.0.1", "8080"},
		{"idn", "bücher.example", "https://xn--bcher-kva.example", "https", "xn--bcher-kva.example", ""},
		{"underscore label", "dev_app.example.com", "https://dev_app.example.com", "https", "dev_app.example.com", ""},
		{"leading underscore", "https://_dmarc.example.com", "https://_dmarc.example.com", "https", "_dmarc.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTarget(tt.input)
			if err != nil {
				t.Fatalf("NormalizeTarget(%q) error = %v", tt.input, err)
			}
			if got.URL != tt.wantURL {
				t.Errorf("URL = %s, want %s", got.URL, tt.wantURL)
			}
			if got.Scheme != tt.wantScheme {
				t.Errorf("Scheme = %s, want %s", got.Scheme, tt.wantScheme)
			}
			if got.Host != tt.wantHost {
				t.Errorf("Host = %s, want %s", got.Host, tt.wantHost)
			}
			if got.Port != tt.wantPort {
				t.Errorf("Port = %s, want %s", got.Port, tt.wantPort)
			}
			if got.Original != tt.input {
				t.Errorf("Original = %q, want %q", got.Original, tt.input)
			}
		})
	}
}

func TestNormalizeTarget_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"https://",
		"http:///path-only",
		"https://%zz",
		strings.Repeat("a", 3000) + ".com",
	}

	for _, input := range inputs {
		if _, err := NormalizeTarget(input); !errors.Is(err, errs.ErrInvalidTarget) {
			t.Errorf("NormalizeTarget(%q) error = %v, want ErrInvalidTarget", input, err)
		}
	}
}

func TestTargetTLSAddress(t *testing.T) {
	target, err := NormalizeTarget("example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got := target.TLSAddress(); got != "example.com:443" {
		t.Errorf("TLSAddress() = %s, want example.com:443", got)
	}

	target, err = NormalizeTarget("https://127.0.0.1:8443/x")
	if err != nil {
		t.Fatal(err)
	}
	if got := target.TLSAddress(); got != "127.0.0.1:8443" {
		t.Errorf("TLSAddress() = %s, want 127.0.0.1:8443", got)
	}
}
