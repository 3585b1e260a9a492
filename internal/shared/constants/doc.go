// Package constants centralizes scan defaults shared across the CLI and the API.
//
// Probe timeouts, the certificate expiry window, and the verdict tolerance live
// here so cmd/, internal/checker and internal/api agree on the same numbers
// without importing each other.
package constants
