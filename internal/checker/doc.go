// Package checker implements the single-URL security inspection.
//
// An Inspector normalizes the input into a Target and then runs its probes in
// a fixed order:
//
//   - HTTPS: whether the target uses the secure scheme.
//   - Certificate: a TLS handshake against the host (HTTPS only) reporting
//     subject, issuer, negotiated protocol and remaining validity.
//   - Headers: one GET whose response is checked for the standard security
//     headers and for headers that disclose server software.
//   - Cookies: Secure and HttpOnly attributes on the same response.
//
// Every probe contributes Findings; a failing probe never aborts the scan.
// Aggregate turns the findings into the secure/insecure verdict.
//
// Network access goes through the HTTPDoer and TLSDialer interfaces so tests
// can substitute recording fakes.
package checker
