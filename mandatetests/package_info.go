// Package mandatetests contains the mandate contract tests themselves and their
// supporting API.
//
// Test harness infrastructure that is not specific to the payments domain, such
// as test contexts, filters and result reporting, is in the lower-level
// framework package; the HTTP client for the gateway under test is in the
// gateway package.
package mandatetests
