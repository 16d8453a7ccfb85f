// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of contract tests.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure/skip results.
//
// 2. Tests can be selected or excluded by regex filters on their full names, and each
// test accumulates its own debug log which is only shown when the test logger asks
// for it.
//
// The domain-specific code that knows what is being tested is responsible for talking
// to the service under test and for providing a domain-specific test API on top of the
// test context.
package framework
