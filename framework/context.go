package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context provides the test lifecycle operations (failure, skipping, debug
// logging, subtests) for one test in a run. Domain-specific suites wrap it in
// their own T type.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes a top-level test function and returns the accumulated results.
// The filter and testLogger may be nil.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				return
			}
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				// FailNow was called; the failure message, if any, was already recorded
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
		result := TestResult{TestID: c.id, Errors: c.errors}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run executes a subtest under this context and reports whether it passed.
// Subtests excluded by the run filter, or that call Skip, are recorded as
// skipped rather than failed, and count as passed for the return value.
func (c *Context) Run(name string, action func(*Context)) bool {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.recordSkip(id, "excluded by filter parameters")
		return true
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.recordSkip(id, c1.skipReason)
		return true
	}
	c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	return !c1.failed
}

func (c *Context) recordSkip(id TestID, reason string) {
	result := TestResult{TestID: id, Skipped: true, SkipReason: reason}
	c.env.results.Tests = append(c.env.results.Tests, result)
	c.env.results.Skips = append(c.env.results.Skips, result)
	c.env.testLogger.TestSkipped(id, reason)
}

// Errorf records a test failure. It does not stop the test.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow stops the test immediately. It must be called from the goroutine
// running the test.
func (c *Context) FailNow() {
	panic(c)
}

// Skip stops the test immediately and marks it as skipped rather than failed.
func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug records debug output which is passed to the test logger when the test
// finishes.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// reformatError trims the trailing blank lines that testify's multi-line
// failure messages tend to carry, so console output stays compact.
func reformatError(err error) error {
	text := strings.TrimRight(err.Error(), "\n\t ")
	return errors.New(text)
}
