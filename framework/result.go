package framework

import (
	"fmt"
	"io"
	"strings"
)

// Results accumulates the outcome of every test that was executed or skipped
// during a run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skips    []TestResult
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test as the path of names from the suite root down to it.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the run to the given writer.
func PrintResults(w io.Writer, results Results) {
	executed := len(results.Tests) - len(results.Skips)
	fmt.Fprintf(w, "Tests run: %d, passed: %d, failed: %d, skipped: %d\n",
		executed, executed-len(results.Failures), len(results.Failures), len(results.Skips))

	if len(results.Failures) > 0 {
		fmt.Fprintln(w, "Failed tests:")
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  %s\n", f.TestID)
		}
	}
}
