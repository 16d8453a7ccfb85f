package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runNames(results Results) []string {
	var names []string
	for _, r := range results.Tests {
		names = append(names, r.TestID.String())
	}
	return names
}

func TestRunCollectsResultsForEachSubtest(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("first", func(c *Context) {})
		c.Run("second", func(c *Context) {})
	})

	assert.True(t, results.OK())
	assert.Equal(t, []string{"first", "second", ""}, runNames(results))
	assert.Empty(t, results.Failures)
	assert.Empty(t, results.Skips)
}

func TestErrorfMarksTestFailedWithoutStopping(t *testing.T) {
	reachedEnd := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("failing", func(c *Context) {
			c.Errorf("something went wrong: %d", 42)
			reachedEnd = true
		})
	})

	assert.True(t, reachedEnd)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "failing", results.Failures[0].TestID.String())
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "something went wrong: 42")
}

func TestFailNowStopsTheTestImmediately(t *testing.T) {
	reachedEnd := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("failing", func(c *Context) {
			c.Errorf("fatal problem")
			c.FailNow()
			reachedEnd = true
		})
	})

	assert.False(t, reachedEnd)
	require.Len(t, results.Failures, 1)
}

func TestSkipIsRecordedAsSkippedNotFailed(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("skipped", func(c *Context) {
			c.SkipWithReason("not applicable here")
		})
	})

	assert.True(t, results.OK())
	require.Len(t, results.Skips, 1)
	assert.Equal(t, "skipped", results.Skips[0].TestID.String())
	assert.Equal(t, "not applicable here", results.Skips[0].SkipReason)
}

func TestRunReturnValueReflectsOutcome(t *testing.T) {
	Run(nil, nil, func(c *Context) {
		assert.True(t, c.Run("passes", func(c *Context) {}))
		assert.False(t, c.Run("fails", func(c *Context) { c.Errorf("no") }))
		assert.True(t, c.Run("skips", func(c *Context) { c.Skip() }))
	})
}

func TestUnexpectedPanicBecomesFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic(errors.New("boom"))
		})
	})

	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "boom")
}

func TestFilterExcludesTestsAsSkipped(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^keep"))

	ran := []string{}
	results := Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("keep this", func(c *Context) { ran = append(ran, "keep this") })
		c.Run("drop this", func(c *Context) { ran = append(ran, "drop this") })
	})

	assert.Equal(t, []string{"keep this"}, ran)
	require.Len(t, results.Skips, 1)
	assert.Equal(t, "drop this", results.Skips[0].TestID.String())
	assert.True(t, results.OK())
}

func TestSubtestIDsAreNestedPaths(t *testing.T) {
	var id TestID
	Run(nil, nil, func(c *Context) {
		c.Run("outer", func(c *Context) {
			c.Run("inner", func(c *Context) {
				id = c.ID()
			})
		})
	})
	assert.Equal(t, "outer/inner", id.String())
}
