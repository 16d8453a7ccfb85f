package mandatetests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/framework"
	"github.com/openpayments/mandate-contract-tests/state"
)

func runGroups(t *testing.T, action func(*T)) framework.Results {
	details, err := connectors.GetDetails("default")
	require.NoError(t, err)

	env := &Environment{
		GatewayURL:  "http://localhost:0", // flow tests never touch the network
		ConnectorID: "default",
		Details:     details,
		State:       state.New(),
	}
	return framework.Run(nil, nil, func(c *framework.Context) {
		action(newTestScope(c, env))
	})
}

func okExpectation() *connectors.Expectation {
	return &connectors.Expectation{Response: connectors.ExpectedResponse{
		Status: 200,
		Body:   ldvalue.Parse([]byte(`{"status": "succeeded"}`)),
	}}
}

func errorExpectation() *connectors.Expectation {
	return &connectors.Expectation{Response: connectors.ExpectedResponse{
		Status: 400,
		Body:   ldvalue.Parse([]byte(`{"error": {"code": "CE_01"}}`)),
	}}
}

func TestFlowSkipsEveryStepAfterAFailure(t *testing.T) {
	var executed []string
	results := runGroups(t, func(tt *T) {
		tt.Run("group", func(tt *T) {
			f := newFlow()
			f.step(tt, "one", func(tt *T) { executed = append(executed, "one") })
			f.step(tt, "two", func(tt *T) {
				executed = append(executed, "two")
				tt.Errorf("deliberate failure")
			})
			f.step(tt, "three", func(tt *T) { executed = append(executed, "three") })
			f.step(tt, "four", func(tt *T) { executed = append(executed, "four") })
		})
	})

	assert.Equal(t, []string{"one", "two"}, executed)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "group/two", results.Failures[0].TestID.String())

	require.Len(t, results.Skips, 2)
	assert.Equal(t, "group/three", results.Skips[0].TestID.String())
	assert.Equal(t, "group/four", results.Skips[1].TestID.String())
}

func TestFlowStopsWhenExpectationSaysSo(t *testing.T) {
	var executed []string
	results := runGroups(t, func(tt *T) {
		tt.Run("group", func(tt *T) {
			f := newFlow()
			f.step(tt, "one", func(tt *T) {
				executed = append(executed, "one")
				f.continuePer(errorExpectation())
			})
			f.step(tt, "two", func(tt *T) { executed = append(executed, "two") })
		})
	})

	// Step one passed; it only established that the flow cannot proceed.
	assert.Equal(t, []string{"one"}, executed)
	assert.True(t, results.OK())
	require.Len(t, results.Skips, 1)
	assert.Equal(t, "group/two", results.Skips[0].TestID.String())
}

func TestFlowGateIsScopedPerGroup(t *testing.T) {
	var executed []string
	runGroups(t, func(tt *T) {
		tt.Run("first group", func(tt *T) {
			f := newFlow()
			f.step(tt, "fails", func(tt *T) { tt.Errorf("down") })
			f.step(tt, "skipped", func(tt *T) { executed = append(executed, "first/skipped") })
		})
		tt.Run("second group", func(tt *T) {
			f := newFlow()
			f.step(tt, "runs", func(tt *T) { executed = append(executed, "second/runs") })
		})
	})

	assert.Equal(t, []string{"second/runs"}, executed)
}

func TestFlowGateNeverReopens(t *testing.T) {
	f := newFlow()
	f.continuePer(errorExpectation())
	f.continuePer(okExpectation())
	assert.False(t, f.shouldContinue)
}

func TestStateIsSharedAcrossStepsInAGroup(t *testing.T) {
	var seen string
	runGroups(t, func(tt *T) {
		tt.Run("group", func(tt *T) {
			f := newFlow()
			f.step(tt, "writes", func(tt *T) { tt.State().SetMandateID("man_42") })
			f.step(tt, "reads", func(tt *T) { seen = tt.State().MandateID() })
		})
	})
	assert.Equal(t, "man_42", seen)
}
