package mandatetests

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/framework"
	"github.com/openpayments/mandate-contract-tests/mockgateway"
	"github.com/openpayments/mandate-contract-tests/state"
)

const suiteTestAPIKey = "suite_test_key"

func startSuiteEnvironment(t *testing.T, connectorID string) *Environment {
	log := logrus.New()
	log.SetOutput(io.Discard)

	server := httptest.NewServer(mockgateway.New(suiteTestAPIKey, log).Handler())
	t.Cleanup(server.Close)

	details, err := connectors.GetDetails(connectorID)
	require.NoError(t, err)

	return &Environment{
		GatewayURL:  server.URL,
		APIKey:      suiteTestAPIKey,
		ConnectorID: connectorID,
		Details:     details,
		State:       state.New(),
	}
}

func TestSuitePassesAgainstMockGateway(t *testing.T) {
	env := startSuiteEnvironment(t, "default")

	results := RunTestSuite(env, nil, nil)

	for _, f := range results.Failures {
		t.Errorf("unexpected failure in %s: %v", f.TestID, f.Errors)
	}
	assert.True(t, results.OK())
	assert.Empty(t, results.Skips)

	// root context + 3 groups + 4 + 6 + 5 steps
	assert.Len(t, results.Tests, 19)

	// The run leaves its identifiers behind for a subsequent invocation.
	assert.Equal(t, "default", env.State.ConnectorID())
	assert.NotEmpty(t, env.State.PaymentID())
	assert.NotEmpty(t, env.State.MandateID())
}

func TestSuiteSkipsGroupTailAfterAFailedStep(t *testing.T) {
	env := startSuiteEnvironment(t, "default")

	// Doctor the manual-capture CIT expectation so the live response cannot
	// satisfy it: a manual-capture confirm answers requires_capture.
	exp := env.Details.CardScenario(connectors.ScenarioMandateMultiUseNo3DSManualCapture)
	require.NotNil(t, exp)
	exp.Response.Body = ldvalue.Parse([]byte(`{"status": "succeeded"}`))

	results := RunTestSuite(env, nil, nil)

	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].TestID.String(), "No3DS manual capture")
	assert.Contains(t, results.Failures[0].TestID.String(), "Confirm No 3DS CIT")

	// The five remaining steps of that group are skipped, not failed.
	require.Len(t, results.Skips, 5)
	for _, s := range results.Skips {
		assert.Contains(t, s.TestID.String(), "No3DS manual capture")
	}

	// The other groups are unaffected by the failed group's gate.
	for _, r := range results.Tests {
		if strings.Contains(r.TestID.String(), "No3DS manual capture") {
			continue
		}
		assert.Empty(t, r.Errors, "unexpected errors in %s", r.TestID)
		assert.False(t, r.Skipped, "unexpected skip in %s", r.TestID)
	}
}

func TestSuiteSkipsUnsupportedScenarioGroup(t *testing.T) {
	env := startSuiteEnvironment(t, "worldline")

	results := RunTestSuite(env, nil, nil)

	assert.True(t, results.OK())
	require.Len(t, results.Skips, 1)
	assert.Contains(t, results.Skips[0].TestID.String(), "3DS manual capture")
	assert.Contains(t, results.Skips[0].SkipReason, "worldline")
}

func TestSuiteHonorsRunFilter(t *testing.T) {
	env := startSuiteEnvironment(t, "default")

	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("automatic capture"))

	results := RunTestSuite(env, filters.AsFilter, nil)

	assert.True(t, results.OK())
	// The two non-matching groups are skipped wholesale.
	require.Len(t, results.Skips, 2)
	for _, s := range results.Skips {
		assert.Equal(t, "excluded by filter parameters", s.SkipReason)
	}
}
