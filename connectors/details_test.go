package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestGetDetailsProvidesAllSuiteScenariosByDefault(t *testing.T) {
	details, err := GetDetails("default")
	require.NoError(t, err)

	for _, name := range []string{
		ScenarioMandateMultiUseNo3DSAutoCapture,
		ScenarioMandateMultiUseNo3DSManualCapture,
		ScenarioMandateMultiUse3DSManualCapture,
		ScenarioMITAutoCapture,
		ScenarioMITManualCapture,
		ScenarioCapture,
	} {
		assert.NotNil(t, details.CardScenario(name), "missing default fixture for %s", name)
	}
}

func TestGetDetailsUnknownConnectorFallsBackToDefaults(t *testing.T) {
	details, err := GetDetails("no_such_connector")
	require.NoError(t, err)

	exp := details.CardScenario(ScenarioCapture)
	require.NotNil(t, exp)
	assert.Equal(t, 200, exp.Response.Status)
}

func TestGetDetailsConnectorOverridesReplaceScenarios(t *testing.T) {
	details, err := GetDetails("stripe")
	require.NoError(t, err)

	exp := details.CardScenario(ScenarioMandateMultiUse3DSManualCapture)
	require.NotNil(t, exp)
	card := exp.Request.GetByKey("payment_method_data").GetByKey("card")
	assert.Equal(t, "10", card.GetByKey("card_exp_month").StringValue())

	// Scenarios the override file does not mention keep their defaults.
	assert.NotNil(t, details.CardScenario(ScenarioCapture))
}

func TestUnsupportedScenariosListsTriggerSkips(t *testing.T) {
	details, err := GetDetails("worldline")
	require.NoError(t, err)

	assert.Equal(t, []string{ScenarioMandateMultiUse3DSManualCapture}, details.UnsupportedScenarios())

	defaults, err := GetDetails("default")
	require.NoError(t, err)
	assert.Empty(t, defaults.UnsupportedScenarios())
}

func TestShouldContinueIsFalseForErrorExpectations(t *testing.T) {
	ok := &Expectation{Response: ExpectedResponse{
		Status: 200,
		Body:   ldvalue.Parse([]byte(`{"status": "succeeded"}`)),
	}}
	assert.True(t, ok.ShouldContinue())

	badStatus := &Expectation{Response: ExpectedResponse{Status: 400}}
	assert.False(t, badStatus.ShouldContinue())

	errorBody := &Expectation{Response: ExpectedResponse{
		Status: 200,
		Body:   ldvalue.Parse([]byte(`{"error": {"code": "CE_01"}}`)),
	}}
	assert.False(t, errorBody.ShouldContinue())

	flatError := &Expectation{Response: ExpectedResponse{
		Status: 200,
		Body:   ldvalue.Parse([]byte(`{"error_code": "card_declined"}`)),
	}}
	assert.False(t, flatError.ShouldContinue())

	var missing *Expectation
	assert.False(t, missing.ShouldContinue())
}
