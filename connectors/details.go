// Package connectors holds the per-connector expectation fixtures that drive
// the mandate test suite. Each connector has a JSON document mapping a
// payment-method category and scenario name to the request template to send
// and the response to expect; connectors only need to spell out where they
// deviate from the shared defaults.
package connectors

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

const defaultConnectorID = "default"

// Scenario names used by the mandate suite.
const (
	ScenarioMandateMultiUseNo3DSAutoCapture   = "MandateMultiUseNo3DSAutoCapture"
	ScenarioMandateMultiUseNo3DSManualCapture = "MandateMultiUseNo3DSManualCapture"
	ScenarioMandateMultiUse3DSManualCapture   = "MandateMultiUse3DSManualCapture"
	ScenarioMITAutoCapture                    = "MITAutoCapture"
	ScenarioMITManualCapture                  = "MITManualCapture"
	ScenarioCapture                           = "Capture"
)

// Details is the expectation set for one connector, keyed by payment-method
// category and then scenario name.
type Details struct {
	CardPM map[string]*Expectation `json:"card_pm"`
}

// Expectation pairs the request payload template for a scenario with the
// response the gateway is expected to produce for this connector.
type Expectation struct {
	Request  ldvalue.Value    `json:"Request"`
	Response ExpectedResponse `json:"Response"`

	// TriggerSkip marks a scenario the connector cannot run at all; the suite
	// skips the whole group with a reason instead of executing it.
	TriggerSkip bool `json:"trigger_skip,omitempty"`
}

// ExpectedResponse describes what the gateway should return: the HTTP status
// and a body that must be a structural subset of the actual response body.
type ExpectedResponse struct {
	Status int           `json:"status"`
	Body   ldvalue.Value `json:"body"`
}

// ShouldContinue reports whether the flow can proceed past a step with this
// expectation. An expectation that names a gateway error means later steps in
// the group have nothing to work with and must be skipped.
func (e *Expectation) ShouldContinue() bool {
	if e == nil {
		return false
	}
	if e.Response.Status >= 400 {
		return false
	}
	body := e.Response.Body
	return body.GetByKey("error").IsNull() &&
		body.GetByKey("error_code").IsNull() &&
		body.GetByKey("error_message").IsNull()
}

// GetDetails loads the expectation set for a connector, filling in any
// scenarios the connector file does not override from the shared defaults.
// Connectors without a fixture file get the defaults unchanged.
func GetDetails(connectorID string) (*Details, error) {
	details, err := loadFixture(defaultConnectorID)
	if err != nil {
		return nil, fmt.Errorf("loading default fixtures: %w", err)
	}
	if connectorID == "" || connectorID == defaultConnectorID {
		return details, nil
	}

	overrides, err := loadFixture(connectorID)
	if err != nil {
		// No file for this connector; the defaults describe it.
		return details, nil
	}
	for name, exp := range overrides.CardPM {
		details.CardPM[name] = exp
	}
	return details, nil
}

// CardScenario returns the expectation for one card scenario, or nil if the
// fixtures do not define it.
func (d *Details) CardScenario(name string) *Expectation {
	return d.CardPM[name]
}

// UnsupportedScenarios lists the card scenarios this connector has marked as
// not runnable, in a stable order for display.
func (d *Details) UnsupportedScenarios() []string {
	var names []string
	for name, exp := range d.CardPM {
		if exp != nil && exp.TriggerSkip {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func loadFixture(connectorID string) (*Details, error) {
	data, err := fixtureFS.ReadFile("fixtures/" + connectorID + ".json")
	if err != nil {
		return nil, err
	}
	var details Details
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("malformed fixture for %q: %w", connectorID, err)
	}
	if details.CardPM == nil {
		details.CardPM = make(map[string]*Expectation)
	}
	return &details, nil
}
