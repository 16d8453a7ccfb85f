package mandatetests

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/framework"
	"github.com/openpayments/mandate-contract-tests/gateway"
	"github.com/openpayments/mandate-contract-tests/state"
)

// Mandate types accepted by the CIT step options.
const (
	MandateSingleUse = "single_use"
	MandateMultiUse  = "multi_use"
)

// Environment is everything the suite needs that outlives a single test: the
// gateway coordinates, the connector expectation fixtures, and the run state
// shared by reference across all steps.
type Environment struct {
	GatewayURL  string
	APIKey      string
	ConnectorID string
	Details     *connectors.Details
	State       *state.RunState
}

// T represents a test or subtest in the mandate suite.
//
// It implements the same basic functionality as Go's testing.T, but in an
// environment that is outside of the Go test runner, with extra features such
// as per-test debug logging provided by the lower-level framework package.
//
// It also provides the payments-domain operations the tests are written in
// terms of: the CIT, MIT and capture call wrappers, each of which sends one
// request to the gateway and validates the response against the connector's
// expectation fixture.
//
// To make test assertions, you can use the assert and require packages,
// passing the *T as if it were a *testing.T.
type T struct {
	context *framework.Context
	env     *Environment
	client  *gateway.Client
}

func newTestScope(c *framework.Context, env *Environment) *T {
	return &T{
		context: c,
		env:     env,
		client:  gateway.NewClient(env.GatewayURL, env.APIKey, c.DebugLogger()),
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an
// immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest and reports whether it passed. The specified function
// receives a new T with its own gateway client, so its request log lands in
// that subtest's debug output.
func (t *T) Run(name string, action func(*T)) bool {
	return t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the
// test logger at the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// State returns the run state shared across all steps of the suite.
func (t *T) State() *state.RunState {
	return t.env.State
}

// CardScenario returns the connector's expectation for one card scenario,
// failing the test if the fixtures do not define it.
func (t *T) CardScenario(name string) *connectors.Expectation {
	exp := t.env.Details.CardScenario(name)
	require.NotNil(t, exp, "connector %q has no fixture for scenario %q", t.env.ConnectorID, name)
	return exp
}

// RequireScenarioSupported skips this test if the connector has marked the
// scenario as not runnable.
func (t *T) RequireScenarioSupported(name string) {
	exp := t.env.Details.CardScenario(name)
	if exp != nil && exp.TriggerSkip {
		t.SkipWithReason(fmt.Sprintf("connector %q does not support scenario %q", t.env.ConnectorID, name))
	}
}

// CITOptions control the cardholder-initiated payment step.
type CITOptions struct {
	Amount        int64
	Confirm       bool
	CaptureMethod string
	MandateType   string // MandateSingleUse or MandateMultiUse
	MandateAmount int64
}

// MITOptions control a merchant-initiated payment step.
type MITOptions struct {
	Amount        int64
	Confirm       bool
	CaptureMethod string
}

// CreateAndConfirmCITPayment performs the cardholder-initiated payment that
// establishes the mandate: it builds the request from the scenario's fixture
// template plus the given options, sends it, validates the response against
// the fixture expectation, and stores the resulting payment and mandate IDs in
// the shared run state.
//
// For 3DS scenarios the fixture expectation applies to the confirm response
// (requires_customer_action); the method then completes the authentication hop
// and checks that the payment lands in the status its capture method implies.
func (t *T) CreateAndConfirmCITPayment(exp *connectors.Expectation, opts CITOptions) *gateway.PaymentResponse {
	req := paymentRequestFromTemplate(t, exp.Request)
	req.Amount = opts.Amount
	req.Confirm = opts.Confirm
	req.CaptureMethod = opts.CaptureMethod
	req.SetupFutureUsage = "off_session"
	req.MandateData = mandateDataForOptions(t, opts, req.Currency)

	if req.CustomerID != "" {
		t.State().SetCustomerID(req.CustomerID)
	}

	resp, err := t.client.CreatePayment(t.requestContext(), req)
	require.NoError(t, err)
	t.requireExpectedResponse(exp, resp)

	if resp.Status == gateway.StatusRequiresCustomerAction {
		resp = t.completeAuthentication(resp, opts.CaptureMethod)
	}

	require.NotEmpty(t, resp.PaymentID, "gateway did not return a payment_id")
	t.State().SetPaymentID(resp.PaymentID)
	if exp.ShouldContinue() {
		require.NotEmpty(t, resp.MandateID, "gateway did not issue a mandate_id on the CIT payment")
		t.State().SetMandateID(resp.MandateID)
		t.Debug("stored mandate %s from payment %s", resp.MandateID, resp.PaymentID)
	}
	return resp
}

// ConfirmMITPayment performs a merchant-initiated payment under the mandate
// stored by an earlier CIT step, validates the response against the fixture
// expectation, and stores the new payment ID.
func (t *T) ConfirmMITPayment(exp *connectors.Expectation, opts MITOptions) *gateway.PaymentResponse {
	mandateID := t.State().MandateID()
	require.NotEmpty(t, mandateID, "no mandate_id in run state; did the CIT step run?")

	req := paymentRequestFromTemplate(t, exp.Request)
	req.Amount = opts.Amount
	req.Confirm = opts.Confirm
	req.CaptureMethod = opts.CaptureMethod
	req.MandateID = mandateID
	offSession := true
	req.OffSession = &offSession

	resp, err := t.client.CreatePayment(t.requestContext(), req)
	require.NoError(t, err)
	t.requireExpectedResponse(exp, resp)

	if resp.PaymentID != "" {
		t.State().SetPaymentID(resp.PaymentID)
	}
	return resp
}

// CapturePayment settles the given amount on the payment stored in the run
// state and validates the response against the fixture expectation.
func (t *T) CapturePayment(exp *connectors.Expectation, amount int64) *gateway.PaymentResponse {
	paymentID := t.State().PaymentID()
	require.NotEmpty(t, paymentID, "no payment_id in run state; did an earlier step run?")

	resp, err := t.client.CapturePayment(t.requestContext(), paymentID, gateway.CaptureRequest{AmountToCapture: amount})
	require.NoError(t, err)
	t.requireExpectedResponse(exp, resp)
	return resp
}

// RequireActiveMandate checks that the mandate stored in the run state shows
// up as active in the gateway's mandate list for the customer.
func (t *T) RequireActiveMandate() {
	mandateID := t.State().MandateID()
	require.NotEmpty(t, mandateID, "no mandate_id in run state")

	mandates, err := t.client.ListMandates(t.requestContext(), t.State().CustomerID())
	require.NoError(t, err)
	for _, m := range mandates {
		if m.MandateID == mandateID {
			require.Equal(t, "active", m.Status, "mandate %s is not active", mandateID)
			return
		}
	}
	require.Fail(t, "mandate not listed", "mandate %s was not in the customer's mandate list", mandateID)
}

// RevokeMandate revokes the mandate stored in the run state and checks the
// gateway reports it as revoked.
func (t *T) RevokeMandate() {
	mandateID := t.State().MandateID()
	require.NotEmpty(t, mandateID, "no mandate_id in run state")

	mandate, err := t.client.RevokeMandate(t.requestContext(), mandateID)
	require.NoError(t, err)
	require.Equal(t, "revoked", mandate.Status, "mandate %s was not revoked", mandateID)
}

func (t *T) completeAuthentication(resp *gateway.PaymentResponse, captureMethod string) *gateway.PaymentResponse {
	require.NotNil(t, resp.NextAction, "payment requires customer action but has no next_action")
	t.Debug("completing customer authentication for payment %s", resp.PaymentID)

	authed, err := t.client.CompleteAuthentication(t.requestContext(), resp.PaymentID)
	require.NoError(t, err)
	require.Equal(t, 200, authed.StatusCode, "authentication call failed: %s", authed.Body.JSONString())

	expectedStatus := gateway.StatusSucceeded
	if captureMethod == gateway.CaptureManual {
		expectedStatus = gateway.StatusRequiresCapture
	}
	require.Equal(t, expectedStatus, authed.Status, "unexpected payment status after authentication")
	return authed
}

func (t *T) requireExpectedResponse(exp *connectors.Expectation, resp *gateway.PaymentResponse) {
	require.Equal(t, exp.Response.Status, resp.StatusCode,
		"unexpected HTTP status from gateway; body was: %s", resp.Body.JSONString())

	diffs := connectors.MatchBody(exp.Response.Body, resp.Body)
	for _, diff := range diffs {
		t.Errorf("response mismatch: %s", diff)
	}
	if len(diffs) > 0 {
		t.FailNow()
	}
}

func (t *T) requestContext() context.Context {
	return context.Background()
}

func paymentRequestFromTemplate(t *T, template ldvalue.Value) gateway.PaymentRequest {
	var req gateway.PaymentRequest
	if !template.IsNull() {
		err := json.Unmarshal([]byte(template.JSONString()), &req)
		require.NoError(t, err, "fixture request template does not decode as a payment request")
	}
	return req
}

func mandateDataForOptions(t *T, opts CITOptions, currency string) *gateway.MandateData {
	if opts.MandateType == "" {
		return nil
	}
	amountData := &gateway.MandateAmountData{Amount: opts.MandateAmount, Currency: currency}
	mandateType := gateway.MandateType{}
	switch opts.MandateType {
	case MandateSingleUse:
		mandateType.SingleUse = amountData
	case MandateMultiUse:
		mandateType.MultiUse = amountData
	default:
		require.Fail(t, "bad test setup", "unknown mandate type %q", opts.MandateType)
	}
	return &gateway.MandateData{
		CustomerAcceptance: gateway.CustomerAcceptance{
			AcceptanceType: "online",
			AcceptedAt:     time.Now().UTC().Format(time.RFC3339),
			Online: &gateway.OnlineAcceptance{
				IPAddress: "127.0.0.1",
				UserAgent: "mandate-contract-tests",
			},
		},
		MandateType: mandateType,
	}
}
