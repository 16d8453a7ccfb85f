package mandatetests

import (
	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/gateway"
)

// Do3DSManualCaptureMandateTests covers a multi-use mandate whose
// cardholder-initiated payment goes through 3DS authentication before being
// captured manually; the merchant-initiated payment that follows must not
// require authentication. The group ends by revoking the mandate.
func Do3DSManualCaptureMandateTests(t *T) {
	const amount = 6500

	t.RequireScenarioSupported(connectors.ScenarioMandateMultiUse3DSManualCapture)

	f := newFlow()

	f.step(t, "Confirm 3DS CIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMandateMultiUse3DSManualCapture)
		t.CreateAndConfirmCITPayment(exp, CITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureManual,
			MandateType:   MandateMultiUse,
			MandateAmount: amount,
		})
		f.continuePer(exp)
	})

	f.step(t, "Capture CIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioCapture)
		t.CapturePayment(exp, amount)
		f.continuePer(exp)
	})

	f.step(t, "Confirm No 3DS MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMITManualCapture)
		resp := t.ConfirmMITPayment(exp, MITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureManual,
		})
		if resp.Status == gateway.StatusRequiresCustomerAction {
			t.Errorf("merchant-initiated payment must not require customer authentication")
		}
		f.continuePer(exp)
	})

	f.step(t, "Capture MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioCapture)
		t.CapturePayment(exp, amount)
		f.continuePer(exp)
	})

	f.step(t, "Revoke mandate", func(t *T) {
		t.RevokeMandate()
	})
}
