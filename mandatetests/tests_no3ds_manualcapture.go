package mandatetests

import (
	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/gateway"
)

// DoNo3DSManualCaptureMandateTests covers a multi-use mandate on the
// manual-capture path: each of the three payments (one CIT, two MITs) is
// authorized first and then settled with an explicit capture call.
func DoNo3DSManualCaptureMandateTests(t *T) {
	const amount = 6500

	t.RequireScenarioSupported(connectors.ScenarioMandateMultiUseNo3DSManualCapture)

	f := newFlow()

	f.step(t, "Confirm No 3DS CIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMandateMultiUseNo3DSManualCapture)
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
		t.ConfirmMITPayment(exp, MITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureManual,
		})
		f.continuePer(exp)
	})

	f.step(t, "Capture MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioCapture)
		t.CapturePayment(exp, amount)
		f.continuePer(exp)
	})

	f.step(t, "Confirm No 3DS MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMITManualCapture)
		t.ConfirmMITPayment(exp, MITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureManual,
		})
		f.continuePer(exp)
	})

	f.step(t, "Capture MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioCapture)
		t.CapturePayment(exp, amount)
		f.continuePer(exp)
	})
}
