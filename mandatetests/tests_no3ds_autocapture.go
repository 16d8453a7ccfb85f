package mandatetests

import (
	"github.com/openpayments/mandate-contract-tests/connectors"
	"github.com/openpayments/mandate-contract-tests/gateway"
)

// DoNo3DSAutoCaptureMandateTests covers a multi-use mandate where every
// payment captures automatically: one cardholder-initiated payment that sets
// up the mandate, then two merchant-initiated payments under it.
//
// The two MIT steps are intentionally identical; the second one proves the
// mandate is reusable.
func DoNo3DSAutoCaptureMandateTests(t *T) {
	const amount = 7000

	f := newFlow()

	f.step(t, "Confirm No 3DS CIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMandateMultiUseNo3DSAutoCapture)
		t.CreateAndConfirmCITPayment(exp, CITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureAutomatic,
			MandateType:   MandateMultiUse,
			MandateAmount: amount,
		})
		f.continuePer(exp)
	})

	f.step(t, "Confirm No 3DS MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMITAutoCapture)
		t.ConfirmMITPayment(exp, MITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureAutomatic,
		})
		f.continuePer(exp)
	})

	f.step(t, "Confirm No 3DS MIT", func(t *T) {
		exp := t.CardScenario(connectors.ScenarioMITAutoCapture)
		t.ConfirmMITPayment(exp, MITOptions{
			Amount:        amount,
			Confirm:       true,
			CaptureMethod: gateway.CaptureAutomatic,
		})
		f.continuePer(exp)
	})

	f.step(t, "List customer mandates", func(t *T) {
		t.RequireActiveMandate()
	})
}
