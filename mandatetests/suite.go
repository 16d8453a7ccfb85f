package mandatetests

import (
	"github.com/openpayments/mandate-contract-tests/framework"
)

// RunTestSuite executes the mandate flow groups against the configured gateway
// and returns the accumulated results.
func RunTestSuite(
	env *Environment,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env.State.SetConnectorID(env.ConnectorID)

	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("card mandate/No3DS automatic capture (multi use)", DoNo3DSAutoCaptureMandateTests)
		t.Run("card mandate/No3DS manual capture (multi use)", DoNo3DSManualCaptureMandateTests)
		t.Run("card mandate/3DS manual capture (multi use)", Do3DSManualCaptureMandateTests)
	})
}
