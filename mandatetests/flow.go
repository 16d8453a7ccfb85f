package mandatetests

import (
	"github.com/openpayments/mandate-contract-tests/connectors"
)

// flow is the continuation gate for one scenario group. The flag starts true;
// once a step fails, or a step's fixture expectation says the flow cannot
// proceed, every remaining step in the group is skipped rather than executed.
// Each group gets its own flow, so one group's outcome never bleeds into the
// next.
type flow struct {
	shouldContinue bool
}

func newFlow() *flow {
	return &flow{shouldContinue: true}
}

// step runs one step of the group as a subtest. If the gate is already closed
// the step body does not run and the step is reported as skipped. A failing
// step closes the gate for the rest of the group.
func (f *flow) step(t *T, name string, action func(*T)) {
	passed := t.Run(name, func(t1 *T) {
		if !f.shouldContinue {
			t1.SkipWithReason("skipped due to an earlier failure in this flow")
		}
		action(t1)
	})
	if !passed {
		f.shouldContinue = false
	}
}

// continuePer updates the gate from a step's fixture expectation: an
// expectation that names a gateway error means the steps after this one have
// nothing to work with. The gate never reopens within a group.
func (f *flow) continuePer(exp *connectors.Expectation) {
	if !exp.ShouldContinue() {
		f.shouldContinue = false
	}
}
