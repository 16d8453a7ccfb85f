package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func v(s string) ldvalue.Value { return ldvalue.Parse([]byte(s)) }

func TestMatchBodyAcceptsSubset(t *testing.T) {
	actual := v(`{"status": "succeeded", "amount": 6500, "payment_id": "pay_1"}`)

	assert.Nil(t, MatchBody(v(`{"status": "succeeded"}`), actual))
	assert.Nil(t, MatchBody(v(`{"status": "succeeded", "amount": 6500}`), actual))
	assert.Nil(t, MatchBody(v(`{}`), actual))
}

func TestMatchBodyRecursesIntoObjects(t *testing.T) {
	actual := v(`{"error": {"code": "CE_04", "message": "amount exceeds the mandate limit"}, "status": 400}`)

	assert.Nil(t, MatchBody(v(`{"error": {"code": "CE_04"}}`), actual))

	diffs := MatchBody(v(`{"error": {"code": "CE_01"}}`), actual)
	assert.Equal(t, []string{`body.error.code: expected "CE_01", got "CE_04"`}, diffs)
}

func TestMatchBodyReportsMissingKeys(t *testing.T) {
	diffs := MatchBody(v(`{"mandate_id": "man_1"}`), v(`{"status": "succeeded"}`))
	assert.Equal(t, []string{`body.mandate_id: expected "man_1", but key is absent`}, diffs)
}

func TestMatchBodyReportsEveryMismatch(t *testing.T) {
	diffs := MatchBody(
		v(`{"status": "succeeded", "amount": 6500}`),
		v(`{"status": "failed", "amount": 100}`),
	)
	assert.Len(t, diffs, 2)
}

func TestMatchBodyScalarExpectationAgainstObject(t *testing.T) {
	diffs := MatchBody(v(`"succeeded"`), v(`{"status": "succeeded"}`))
	assert.Len(t, diffs, 1)
}

func TestMatchBodyNonObjectActual(t *testing.T) {
	diffs := MatchBody(v(`{"status": "succeeded"}`), v(`"succeeded"`))
	assert.Equal(t, []string{`body: expected an object, got "succeeded"`}, diffs)
}
