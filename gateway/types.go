package gateway

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Capture methods accepted by the payments API.
const (
	CaptureAutomatic = "automatic"
	CaptureManual    = "manual"
)

// Authentication types accepted by the payments API.
const (
	AuthThreeDS   = "three_ds"
	AuthNoThreeDS = "no_three_ds"
)

// Payment statuses that the mandate flows care about.
const (
	StatusSucceeded              = "succeeded"
	StatusRequiresCapture        = "requires_capture"
	StatusRequiresCustomerAction = "requires_customer_action"
	StatusPartiallyCaptured      = "partially_captured"
	StatusFailed                 = "failed"
)

// PaymentRequest is the body of a payment create or confirm call. A
// cardholder-initiated payment carries card data and mandate_data; a
// merchant-initiated payment carries mandate_id and off_session instead.
type PaymentRequest struct {
	Amount             int64              `json:"amount"`
	Currency           string             `json:"currency"`
	Confirm            bool               `json:"confirm"`
	CaptureMethod      string             `json:"capture_method,omitempty"`
	CustomerID         string             `json:"customer_id,omitempty"`
	AuthenticationType string             `json:"authentication_type,omitempty"`
	SetupFutureUsage   string             `json:"setup_future_usage,omitempty"`
	PaymentMethod      string             `json:"payment_method,omitempty"`
	PaymentMethodData  *PaymentMethodData `json:"payment_method_data,omitempty"`
	MandateData        *MandateData       `json:"mandate_data,omitempty"`
	MandateID          string             `json:"mandate_id,omitempty"`
	OffSession         *bool              `json:"off_session,omitempty"`
	ReturnURL          string             `json:"return_url,omitempty"`
	Description        string             `json:"description,omitempty"`
}

type PaymentMethodData struct {
	Card *Card `json:"card,omitempty"`
}

type Card struct {
	Number     string `json:"card_number"`
	ExpMonth   string `json:"card_exp_month"`
	ExpYear    string `json:"card_exp_year"`
	HolderName string `json:"card_holder_name,omitempty"`
	CVC        string `json:"card_cvc,omitempty"`
}

// MandateData is sent on the first (cardholder-initiated) payment to set up a
// mandate for later merchant-initiated payments.
type MandateData struct {
	CustomerAcceptance CustomerAcceptance `json:"customer_acceptance"`
	MandateType        MandateType        `json:"mandate_type"`
}

type CustomerAcceptance struct {
	AcceptanceType string            `json:"acceptance_type"` // "online" or "offline"
	AcceptedAt     string            `json:"accepted_at,omitempty"`
	Online         *OnlineAcceptance `json:"online,omitempty"`
}

type OnlineAcceptance struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// MandateType holds exactly one of its fields. A multi-use mandate may carry an
// amount limit that applies to each merchant-initiated payment under it.
type MandateType struct {
	SingleUse *MandateAmountData `json:"single_use,omitempty"`
	MultiUse  *MandateAmountData `json:"multi_use,omitempty"`
}

type MandateAmountData struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CaptureRequest struct {
	AmountToCapture int64 `json:"amount_to_capture"`
}

// PaymentResponse is the decoded body of any payments API call, together with
// the HTTP status and the raw body for fixture matching. Gateway-reported
// errors are carried in ErrorCode/ErrorMessage rather than as Go errors, so
// that tests can validate them against their expected responses.
type PaymentResponse struct {
	StatusCode int
	Body       ldvalue.Value

	PaymentID        string
	Status           string
	Amount           int64
	AmountCapturable int64
	AmountReceived   int64
	Currency         string
	CustomerID       string
	MandateID        string
	NextAction       *NextAction
	ErrorCode        string
	ErrorMessage     string
}

// NextAction tells the caller how to continue a payment that is waiting on the
// customer, e.g. a 3DS redirect.
type NextAction struct {
	Type        string `json:"type"`
	RedirectURL string `json:"redirect_to_url,omitempty"`
}

// Mandate is one stored authorization as returned by the mandates API.
type Mandate struct {
	MandateID     string `json:"mandate_id"`
	Status        string `json:"status"` // "active" or "revoked"
	CustomerID    string `json:"customer_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

func paymentResponseFromBody(statusCode int, body ldvalue.Value) *PaymentResponse {
	r := &PaymentResponse{
		StatusCode:       statusCode,
		Body:             body,
		PaymentID:        body.GetByKey("payment_id").StringValue(),
		Status:           body.GetByKey("status").StringValue(),
		Amount:           int64(body.GetByKey("amount").Float64Value()),
		AmountCapturable: int64(body.GetByKey("amount_capturable").Float64Value()),
		AmountReceived:   int64(body.GetByKey("amount_received").Float64Value()),
		Currency:         body.GetByKey("currency").StringValue(),
		CustomerID:       body.GetByKey("customer_id").StringValue(),
		MandateID:        body.GetByKey("mandate_id").StringValue(),
		ErrorCode:        body.GetByKey("error").GetByKey("code").StringValue(),
		ErrorMessage:     body.GetByKey("error").GetByKey("message").StringValue(),
	}
	if next := body.GetByKey("next_action"); !next.IsNull() {
		r.NextAction = &NextAction{
			Type:        next.GetByKey("type").StringValue(),
			RedirectURL: next.GetByKey("redirect_to_url").StringValue(),
		}
	}
	return r
}
