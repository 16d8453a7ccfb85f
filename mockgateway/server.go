// Package mockgateway implements an in-memory simulation of the payment
// gateway surface that the mandate suite drives. The harness's own tests run
// the full suite against it; it can also be run standalone via cmd/mockgateway
// while developing new scenarios.
package mockgateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Card numbers with special behavior, mirroring the usual sandbox conventions.
const (
	cardRequiring3DS = "4000002760003184"
	cardDeclined     = "4000000000000002"
)

// Service is the mock gateway. Create one with New and mount its Handler on
// any HTTP server.
type Service struct {
	apiKey string
	store  *store
	log    *logrus.Logger
	router *mux.Router
}

// New creates a mock gateway. If apiKey is non-empty, requests must present it
// in the api-key header.
func New(apiKey string, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	s := &Service{
		apiKey: apiKey,
		store:  newStore(),
		log:    log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/payments", s.requireAuth(s.handleCreatePayment)).Methods("POST")
	r.HandleFunc("/payments/{id}", s.requireAuth(s.handleRetrievePayment)).Methods("GET")
	r.HandleFunc("/payments/{id}/confirm", s.requireAuth(s.handleConfirmPayment)).Methods("POST")
	r.HandleFunc("/payments/{id}/capture", s.requireAuth(s.handleCapturePayment)).Methods("POST")
	r.HandleFunc("/payments/{id}/authenticate", s.requireAuth(s.handleAuthenticate)).Methods("POST")
	r.HandleFunc("/customers/{id}/mandates", s.requireAuth(s.handleListMandates)).Methods("GET")
	r.HandleFunc("/mandates/{id}/revoke", s.requireAuth(s.handleRevokeMandate)).Methods("POST")
	s.router = r

	return s
}

func (s *Service) Handler() http.Handler {
	return s.router
}

func (s *Service) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("api-key") != s.apiKey {
			s.writeError(w, 401, "IR_01", "API key not provided or invalid")
			return
		}
		next(w, r)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, 200, map[string]interface{}{
		"status":      "health is good",
		"description": "mock payment gateway for mandate contract tests",
	})
}

// createPaymentBody is the subset of the payments API request that the mock
// cares about.
type createPaymentBody struct {
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	Confirm            bool   `json:"confirm"`
	CaptureMethod      string `json:"capture_method"`
	CustomerID         string `json:"customer_id"`
	AuthenticationType string `json:"authentication_type"`
	MandateID          string `json:"mandate_id"`
	OffSession         *bool  `json:"off_session"`
	PaymentMethodData  *struct {
		Card *struct {
			Number string `json:"card_number"`
		} `json:"card"`
	} `json:"payment_method_data"`
	MandateData *struct {
		MandateType struct {
			SingleUse *struct {
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"single_use"`
			MultiUse *struct {
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"multi_use"`
		} `json:"mandate_type"`
	} `json:"mandate_data"`
}

func (s *Service) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var body createPaymentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, 400, "IR_02", "request body is not valid JSON")
		return
	}
	if body.Amount <= 0 {
		s.writeError(w, 400, "IR_03", "amount must be greater than zero")
		return
	}
	if body.Currency == "" {
		s.writeError(w, 400, "IR_04", "currency is required")
		return
	}

	p := &payment{
		Amount:        body.Amount,
		Currency:      body.Currency,
		CustomerID:    body.CustomerID,
		CaptureMethod: body.CaptureMethod,
	}
	if p.CaptureMethod == "" {
		p.CaptureMethod = "automatic"
	}
	s.store.addPayment(p)

	if !body.Confirm {
		p.Status = "requires_confirmation"
		s.logPayment(p, "payment created without confirm")
		s.writePayment(w, 200, p)
		return
	}

	s.confirmPayment(w, p, body)
}

func (s *Service) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	p := s.store.getPayment(mux.Vars(r)["id"])
	if p == nil {
		s.writeError(w, 404, "HE_02", "payment does not exist")
		return
	}
	if p.Status != "requires_confirmation" {
		s.writeError(w, 400, "IR_05", "payment cannot be confirmed in status "+p.Status)
		return
	}
	var body createPaymentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, 400, "IR_02", "request body is not valid JSON")
		return
	}
	s.confirmPayment(w, p, body)
}

func (s *Service) confirmPayment(w http.ResponseWriter, p *payment, body createPaymentBody) {
	// Merchant-initiated payment under an existing mandate.
	if body.MandateID != "" {
		m := s.store.getMandate(body.MandateID)
		switch {
		case m == nil:
			s.writeError(w, 404, "HE_03", "mandate does not exist")
		case m.Status != "active":
			s.writeError(w, 400, "CE_01", "mandate is not active")
		case m.CustomerID != "" && body.CustomerID != "" && m.CustomerID != body.CustomerID:
			s.writeError(w, 400, "CE_02", "mandate belongs to a different customer")
		case m.SingleUse && m.used:
			s.writeError(w, 400, "CE_03", "single-use mandate was already used")
		case m.LimitAmount > 0 && p.Amount > m.LimitAmount:
			s.writeError(w, 400, "CE_04", "amount exceeds the mandate limit")
		default:
			m.used = true
			p.MandateID = m.ID
			s.authorize(p)
			s.logPayment(p, "merchant-initiated payment confirmed")
			s.writePayment(w, 200, p)
		}
		return
	}

	cardNumber := ""
	if body.PaymentMethodData != nil && body.PaymentMethodData.Card != nil {
		cardNumber = body.PaymentMethodData.Card.Number
	}
	if cardNumber == "" {
		s.writeError(w, 400, "IR_06", "payment method data is required")
		return
	}
	if cardNumber == cardDeclined {
		p.Status = "failed"
		s.logPayment(p, "card declined")
		s.writePayment(w, 200, p)
		return
	}

	var newMandate *mandate
	if body.MandateData != nil {
		newMandate = &mandate{
			CustomerID:    body.CustomerID,
			PaymentMethod: "card",
		}
		mt := body.MandateData.MandateType
		if mt.SingleUse != nil {
			newMandate.SingleUse = true
			newMandate.LimitAmount = mt.SingleUse.Amount
			newMandate.LimitCurrency = mt.SingleUse.Currency
		} else if mt.MultiUse != nil {
			newMandate.LimitAmount = mt.MultiUse.Amount
			newMandate.LimitCurrency = mt.MultiUse.Currency
		}
	}

	if body.AuthenticationType == "three_ds" || cardNumber == cardRequiring3DS {
		p.Status = "requires_customer_action"
		p.pendingMandate = newMandate
		s.logPayment(p, "payment awaiting customer authentication")
		s.writePayment(w, 200, p)
		return
	}

	if newMandate != nil {
		p.MandateID = s.store.addMandate(newMandate).ID
	}
	s.authorize(p)
	s.logPayment(p, "cardholder-initiated payment confirmed")
	s.writePayment(w, 200, p)
}

func (s *Service) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	p := s.store.getPayment(mux.Vars(r)["id"])
	if p == nil {
		s.writeError(w, 404, "HE_02", "payment does not exist")
		return
	}
	if p.Status != "requires_customer_action" {
		s.writeError(w, 400, "IR_07", "payment is not awaiting customer action")
		return
	}
	if p.pendingMandate != nil {
		p.MandateID = s.store.addMandate(p.pendingMandate).ID
		p.pendingMandate = nil
	}
	s.authorize(p)
	s.logPayment(p, "customer authentication completed")
	s.writePayment(w, 200, p)
}

// authorize moves a payment into its post-authorization status according to
// its capture method.
func (s *Service) authorize(p *payment) {
	if p.CaptureMethod == "manual" {
		p.Status = "requires_capture"
		p.AmountCapturable = p.Amount
	} else {
		p.Status = "succeeded"
		p.AmountReceived = p.Amount
	}
}

type captureBody struct {
	AmountToCapture int64 `json:"amount_to_capture"`
}

func (s *Service) handleCapturePayment(w http.ResponseWriter, r *http.Request) {
	p := s.store.getPayment(mux.Vars(r)["id"])
	if p == nil {
		s.writeError(w, 404, "HE_02", "payment does not exist")
		return
	}
	var body captureBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, 400, "IR_02", "request body is not valid JSON")
		return
	}
	if p.Status != "requires_capture" && p.Status != "partially_captured" {
		s.writeError(w, 400, "IR_08", "payment cannot be captured in status "+p.Status)
		return
	}
	if body.AmountToCapture <= 0 || body.AmountToCapture > p.AmountCapturable {
		s.writeError(w, 400, "IR_09", "amount_to_capture exceeds the capturable amount")
		return
	}
	p.AmountCapturable -= body.AmountToCapture
	p.AmountReceived += body.AmountToCapture
	if p.AmountCapturable == 0 {
		p.Status = "succeeded"
	} else {
		p.Status = "partially_captured"
	}
	s.logPayment(p, "payment captured")
	s.writePayment(w, 200, p)
}

func (s *Service) handleRetrievePayment(w http.ResponseWriter, r *http.Request) {
	p := s.store.getPayment(mux.Vars(r)["id"])
	if p == nil {
		s.writeError(w, 404, "HE_02", "payment does not exist")
		return
	}
	s.writePayment(w, 200, p)
}

func (s *Service) handleListMandates(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]
	mandates := s.store.mandatesForCustomer(customerID)
	out := make([]map[string]interface{}, 0, len(mandates))
	for _, m := range mandates {
		out = append(out, mandateJSON(m))
	}
	s.writeJSON(w, 200, out)
}

func (s *Service) handleRevokeMandate(w http.ResponseWriter, r *http.Request) {
	m := s.store.getMandate(mux.Vars(r)["id"])
	if m == nil {
		s.writeError(w, 404, "HE_03", "mandate does not exist")
		return
	}
	m.Status = "revoked"
	s.log.WithFields(logrus.Fields{"mandate_id": m.ID}).Info("mandate revoked")
	s.writeJSON(w, 200, mandateJSON(m))
}

func mandateJSON(m *mandate) map[string]interface{} {
	return map[string]interface{}{
		"mandate_id":     m.ID,
		"status":         m.Status,
		"customer_id":    m.CustomerID,
		"payment_method": m.PaymentMethod,
	}
}

func (s *Service) writePayment(w http.ResponseWriter, status int, p *payment) {
	out := map[string]interface{}{
		"payment_id":        p.ID,
		"status":            p.Status,
		"amount":            p.Amount,
		"currency":          p.Currency,
		"amount_capturable": p.AmountCapturable,
		"amount_received":   p.AmountReceived,
	}
	if p.CustomerID != "" {
		out["customer_id"] = p.CustomerID
	}
	if p.MandateID != "" {
		out["mandate_id"] = p.MandateID
	}
	if p.Status == "requires_customer_action" {
		out["next_action"] = map[string]interface{}{
			"type":            "redirect_to_url",
			"redirect_to_url": "/payments/" + p.ID + "/authenticate",
		}
	}
	if p.Status == "failed" {
		out["error_code"] = "card_declined"
		out["error_message"] = "the card was declined"
	}
	s.writeJSON(w, status, out)
}

func (s *Service) writeError(w http.ResponseWriter, status int, code, message string) {
	s.log.WithFields(logrus.Fields{"code": code, "status": status}).Info(message)
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Service) logPayment(p *payment, message string) {
	s.log.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"status":     p.Status,
		"amount":     p.Amount,
	}).Info(message)
}
