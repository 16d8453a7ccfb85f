package mockgateway

import (
	"fmt"
	"sync"
)

// payment is the mock gateway's record of one payment.
type payment struct {
	ID               string
	Status           string
	Amount           int64
	AmountCapturable int64
	AmountReceived   int64
	Currency         string
	CustomerID       string
	CaptureMethod    string
	MandateID        string

	// pendingMandate carries the mandate parameters of a 3DS payment between
	// the confirm call and the authentication call that completes it.
	pendingMandate *mandate
}

// mandate is one stored authorization.
type mandate struct {
	ID            string
	Status        string // "active" or "revoked"
	CustomerID    string
	PaymentMethod string
	LimitAmount   int64 // 0 means no per-payment limit
	LimitCurrency string
	SingleUse     bool
	used          bool
}

type store struct {
	lock        sync.Mutex
	payments    map[string]*payment
	mandates    map[string]*mandate
	lastPayment int
	lastMandate int
}

func newStore() *store {
	return &store{
		payments: make(map[string]*payment),
		mandates: make(map[string]*mandate),
	}
}

func (s *store) addPayment(p *payment) *payment {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lastPayment++
	p.ID = fmt.Sprintf("pay_mock_%d", s.lastPayment)
	s.payments[p.ID] = p
	return p
}

func (s *store) getPayment(id string) *payment {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.payments[id]
}

func (s *store) addMandate(m *mandate) *mandate {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lastMandate++
	m.ID = fmt.Sprintf("man_mock_%d", s.lastMandate)
	m.Status = "active"
	s.mandates[m.ID] = m
	return m
}

func (s *store) getMandate(id string) *mandate {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.mandates[id]
}

func (s *store) mandatesForCustomer(customerID string) []*mandate {
	s.lock.Lock()
	defer s.lock.Unlock()
	var out []*mandate
	for i := 1; i <= s.lastMandate; i++ {
		id := fmt.Sprintf("man_mock_%d", i)
		if m, ok := s.mandates[id]; ok && m.CustomerID == customerID {
			out = append(out, m)
		}
	}
	return out
}
