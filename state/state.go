// Package state holds the key/value data that test steps share within a run:
// identifiers produced by one step (a payment ID, a mandate ID) and consumed
// by later ones. The store can be seeded from a JSON file before the run and
// flushed back afterward, so consecutive harness invocations can build on each
// other the way the hosted test environments do.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Keys used by the mandate suite.
const (
	KeyConnectorID = "connectorId"
	KeyCustomerID  = "customerId"
	KeyPaymentID   = "paymentId"
	KeyMandateID   = "mandateId"
)

// RunState is a mutable string-to-string store shared by reference across all
// test steps in a run.
type RunState struct {
	values map[string]string
	lock   sync.Mutex
}

func New() *RunState {
	return &RunState{values: make(map[string]string)}
}

// Load seeds a RunState from a JSON file. A missing file is not an error; the
// run simply starts empty.
func Load(path string) (*RunState, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("malformed state file %s: %w", path, err)
	}
	return s, nil
}

// Flush writes the current state back to a JSON file. With an empty path it
// does nothing.
func (s *RunState) Flush(path string) error {
	if path == "" {
		return nil
	}
	s.lock.Lock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.lock.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (s *RunState) Get(key string) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.values[key]
}

func (s *RunState) Set(key, value string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
}

func (s *RunState) ConnectorID() string      { return s.Get(KeyConnectorID) }
func (s *RunState) SetConnectorID(id string) { s.Set(KeyConnectorID, id) }
func (s *RunState) CustomerID() string       { return s.Get(KeyCustomerID) }
func (s *RunState) SetCustomerID(id string)  { s.Set(KeyCustomerID, id) }
func (s *RunState) PaymentID() string        { return s.Get(KeyPaymentID) }
func (s *RunState) SetPaymentID(id string)   { s.Set(KeyPaymentID, id) }
func (s *RunState) MandateID() string        { return s.Get(KeyMandateID) }
func (s *RunState) SetMandateID(id string)   { s.Set(KeyMandateID, id) }
