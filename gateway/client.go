package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/openpayments/mandate-contract-tests/framework"
)

const defaultRequestTimeout = time.Second * 30

// Sandbox environments tend to throttle aggressively, so outgoing calls are
// paced rather than fired back to back.
const requestsPerSecond = 10

// Client talks to the payments API of the gateway under test. A Client is
// cheap; the suite creates one per test so that request logging goes to that
// test's debug log.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     framework.Logger
}

func NewClient(baseURL string, apiKey string, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     framework.LoggerWithPrefix(logger, "[gateway] "),
	}
}

// WaitUntilReady polls the gateway's health resource until it responds with
// 200, printing progress to the given writer. The harness calls this once
// before running any tests.
func (c *Client) WaitUntilReady(timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to payment gateway at %s", c.baseURL)

	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(c.baseURL + "/health")
		if err == nil {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == 200 {
				fmt.Fprintln(output)
				if len(data) > 0 {
					fmt.Fprintf(output, "Health query returned: %s\n", string(data))
				}
				return nil
			}
			lastErr = fmt.Errorf("gateway returned status code %d", resp.StatusCode)
		} else {
			lastErr = err
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out waiting for gateway: %w", lastErr)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

// CreatePayment starts a payment. With Confirm set it performs the whole
// create-and-confirm in one call, which is how both CIT and MIT steps use it.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	return c.paymentCall(ctx, "POST", "/payments", req)
}

// ConfirmPayment confirms a payment that was created with Confirm unset.
func (c *Client) ConfirmPayment(ctx context.Context, paymentID string, req PaymentRequest) (*PaymentResponse, error) {
	return c.paymentCall(ctx, "POST", "/payments/"+paymentID+"/confirm", req)
}

// CapturePayment settles a previously authorized amount on a manual-capture
// payment.
func (c *Client) CapturePayment(ctx context.Context, paymentID string, req CaptureRequest) (*PaymentResponse, error) {
	return c.paymentCall(ctx, "POST", "/payments/"+paymentID+"/capture", req)
}

// RetrievePayment fetches the current state of a payment.
func (c *Client) RetrievePayment(ctx context.Context, paymentID string) (*PaymentResponse, error) {
	return c.paymentCall(ctx, "GET", "/payments/"+paymentID, nil)
}

// CompleteAuthentication finishes the customer-action step of a 3DS payment.
// In a real browser flow this is the redirect round trip; the contract tests
// drive it directly.
func (c *Client) CompleteAuthentication(ctx context.Context, paymentID string) (*PaymentResponse, error) {
	return c.paymentCall(ctx, "POST", "/payments/"+paymentID+"/authenticate", nil)
}

// ListMandates returns the mandates stored for a customer.
func (c *Client) ListMandates(ctx context.Context, customerID string) ([]Mandate, error) {
	status, body, err := c.do(ctx, "GET", "/customers/"+customerID+"/mandates", nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("list mandates returned status %d: %s", status, body.JSONString())
	}
	var mandates []Mandate
	if err := json.Unmarshal([]byte(body.JSONString()), &mandates); err != nil {
		return nil, fmt.Errorf("malformed mandate list from gateway: %w", err)
	}
	return mandates, nil
}

// RevokeMandate marks a mandate as no longer usable for merchant-initiated
// payments.
func (c *Client) RevokeMandate(ctx context.Context, mandateID string) (*Mandate, error) {
	status, body, err := c.do(ctx, "POST", "/mandates/"+mandateID+"/revoke", nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("revoke mandate returned status %d: %s", status, body.JSONString())
	}
	var mandate Mandate
	if err := json.Unmarshal([]byte(body.JSONString()), &mandate); err != nil {
		return nil, fmt.Errorf("malformed mandate from gateway: %w", err)
	}
	return &mandate, nil
}

func (c *Client) paymentCall(ctx context.Context, method, path string, reqBody interface{}) (*PaymentResponse, error) {
	status, body, err := c.do(ctx, method, path, reqBody)
	if err != nil {
		return nil, err
	}
	return paymentResponseFromBody(status, body), nil
}

// do sends one request and returns the status and parsed body. Only transport
// and encoding problems are Go errors; gateway-reported failures come back as
// part of the response so tests can match them against fixtures.
func (c *Client) do(ctx context.Context, method, path string, reqBody interface{}) (int, ldvalue.Value, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, ldvalue.Null(), err
	}

	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return 0, ldvalue.Null(), err
		}
		c.logger.Printf("%s %s body: %s", method, path, string(data))
		bodyReader = bytes.NewBuffer(data)
	} else {
		c.logger.Printf("%s %s", method, path)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, ldvalue.Null(), err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, ldvalue.Null(), fmt.Errorf("request to gateway failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, ldvalue.Null(), fmt.Errorf("reading gateway response failed: %w", err)
	}

	c.logger.Printf("response %d: %s", resp.StatusCode, string(data))

	body := ldvalue.Null()
	if len(data) > 0 {
		body = ldvalue.Parse(data)
	}
	return resp.StatusCode, body, nil
}
