package contipay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// Action is a ContiPay API path.
type Action string

const (
	ActionAcquire  Action = "/acquire/payment"
	ActionAdjust   Action = "/transaction/update"
	ActionResponse Action = "/acquire/response"
	ActionDisburse Action = "/disburse/payment"
)

// RawResponse is an uninterpreted gateway reply.
type RawResponse struct {
	Status int
	Body   []byte
}

// TransportError means no HTTP response was obtained.
type TransportError struct {
	Action Action
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("contipay %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the exchange ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Transport performs a single HTTP exchange with the gateway.
type Transport interface {
	Send(ctx context.Context, method string, action Action, authorization string, body []byte) (*RawResponse, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Transport bound to the live or test endpoint.
func NewClient(cfg Config) Transport {
	return &client{
		baseURL: cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout: cfg.timeout(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

func (c *client) Send(ctx context.Context, method string, action Action, authorization string, body []byte) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+string(action), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("read response: %w", err)}
	}

	return &RawResponse{Status: resp.StatusCode, Body: respBody}, nil
}
