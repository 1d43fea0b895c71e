package contipay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Result is the classified outcome of one exchange: Success, Decline,
// Unexpected or TransportFailure.
type Result interface {
	outcome() string
}

type Success struct {
	Status int
	Body   []byte
}

// Decline is a business rejection reported by the gateway.
type Decline struct {
	Status int
	Body   []byte
}

// Unexpected is any other non-2xx reply.
type Unexpected struct {
	Status int
	Body   []byte
}

type TransportFailure struct {
	Err error
}

func (Success) outcome() string          { return "success" }
func (Decline) outcome() string          { return "declined" }
func (Unexpected) outcome() string       { return "unexpected" }
func (TransportFailure) outcome() string { return "transport_error" }

// Outcome is the metric/log label of a result.
func Outcome(r Result) string { return r.outcome() }

var declineStatuses = map[int]bool{
	http.StatusUnauthorized: true,
	http.StatusNotFound:     true,
	http.StatusConflict:     true,
}

// gatewayReply is the body ContiPay returns for every action.
type gatewayReply struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	StatusCode  Status `json:"statusCode"`
	ContiPayRef string `json:"contiPayRef"`
	RedirectURL string `json:"redirectUrl"`

	// Present on inquiry and webhook-triggered replies.
	Correlator   string `json:"correlator"`
	ProviderCode string `json:"providerCode"`
	ProviderName string `json:"providerName"`
}

// Classify maps a transport outcome onto a Result.
func Classify(resp *RawResponse, err error) Result {
	if err != nil {
		return TransportFailure{Err: err}
	}
	if resp == nil {
		return TransportFailure{Err: fmt.Errorf("%w: no response", ErrUnexpectedResponse)}
	}

	switch {
	case declineStatuses[resp.Status]:
		return Decline{Status: resp.Status, Body: resp.Body}
	case resp.Status >= 200 && resp.Status < 300:
		if reportsError(resp.Body) {
			return Decline{Status: resp.Status, Body: resp.Body}
		}
		return Success{Status: resp.Status, Body: resp.Body}
	default:
		return Unexpected{Status: resp.Status, Body: resp.Body}
	}
}

// reportsError detects a 2xx body carrying "status": "Error".
func reportsError(body []byte) bool {
	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return strings.EqualFold(probe.Status, "error")
}

func decodeReply(body []byte) (*gatewayReply, error) {
	var reply gatewayReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return &reply, nil
}

// replyMessage extracts "message" from a decline or error body.
func replyMessage(body []byte) (string, error) {
	var reply struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if reply.Message == nil {
		return "", fmt.Errorf("%w: reply without message", ErrUnexpectedResponse)
	}
	return *reply.Message, nil
}
