package contipay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the persisted status_code of a transaction. Gateway codes outside
// the named set are stored as received.
type Status int

const (
	StatusPending   Status = 1
	StatusPaid      Status = 2
	StatusConfirmed Status = 3
	StatusApproved  Status = 4
	StatusDeclined  Status = 5
	StatusError     Status = 6
)

var statusNames = map[Status]string{
	StatusPending:   "Pending",
	StatusPaid:      "Paid",
	StatusConfirmed: "Confirmed",
	StatusApproved:  "Approved",
	StatusDeclined:  "Declined",
	StatusError:     "Error",
}

var (
	// DefaultCartStatuses is the filter used when resuming a checkout by cart.
	DefaultCartStatuses = []Status{StatusPending, StatusPaid, StatusError, StatusConfirmed}
	// DefaultOrderStatuses matches every known status.
	DefaultOrderStatuses = []Status{
		StatusPending, StatusPaid, StatusError, StatusConfirmed, StatusApproved, StatusDeclined,
	}
	// SettledStatuses are the ones an adjustment can be issued against.
	SettledStatuses = []Status{StatusPaid, StatusConfirmed, StatusApproved}
)

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Terminal reports whether the gateway will no longer move the status.
// Paid and Confirmed still progress to Approved; Error may be retried.
func (s Status) Terminal() bool {
	return s == StatusDeclined
}

// Known reports whether s is one of the named statuses.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// MetricLabel is String with unnamed gateway codes folded into "unknown".
func (s Status) MetricLabel() string {
	if !s.Known() {
		return "unknown"
	}
	return s.String()
}

// ParseStatus accepts a numeric code or a status name (case-insensitive).
func ParseStatus(v string) (Status, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return Status(n), nil
	}
	for code, name := range statusNames {
		if strings.EqualFold(name, v) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, v)
}

// UnmarshalJSON tolerates numbers, numeric strings and status names.
func (s *Status) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		parsed, err := ParseStatus(str)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, string(b))
	}
	*s = Status(n)
	return nil
}

func statusInts(statuses []Status) []int64 {
	out := make([]int64, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, int64(s))
	}
	return out
}
