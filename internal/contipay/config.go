package contipay

import "time"

const (
	DefaultLiveURL = "https://api-v2.contipay.co.zw"
	DefaultTestURL = "https://api2-test.contipay.co.zw"
	DefaultTimeout = 15 * time.Second

	maxRedirects = 5
)

// Config carries everything the gateway client needs. It is built once at
// startup and passed in explicitly.
type Config struct {
	LiveMode    bool
	LiveURL     string
	TestURL     string
	Timeout     time.Duration
	MerchantID  int64
	Credentials Credentials

	// AllowOfflinePayment enables the cash-on-collection / cash-on-delivery
	// flags on hosted payments for registered customers.
	AllowOfflinePayment bool
}

// BaseURL picks the live or UAT endpoint.
func (c Config) BaseURL() string {
	if c.LiveMode {
		if c.LiveURL == "" {
			return DefaultLiveURL
		}
		return c.LiveURL
	}
	if c.TestURL == "" {
		return DefaultTestURL
	}
	return c.TestURL
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
