package contipay

import "encoding/base64"

// Credentials is the ContiPay API key/secret pair.
type Credentials struct {
	Key    string
	Secret string
}

// BasicAuthToken returns Base64(key + ":" + secret). Values are used verbatim;
// an empty pair still yields a token and the gateway rejects it.
func BasicAuthToken(key, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
}

func (c Credentials) Token() string {
	return BasicAuthToken(c.Key, c.Secret)
}

// Header is the Authorization header value.
func (c Credentials) Header() string {
	return "Basic " + c.Token()
}
