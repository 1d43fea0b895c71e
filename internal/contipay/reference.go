package contipay

import (
	"crypto/rand"
	"math/big"
	"time"
)

const refAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const refRandomLen = 8

// NewMerchantRef returns a random prefix followed by a UTC time suffix
// (MMDDYYHHMMSS), e.g. "a8Fk20Qx101926143005".
func NewMerchantRef() string {
	return newMerchantRef(time.Now().UTC())
}

func newMerchantRef(now time.Time) string {
	buf := make([]byte, refRandomLen)
	max := big.NewInt(int64(len(refAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// fallback: time-based entropy
			n = big.NewInt((now.UnixNano() >> uint(i)) % int64(len(refAlphabet)))
		}
		buf[i] = refAlphabet[n.Int64()]
	}
	return string(buf) + now.Format("010206150405")
}
