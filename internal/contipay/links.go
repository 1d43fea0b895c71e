package contipay

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	WebhookPath  = "/contipay/webhook"
	RedirectPath = "/contipay/redirect"
)

// LinkBuilder produces the callback URLs embedded in payloads.
type LinkBuilder interface {
	WebhookURL(tx *Transaction) (string, error)
	CancelURL(tx *Transaction) (string, error)
	SuccessURL(tx *Transaction, customer Customer) string
}

// ReferenceSigner turns a transaction ID into an opaque URL token.
type ReferenceSigner interface {
	Sign(transactionID int64) (string, error)
}

// Links builds callback URLs under this service's public base URL and the
// store's order-confirmation page.
type Links struct {
	PublicBaseURL string
	ConfirmURL    string
	ModuleID      int64
	Signer        ReferenceSigner
}

func (l Links) WebhookURL(tx *Transaction) (string, error) {
	return l.signed(WebhookPath, tx)
}

func (l Links) CancelURL(tx *Transaction) (string, error) {
	return l.signed(RedirectPath, tx)
}

func (l Links) SuccessURL(tx *Transaction, customer Customer) string {
	q := url.Values{}
	q.Set("id_cart", strconv.FormatInt(tx.CartID, 10))
	q.Set("id_module", strconv.FormatInt(l.ModuleID, 10))
	q.Set("key", customer.SecureKey)
	return l.ConfirmURL + "?" + q.Encode()
}

func (l Links) signed(path string, tx *Transaction) (string, error) {
	if tx.ID == 0 {
		return "", fmt.Errorf("%w: transaction not persisted", ErrPayloadNotReady)
	}
	token, err := l.Signer.Sign(tx.ID)
	if err != nil {
		return "", fmt.Errorf("%w: sign reference: %v", ErrPayloadNotReady, err)
	}
	q := url.Values{}
	q.Set("reference", token)
	return l.PublicBaseURL + path + "?" + q.Encode(), nil
}
