package contipay

import (
	"time"

	"github.com/shopspring/decimal"
)

const initialData = `["Transaction Initiated"]`

// Transaction is one payment attempt against ContiPay, stored in
// contipay_transactions.
type Transaction struct {
	ID          int64
	MerchantRef string

	OrderID    *int64
	CartID     int64
	CustomerID int64
	CurrencyID int64

	MerchantAmount decimal.Decimal
	MerchantCharge decimal.NullDecimal
	CustomerCharge decimal.NullDecimal

	Description  string
	ProviderCode string
	ProviderName string
	Correlator   string
	ContipayRef  string

	StatusCode Status
	Response   string
	Data       string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Not persisted.
	RedirectURL string
	RequestBody []byte

	responded bool
}

// NewTransaction starts an attempt in Pending with a fresh merchant reference.
func NewTransaction() *Transaction {
	return &Transaction{
		MerchantRef: NewMerchantRef(),
		StatusCode:  StatusPending,
		Data:        initialData,
	}
}

// HasResponse reports whether a gateway response body has been recorded.
func (t *Transaction) HasResponse() bool {
	return t.responded || (t.Data != "" && t.Data != initialData)
}

// recordRaw keeps the first gateway body on the transaction; later bodies only
// reach the exchange log.
func (t *Transaction) recordRaw(body string) {
	if t.HasResponse() {
		return
	}
	t.Data = body
	t.responded = true
}

// SetOrder links the attempt to a store order.
func (t *Transaction) SetOrder(orderID int64) {
	t.OrderID = &orderID
}

// Cart is the store cart being checked out.
type Cart struct {
	ID                int64
	CurrencyID        int64
	DeliveryAddressID int64
	Total             decimal.Decimal
}

// Order is a placed store order.
type Order struct {
	ID                int64
	CartID            int64
	CurrencyID        int64
	DeliveryAddressID int64
	TotalPaid         decimal.Decimal
}

// Customer is the store customer paying.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	SecureKey string
	IsGuest   bool
}

// Account holds the wallet or card details for a seamless charge.
type Account struct {
	Number string
	Name   string
	Code   string
	Cell   string
	Expiry string
}

// Method is a ContiPay payment provider.
type Method struct {
	Code string
	Name string
}

// HostedOptions controls the offline-payment flags of a hosted payment.
type HostedOptions struct {
	IsDelivery bool
}
