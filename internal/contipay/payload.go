package contipay

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	paymentTypeCharge     = "charge"
	adjustmentDescription = "Order Adjustment by Merchant"
)

// PayloadCustomer is the customer block shared by hosted and seamless payments.
type PayloadCustomer struct {
	NationalID  *string `json:"nationalId"`
	FirstName   string  `json:"firstName"`
	Surname     string  `json:"surname"`
	MiddleName  string  `json:"middleName"`
	Email       string  `json:"email"`
	Cell        string  `json:"cell"`
	CountryCode string  `json:"countryCode"`
}

// HostedPayment redirects the buyer to the ContiPay checkout page.
type HostedPayment struct {
	WebhookURL   string           `json:"webhookUrl"`
	Type         string           `json:"type"`
	Amount       json.Number      `json:"amount"`
	Reference    string           `json:"reference"`
	Description  string           `json:"description"`
	MerchantID   int64            `json:"merchantId"`
	SuccessURL   string           `json:"successUrl"`
	CancelURL    string           `json:"cancelUrl"`
	CurrencyCode string           `json:"currencyCode"`
	COC          *bool            `json:"coc,omitempty"`
	COD          *bool            `json:"cod,omitempty"`
	Customer     *PayloadCustomer `json:"customer,omitempty"`
}

// SeamlessPayment charges a wallet or card directly, with no redirect.
type SeamlessPayment struct {
	Customer       PayloadCustomer     `json:"customer"`
	Transaction    SeamlessTransaction `json:"transaction"`
	AccountDetails AccountDetails      `json:"accountDetails"`
}

type SeamlessTransaction struct {
	CurrencyCode string      `json:"currencyCode"`
	ProviderCode string      `json:"providerCode"`
	ProviderName string      `json:"providerName"`
	Amount       json.Number `json:"amount"`
	WebhookURL   string      `json:"webhookUrl"`
	MerchantID   int64       `json:"merchantId"`
	Description  string      `json:"description"`
	Reference    string      `json:"reference"`
}

type AccountDetails struct {
	AccountNumber string       `json:"accountNumber"`
	AccountName   string       `json:"accountName"`
	AccountExtra  AccountExtra `json:"accountExtra"`
}

type AccountExtra struct {
	Account     string `json:"account"`
	AccountName string `json:"accountName"`
	Code        string `json:"code"`
	SMSNumber   string `json:"smsNumber"`
	Expiry      string `json:"expiry"`
}

// Adjustment amends the charged amount of a settled transaction.
type Adjustment struct {
	CurrencyCode string      `json:"currencyCode"`
	ProviderCode string      `json:"providerCode"`
	Amount       json.Number `json:"amount"`
	MerchantID   int64       `json:"merchantId"`
	Description  string      `json:"description"`
	ContiPayRef  string      `json:"contiPayRef"`
}

// StatusInquiry asks the gateway for the current state of a transaction.
type StatusInquiry struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	StatusCode  Status      `json:"statusCode"`
	Correlator  string      `json:"correlator"`
}

func amountNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// setRequest replaces the pending request body.
func (t *Transaction) setRequest(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	t.RequestBody = body
	return nil
}

func offlineFlags(isDelivery bool) (coc, cod *bool) {
	onCollection := !isDelivery
	onDelivery := isDelivery
	return &onCollection, &onDelivery
}

func strPtr(s string) *string { return &s }
