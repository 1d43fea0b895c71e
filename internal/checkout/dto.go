package checkout

import (
	"time"

	"contipay-be/internal/contipay"

	"github.com/shopspring/decimal"
)

type customerInput struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	SecureKey string `json:"secureKey"`
	IsGuest   bool   `json:"isGuest"`
}

func (c customerInput) toCustomer() contipay.Customer {
	return contipay.Customer{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		SecureKey: c.SecureKey,
		IsGuest:   c.IsGuest,
	}
}

type hostedInput struct {
	Cart struct {
		ID                int64           `json:"id"`
		CurrencyID        int64           `json:"currencyId"`
		DeliveryAddressID int64           `json:"deliveryAddressId"`
		Total             decimal.Decimal `json:"total"`
	} `json:"cart"`
	Customer   customerInput `json:"customer"`
	IsDelivery bool          `json:"isDelivery"`
}

func (in hostedInput) toRequest() HostedRequest {
	return HostedRequest{
		Cart: contipay.Cart{
			ID:                in.Cart.ID,
			CurrencyID:        in.Cart.CurrencyID,
			DeliveryAddressID: in.Cart.DeliveryAddressID,
			Total:             in.Cart.Total,
		},
		Customer:   in.Customer.toCustomer(),
		IsDelivery: in.IsDelivery,
	}
}

type orderInput struct {
	ID                int64           `json:"id"`
	CartID            int64           `json:"cartId"`
	CurrencyID        int64           `json:"currencyId"`
	DeliveryAddressID int64           `json:"deliveryAddressId"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
}

func (o orderInput) toOrder() contipay.Order {
	return contipay.Order{
		ID:                o.ID,
		CartID:            o.CartID,
		CurrencyID:        o.CurrencyID,
		DeliveryAddressID: o.DeliveryAddressID,
		TotalPaid:         o.TotalPaid,
	}
}

type seamlessInput struct {
	Order    orderInput    `json:"order"`
	Customer customerInput `json:"customer"`
	Account  struct {
		Number string `json:"number"`
		Name   string `json:"name"`
		Code   string `json:"code"`
		Cell   string `json:"cell"`
		Expiry string `json:"expiry"`
	} `json:"account"`
	Provider struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"provider"`
}

func (in seamlessInput) toRequest() SeamlessRequest {
	return SeamlessRequest{
		Order:    in.Order.toOrder(),
		Customer: in.Customer.toCustomer(),
		Account: contipay.Account{
			Number: in.Account.Number,
			Name:   in.Account.Name,
			Code:   in.Account.Code,
			Cell:   in.Account.Cell,
			Expiry: in.Account.Expiry,
		},
		Method: contipay.Method{Code: in.Provider.Code, Name: in.Provider.Name},
	}
}

// adjustInput carries only the new total. The currency and provider come
// from the settled transaction being adjusted.
type adjustInput struct {
	TotalPaid decimal.Decimal `json:"totalPaid"`
}

type linkOrderInput struct {
	OrderID int64 `json:"orderId"`
}

// TransactionView is what the store backend sees of an attempt.
type TransactionView struct {
	ID          int64           `json:"id"`
	MerchantRef string          `json:"merchantRef"`
	CartID      int64           `json:"cartId"`
	OrderID     *int64          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	StatusCode  int             `json:"statusCode"`
	Status      string          `json:"status"`
	Settled     bool            `json:"settled"`
	Response    string          `json:"response"`
	ContipayRef string          `json:"contipayRef,omitempty"`
	Provider    string          `json:"provider,omitempty"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func toView(tx *contipay.Transaction) TransactionView {
	return TransactionView{
		ID:          tx.ID,
		MerchantRef: tx.MerchantRef,
		CartID:      tx.CartID,
		OrderID:     tx.OrderID,
		Amount:      tx.MerchantAmount,
		StatusCode:  int(tx.StatusCode),
		Status:      tx.StatusCode.String(),
		Settled:     isSettled(tx.StatusCode),
		Response:    tx.Response,
		ContipayRef: tx.ContipayRef,
		Provider:    tx.ProviderName,
		RedirectURL: tx.RedirectURL,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func isSettled(s contipay.Status) bool {
	for _, settled := range contipay.SettledStatuses {
		if s == settled {
			return true
		}
	}
	return false
}
