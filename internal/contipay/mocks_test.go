package contipay

import (
	"context"
	"fmt"

	"contipay-be/internal/address"
	"contipay-be/internal/currency"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, method string, action Action, authorization string, body []byte) (*RawResponse, error) {
	args := m.Called(ctx, method, action, authorization, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RawResponse), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, tx *Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) FindLatestByCart(ctx context.Context, cartID int64, statuses []Status) (*Transaction, error) {
	args := m.Called(ctx, cartID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) FindLatestByOrder(ctx context.Context, orderID int64, statuses []Status) (*Transaction, error) {
	args := m.Called(ctx, orderID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Transaction), args.Error(1)
}

func (m *MockRepository) RecordExchange(ctx context.Context, ex *Exchange) error {
	args := m.Called(ctx, ex)
	return args.Error(0)
}

type MockCurrencies struct {
	mock.Mock
}

func (m *MockCurrencies) CurrencyByID(ctx context.Context, id int64) (*currency.Currency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

type MockAddresses struct {
	mock.Mock
}

func (m *MockAddresses) AddressForCustomer(ctx context.Context, customerID, addressID int64) (*address.Address, error) {
	args := m.Called(ctx, customerID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

type stubSigner struct {
	err error
}

func (s stubSigner) Sign(id int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("tok-%d", id), nil
}

func testLinks() Links {
	return Links{
		PublicBaseURL: "https://pay.example.com",
		ConfirmURL:    "https://shop.example.com/order-confirmation",
		ModuleID:      12,
		Signer:        stubSigner{},
	}
}

func testConfig() Config {
	return Config{
		MerchantID:  77,
		Credentials: Credentials{Key: "api-key", Secret: "api-secret"},
	}
}
