package checkout

import (
	"context"
	"errors"

	"contipay-be/internal/contipay"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) PrepareHosted(ctx context.Context, tx *contipay.Transaction, cart contipay.Cart, customer contipay.Customer, opts contipay.HostedOptions) (*contipay.Transaction, error) {
	args := m.Called(ctx, tx, cart, customer, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockGateway) PrepareSeamless(ctx context.Context, tx *contipay.Transaction, order *contipay.Order, customer contipay.Customer, account contipay.Account, method contipay.Method) (*contipay.Transaction, error) {
	args := m.Called(ctx, tx, order, customer, account, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockGateway) PrepareAdjustment(ctx context.Context, tx *contipay.Transaction, order *contipay.Order) (*contipay.Transaction, error) {
	args := m.Called(ctx, tx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockGateway) PrepareStatusInquiry(tx *contipay.Transaction) *contipay.Transaction {
	args := m.Called(tx)
	return args.Get(0).(*contipay.Transaction)
}

func (m *MockGateway) Post(ctx context.Context, tx *contipay.Transaction, action contipay.Action, method string) *contipay.Transaction {
	args := m.Called(ctx, tx, action, method)
	return args.Get(0).(*contipay.Transaction)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, tx *contipay.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*contipay.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockRepository) FindLatestByCart(ctx context.Context, cartID int64, statuses []contipay.Status) (*contipay.Transaction, error) {
	args := m.Called(ctx, cartID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockRepository) FindLatestByOrder(ctx context.Context, orderID int64, statuses []contipay.Status) (*contipay.Transaction, error) {
	args := m.Called(ctx, orderID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockRepository) RecordExchange(ctx context.Context, ex *contipay.Exchange) error {
	return m.Called(ctx, ex).Error(0)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) txResult(args mock.Arguments) (*contipay.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contipay.Transaction), args.Error(1)
}

func (m *MockService) StartHosted(ctx context.Context, req HostedRequest) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, req))
}

func (m *MockService) StartSeamless(ctx context.Context, req SeamlessRequest) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, req))
}

func (m *MockService) Adjust(ctx context.Context, order contipay.Order) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, order))
}

func (m *MockService) RefreshByID(ctx context.Context, id int64) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, id))
}

func (m *MockService) RefreshByCart(ctx context.Context, cartID int64) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, cartID))
}

func (m *MockService) RefreshByOrder(ctx context.Context, orderID int64) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, orderID))
}

func (m *MockService) LinkOrder(ctx context.Context, cartID, orderID int64) (*contipay.Transaction, error) {
	return m.txResult(m.Called(ctx, cartID, orderID))
}

// stubVerifier accepts "ref-<id>" style tokens from a fixed table.
type stubVerifier map[string]int64

func (s stubVerifier) Verify(token string) (int64, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("token is malformed")
}
