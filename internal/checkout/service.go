package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"contipay-be/internal/contipay"
	"contipay-be/internal/logger"

	"go.uber.org/zap"
)

// Gateway is the part of contipay.Processor the checkout flows drive.
type Gateway interface {
	PrepareHosted(ctx context.Context, tx *contipay.Transaction, cart contipay.Cart, customer contipay.Customer, opts contipay.HostedOptions) (*contipay.Transaction, error)
	PrepareSeamless(ctx context.Context, tx *contipay.Transaction, order *contipay.Order, customer contipay.Customer, account contipay.Account, method contipay.Method) (*contipay.Transaction, error)
	PrepareAdjustment(ctx context.Context, tx *contipay.Transaction, order *contipay.Order) (*contipay.Transaction, error)
	PrepareStatusInquiry(tx *contipay.Transaction) *contipay.Transaction
	Post(ctx context.Context, tx *contipay.Transaction, action contipay.Action, method string) *contipay.Transaction
}

type HostedRequest struct {
	Cart       contipay.Cart
	Customer   contipay.Customer
	IsDelivery bool
}

type SeamlessRequest struct {
	Order    contipay.Order
	Customer contipay.Customer
	Account  contipay.Account
	Method   contipay.Method
}

type Service interface {
	StartHosted(ctx context.Context, req HostedRequest) (*contipay.Transaction, error)
	StartSeamless(ctx context.Context, req SeamlessRequest) (*contipay.Transaction, error)
	Adjust(ctx context.Context, order contipay.Order) (*contipay.Transaction, error)

	RefreshByID(ctx context.Context, id int64) (*contipay.Transaction, error)
	RefreshByCart(ctx context.Context, cartID int64) (*contipay.Transaction, error)
	RefreshByOrder(ctx context.Context, orderID int64) (*contipay.Transaction, error)

	LinkOrder(ctx context.Context, cartID, orderID int64) (*contipay.Transaction, error)
}

type service struct {
	gateway Gateway
	repo    contipay.Repository
	newTx   func() *contipay.Transaction
}

func NewService(gateway Gateway, repo contipay.Repository) Service {
	return &service{
		gateway: gateway,
		repo:    repo,
		newTx:   contipay.NewTransaction,
	}
}

// StartHosted opens a new attempt for the cart and returns it with the
// gateway's redirect URL when one was issued.
func (s *service) StartHosted(ctx context.Context, req HostedRequest) (*contipay.Transaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("component", "Checkout"),
		zap.String("method", "StartHosted"),
		zap.Int64("cart_id", req.Cart.ID),
	)

	if !req.Cart.Total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.gateway.PrepareHosted(ctx, s.newTx(), req.Cart, req.Customer, contipay.HostedOptions{IsDelivery: req.IsDelivery})
	if err != nil {
		log.Warn("hosted payload not built", zap.Error(err))
		return nil, err
	}

	tx = s.gateway.Post(ctx, tx, contipay.ActionAcquire, http.MethodPut)
	log.Info("hosted checkout started",
		zap.Int64("transaction_id", tx.ID),
		zap.Stringer("status", tx.StatusCode),
	)
	return tx, nil
}

func (s *service) StartSeamless(ctx context.Context, req SeamlessRequest) (*contipay.Transaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("component", "Checkout"),
		zap.String("method", "StartSeamless"),
		zap.Int64("order_id", req.Order.ID),
	)

	if !req.Order.TotalPaid.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.Method.Code == "" {
		return nil, ErrMissingMethod
	}

	order := req.Order
	tx, err := s.gateway.PrepareSeamless(ctx, s.newTx(), &order, req.Customer, req.Account, req.Method)
	if err != nil {
		log.Warn("seamless payload not built", zap.Error(err))
		return nil, err
	}

	tx = s.gateway.Post(ctx, tx, contipay.ActionAcquire, http.MethodPost)
	log.Info("seamless charge sent",
		zap.Int64("transaction_id", tx.ID),
		zap.String("provider", tx.ProviderCode),
		zap.Stringer("status", tx.StatusCode),
	)
	return tx, nil
}

// Adjust re-prices the latest settled transaction of the order to its
// current total.
func (s *service) Adjust(ctx context.Context, order contipay.Order) (*contipay.Transaction, error) {
	if !order.TotalPaid.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.repo.FindLatestByOrder(ctx, order.ID, contipay.SettledStatuses)
	if err != nil {
		if errors.Is(err, contipay.ErrTransactionNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotSettled, order.ID)
		}
		return nil, err
	}

	if _, err := s.gateway.PrepareAdjustment(ctx, tx, &order); err != nil {
		return nil, err
	}
	return s.gateway.Post(ctx, tx, contipay.ActionAdjust, http.MethodPost), nil
}

func (s *service) RefreshByID(ctx context.Context, id int64) (*contipay.Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, tx), nil
}

func (s *service) RefreshByCart(ctx context.Context, cartID int64) (*contipay.Transaction, error) {
	tx, err := s.repo.FindLatestByCart(ctx, cartID, nil)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, tx), nil
}

func (s *service) RefreshByOrder(ctx context.Context, orderID int64) (*contipay.Transaction, error) {
	tx, err := s.repo.FindLatestByOrder(ctx, orderID, nil)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, tx), nil
}

// refresh asks the gateway for the current state. Terminal attempts are
// returned as stored.
func (s *service) refresh(ctx context.Context, tx *contipay.Transaction) *contipay.Transaction {
	if tx.StatusCode.Terminal() {
		return tx
	}
	s.gateway.PrepareStatusInquiry(tx)
	return s.gateway.Post(ctx, tx, contipay.ActionResponse, http.MethodPost)
}

// LinkOrder attaches a newly placed store order to the cart's latest attempt.
func (s *service) LinkOrder(ctx context.Context, cartID, orderID int64) (*contipay.Transaction, error) {
	tx, err := s.repo.FindLatestByCart(ctx, cartID, nil)
	if err != nil {
		return nil, err
	}

	if tx.OrderID != nil && *tx.OrderID == orderID {
		return tx, nil
	}

	tx.SetOrder(orderID)
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order linked to contipay transaction",
		zap.Int64("cart_id", cartID),
		zap.Int64("order_id", orderID),
		zap.Int64("transaction_id", tx.ID),
	)
	return tx, nil
}
