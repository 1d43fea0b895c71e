package contipay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contipay-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository persists transactions and the exchange log.
type Repository interface {
	Save(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id int64) (*Transaction, error)
	FindLatestByCart(ctx context.Context, cartID int64, statuses []Status) (*Transaction, error)
	FindLatestByOrder(ctx context.Context, orderID int64, statuses []Status) (*Transaction, error)
	RecordExchange(ctx context.Context, ex *Exchange) error
}

// Exchange is one request/response pair sent for a transaction.
type Exchange struct {
	ID            int64
	TransactionID int64
	Action        Action
	Method        string
	RequestBody   []byte
	HTTPStatus    int
	Outcome       string
	ResponseBody  string
	CreatedAt     time.Time
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const transactionColumns = `
	id, currency_id, order_id, cart_id, customer_id, status_code,
	merchant_amount, merchant_charge, customer_charge,
	merchant_ref, description, correlator, provider_code, provider_name,
	contipay_ref, response, data, created_at, updated_at
`

// Save inserts a new transaction or updates an existing one. The merchant
// reference is written only on insert.
func (r *repository) Save(ctx context.Context, tx *Transaction) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "ContiPay"),
		zap.String("method", "Save"),
		zap.String("merchant_ref", tx.MerchantRef),
	)

	if tx.ID == 0 {
		const q = `
		INSERT INTO contipay_transactions (
			currency_id, order_id, cart_id, customer_id, status_code,
			merchant_amount, merchant_charge, customer_charge,
			merchant_ref, description, correlator, provider_code, provider_name,
			contipay_ref, response, data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRowContext(ctx, q,
			tx.CurrencyID, tx.OrderID, tx.CartID, tx.CustomerID, int64(tx.StatusCode),
			tx.MerchantAmount, tx.MerchantCharge, tx.CustomerCharge,
			tx.MerchantRef, tx.Description, tx.Correlator, tx.ProviderCode, tx.ProviderName,
			tx.ContipayRef, tx.Response, tx.Data,
		).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			log.Error("insert failed", zap.Error(err))
			return fmt.Errorf("%w: %v", ErrFailedSave, err)
		}
		return nil
	}

	const q = `
	UPDATE contipay_transactions SET
		currency_id = $2, order_id = $3, cart_id = $4, customer_id = $5, status_code = $6,
		merchant_amount = $7, merchant_charge = $8, customer_charge = $9,
		description = $10, correlator = $11, provider_code = $12, provider_name = $13,
		contipay_ref = $14, response = $15, data = $16, updated_at = now()
	WHERE id = $1
	RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, q,
		tx.ID,
		tx.CurrencyID, tx.OrderID, tx.CartID, tx.CustomerID, int64(tx.StatusCode),
		tx.MerchantAmount, tx.MerchantCharge, tx.CustomerCharge,
		tx.Description, tx.Correlator, tx.ProviderCode, tx.ProviderName,
		tx.ContipayRef, tx.Response, tx.Data,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("update matched no rows", zap.Int64("id", tx.ID))
			return ErrTransactionNotFound
		}
		log.Error("update failed", zap.Int64("id", tx.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedSave, err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM contipay_transactions WHERE id = $1`
	return r.findOne(ctx, "FindByID", q, id)
}

// FindLatestByCart returns the most recent transaction for the cart whose
// status is in statuses (DefaultCartStatuses when empty).
func (r *repository) FindLatestByCart(ctx context.Context, cartID int64, statuses []Status) (*Transaction, error) {
	if len(statuses) == 0 {
		statuses = DefaultCartStatuses
	}
	q := `SELECT ` + transactionColumns + `
		FROM contipay_transactions
		WHERE cart_id = $1
		  AND status_code = ANY($2)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.findOne(ctx, "FindLatestByCart", q, cartID, pq.Array(statusInts(statuses)))
}

// FindLatestByOrder is FindLatestByCart keyed by order (DefaultOrderStatuses
// when empty).
func (r *repository) FindLatestByOrder(ctx context.Context, orderID int64, statuses []Status) (*Transaction, error) {
	if len(statuses) == 0 {
		statuses = DefaultOrderStatuses
	}
	q := `SELECT ` + transactionColumns + `
		FROM contipay_transactions
		WHERE order_id = $1
		  AND status_code = ANY($2)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.findOne(ctx, "FindLatestByOrder", q, orderID, pq.Array(statusInts(statuses)))
}

func (r *repository) findOne(ctx context.Context, method, q string, args ...any) (*Transaction, error) {
	var (
		tx      Transaction
		orderID sql.NullInt64
		status  int64
	)

	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&tx.ID, &tx.CurrencyID, &orderID, &tx.CartID, &tx.CustomerID, &status,
		&tx.MerchantAmount, &tx.MerchantCharge, &tx.CustomerCharge,
		&tx.MerchantRef, &tx.Description, &tx.Correlator, &tx.ProviderCode, &tx.ProviderName,
		&tx.ContipayRef, &tx.Response, &tx.Data, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		logger.FromCtx(ctx).Error("transaction query failed",
			zap.String("repo", "ContiPay"),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}

	if orderID.Valid {
		tx.SetOrder(orderID.Int64)
	}
	tx.StatusCode = Status(status)
	return &tx, nil
}

func (r *repository) RecordExchange(ctx context.Context, ex *Exchange) error {
	const q = `
	INSERT INTO contipay_exchanges (
		transaction_id, action, method, request_body, http_status, outcome, response_body
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at
	`

	var status sql.NullInt64
	if ex.HTTPStatus > 0 {
		status = sql.NullInt64{Int64: int64(ex.HTTPStatus), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, q,
		ex.TransactionID, string(ex.Action), ex.Method, string(ex.RequestBody),
		status, ex.Outcome, ex.ResponseBody,
	).Scan(&ex.ID, &ex.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to record exchange",
			zap.Int64("transaction_id", ex.TransactionID),
			zap.String("action", string(ex.Action)),
			zap.Error(err),
		)
		return err
	}
	return nil
}
