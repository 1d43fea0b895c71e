package currency

import (
	"context"
	"database/sql"
	"errors"

	"contipay-be/internal/logger"

	"go.uber.org/zap"
)

var ErrCurrencyNotFound = errors.New("currency not found")

type Repository interface {
	CurrencyByID(ctx context.Context, id int64) (*Currency, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CurrencyByID(ctx context.Context, id int64) (*Currency, error) {
	const q = `
		SELECT id, iso_code, name
		FROM currencies
		WHERE id = $1
	`

	var c Currency
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.ISOCode, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCurrencyNotFound
		}
		logger.FromCtx(ctx).Error("currency lookup failed",
			zap.Int64("currency_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	return &c, nil
}
