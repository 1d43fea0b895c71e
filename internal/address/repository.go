package address

import (
	"context"
	"database/sql"
	"errors"

	"contipay-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	AddressForCustomer(ctx context.Context, customerID, addressID int64) (*Address, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectAddress = `
	SELECT
		a.id, a.customer_id,
		a.firstname, a.lastname,
		COALESCE(a.phone, ''), COALESCE(a.phone_mobile, ''),
		a.address1, a.city, COALESCE(a.postcode, ''),
		c.iso_code
	FROM addresses a
	JOIN countries c ON c.id = a.country_id
`

func scanAddress(row interface{ Scan(...any) error }) (*Address, error) {
	var a Address
	err := row.Scan(
		&a.ID, &a.CustomerID,
		&a.FirstName, &a.LastName,
		&a.Phone, &a.PhoneMobile,
		&a.Address1, &a.City, &a.Postal,
		&a.CountryISO,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AddressForCustomer loads an address only if it belongs to the customer.
func (r *repository) AddressForCustomer(ctx context.Context, customerID, addressID int64) (*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "AddressForCustomer"),
		zap.Int64("customer_id", customerID),
		zap.Int64("address_id", addressID),
	)

	q := selectAddress + `
	WHERE a.id = $1
	  AND a.customer_id = $2
	  AND a.deleted = false
	`

	a, err := scanAddress(r.db.QueryRowContext(ctx, q, addressID, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("address not found")
			return nil, ErrAddressNotFound
		}
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	return a, nil
}
