package checkout

import "errors"

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNotSettled    = errors.New("order has no settled contipay transaction")
	ErrMissingMethod = errors.New("payment provider is required")
	ErrBadReference  = errors.New("invalid callback reference")
)
