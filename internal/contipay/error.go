package contipay

import "errors"

var (
	// -- Payload construction --
	ErrPayloadNotReady = errors.New("contipay payload not ready")
	ErrOrderMissing    = errors.New("order missing")

	// -- Persistence --
	ErrTransactionNotFound = errors.New("contipay transaction not found")
	ErrFailedSave          = errors.New("failed to save contipay transaction")

	// -- Gateway --
	ErrUnknownStatus      = errors.New("unknown status code")
	ErrEmptyRequestBody   = errors.New("transaction has no request body")
	ErrUnexpectedResponse = errors.New("unexpected gateway response")
)
