package auth

import "errors"

var (
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSecret  = errors.New("signing secret not configured")
	ErrWrongAudience  = errors.New("token issued for another audience")
	ErrInvalidSubject = errors.New("invalid token subject")
)
