package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	referenceIssuer   = "contipay-be"
	referenceAudience = "contipay-callback"
	serviceAudience   = "contipay-service"
)

// ReferenceSigner issues and verifies the tokens that stand in for a
// transaction ID in webhook and redirect URLs.
type ReferenceSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewReferenceSigner(secret string, ttl time.Duration) *ReferenceSigner {
	return &ReferenceSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token whose subject is the transaction ID.
func (s *ReferenceSigner) Sign(transactionID int64) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    referenceIssuer,
		Subject:   strconv.FormatInt(transactionID, 10),
		Audience:  jwt.ClaimStrings{referenceAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the transaction ID carried by a reference token.
func (s *ReferenceSigner) Verify(token string) (int64, error) {
	claims, err := parse(token, s.secret, referenceAudience, s.now)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSubject, claims.Subject)
	}
	return id, nil
}

// VerifyServiceToken checks a store-backend token and returns its subject.
func VerifyServiceToken(token, secret string) (string, error) {
	claims, err := parse(token, []byte(secret), serviceAudience, time.Now)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IssueServiceToken mints a token for the store backend.
func IssueServiceToken(subject, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{serviceAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parse(token string, secret []byte, audience string, now func() time.Time) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalidAudience) {
			return nil, ErrWrongAudience
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
