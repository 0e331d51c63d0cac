// Package credential mints and verifies the one-time redemption
// credentials: signed tokens binding a voucher to a customer, and
// human-enterable short codes. Replay protection is not enforced here;
// the usecase layer consumes the jti through the replay store.
package credential

import (
	"errors"
	"time"

	"redemption-engine/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClaims struct {
	VoucherID  uuid.UUID `json:"voucher_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secretKey []byte
	tokenTTL  time.Duration
}

func NewTokenService(secretKey string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

func (s *TokenService) TTL() time.Duration {
	return s.tokenTTL
}

// Issue mints a signed single-use token for the voucher/customer pair.
// The jti is fresh per issue and is the replay-tracking key.
func (s *TokenService) Issue(voucherID, customerID uuid.UUID, now time.Time) (string, *TokenClaims, error) {
	claims := TokenClaims{
		VoucherID:  voucherID,
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", nil, errs.Wrap(err, "failed to sign redemption token")
	}
	return signed, &claims, nil
}

// Verify authenticates a presented token and returns its claims.
// Expiry is evaluated against now so callers can inject a clock.
func (s *TokenService) Verify(tokenString string, now time.Time) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrMalformedCredential
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.ErrExpiredCredential
		}
		return nil, errs.ErrMalformedCredential
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errs.ErrMalformedCredential
	}
	if claims.ID == "" || claims.VoucherID == uuid.Nil || claims.CustomerID == uuid.Nil {
		return nil, errs.ErrMalformedCredential
	}

	return claims, nil
}
