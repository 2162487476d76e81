// Package token issues and validates the bearer tokens that bind an HTTP
// caller to a wallet address. The registry itself only reasons about
// addresses; this package is the bridge from transport credentials to them.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

// Claims carries the caller address alongside the registered claims.
type Claims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// Service signs and validates HMAC access tokens.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Issue creates a token binding the given address for expiresIn.
func (s *Service) Issue(addr domain.Address, expiresIn time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address: addr.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return t.SignedString(s.signingKey)
}

// Validate parses a token and returns the bound caller address.
func (s *Service) Validate(tokenString string) (domain.Address, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		return domain.ZeroAddress, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	addr, err := domain.ParseAddress(claims.Address)
	if err != nil || addr.IsZero() {
		return domain.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token address")
	}
	return addr, nil
}
