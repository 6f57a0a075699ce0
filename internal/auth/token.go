// Package auth issues and verifies the HS256 access tokens guarding the API,
// and enforces role permissions through casbin.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v4"
	"github.com/hubblehq/hubble/internal/clock"
	"github.com/hubblehq/hubble/internal/config"
)

var ErrInvalidToken = errors.New("auth: invalid token")

type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
	clock    clock.Clock
}

func NewTokenIssuer(cfg config.Config, clk clock.Clock) (*TokenIssuer, error) {
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth: HUBBLE_AUTH_SECRET is required")
	}
	return &TokenIssuer{
		secret:   []byte(cfg.Auth.Secret),
		issuer:   cfg.Auth.Issuer,
		audience: cfg.Auth.Audience,
		lifetime: cfg.Auth.TokenLifetime,
		clock:    clk,
	}, nil
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (t *TokenIssuer) Issue(userID snowflake.ID, role string) (string, error) {
	now := t.clock.Now(context.Background())
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses the token and returns the authenticated user ID and role.
func (t *TokenIssuer) Verify(token string) (snowflake.ID, string, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidToken
	}
	if !claims.VerifyIssuer(t.issuer, true) || !claims.VerifyAudience(t.audience, true) {
		return 0, "", ErrInvalidToken
	}

	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	return userID, claims.Role, nil
}
