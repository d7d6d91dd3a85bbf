package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/km-arc/go-nest/framework/config"
)

// ErrTokensDisabled is returned when no signing secret is configured.
var ErrTokensDisabled = errors.New("auth: AUTH_JWT_SECRET is not set")

// Claims are the JWT claims issued for API callers.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{secret: []byte(cfg.Auth.JWTSecret), issuer: cfg.App.Name, now: time.Now}
}

// Enabled reports whether a secret is configured.
func (s *TokenService) Enabled() bool { return len(s.secret) > 0 }

// Issue signs a token for subject carrying roles.
func (s *TokenService) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrTokensDisabled
	}
	now := s.now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies raw and returns its claims.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrTokensDisabled
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return claims, nil
}
