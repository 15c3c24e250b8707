// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/models"
)

const issuer = "cftracker"

// Claims represents JWT claims. Subject holds the user id and ID the token id.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// TokenID returns the jti claim.
func (c *Claims) TokenID() string { return c.ID }

// Remaining returns how long the token stays valid, zero when expired.
func (c *Claims) Remaining() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := time.Until(c.ExpiresAt.Time); d > 0 {
		return d
	}
	return 0
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

// NewJWTManager creates a token manager from the security configuration.
// The secret is required.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required but was empty")
	}
	timeout := cfg.TokenExpiry
	if timeout <= 0 {
		timeout = 240 * time.Hour
	}
	return &JWTManager{
		secret:  []byte(cfg.TokenSecret),
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// Timeout returns the configured token lifetime.
func (m *JWTManager) Timeout() time.Duration { return m.timeout }

// GenerateToken signs a token for user. Each call uses a fresh token id.
func (m *JWTManager) GenerateToken(user *models.User) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken verifies signature, algorithm and expiry and returns the
// claims. All failures wrap ErrInvalidToken.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or token id", ErrInvalidToken)
	}
	return claims, nil
}
