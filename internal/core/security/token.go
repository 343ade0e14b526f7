// Package security provides bearer-token verification for the API surface.
// It only establishes caller identity; roles are resolved from the
// user-profile store by the permission middleware.
package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "jobdesk/internal/core/context"
)

// TokenConfig holds JWT verification configuration.
type TokenConfig struct {
	Secret string
	Issuer string
}

// DefaultTokenConfig returns default token configuration.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret: secret,
		Issuer: "jobdesk",
	}
}

// Claims represents the JWT claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
}

// TokenVerifier validates access tokens issued by the identity provider.
type TokenVerifier struct {
	config TokenConfig
}

// NewTokenVerifier creates a new token verifier.
func NewTokenVerifier(config TokenConfig) *TokenVerifier {
	return &TokenVerifier{config: config}
}

// ValidateToken parses and verifies a token, returning the caller context.
func (v *TokenVerifier) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &appctx.UserContext{
		UserID:      uid,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// SignToken issues a token for the given identity. Used by the seed tool and
// tests; production tokens come from the identity provider.
func (v *TokenVerifier) SignToken(userID, email, displayName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.config.Secret))
}
