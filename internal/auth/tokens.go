// Package auth issues and verifies the access/refresh JWT pair and wraps
// password hashing.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thirdeyegames/coinflip/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload for both token kinds. Email is only set on
// access tokens.
type Claims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies tokens with separate secrets per kind,
// so a leaked access token can never be replayed as a refresh token.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

func (m *TokenManager) IssueAccess(userID uint64, email string) (string, error) {
	return m.sign(userID, email, m.accessSecret, m.accessTTL)
}

func (m *TokenManager) IssueRefresh(userID uint64) (string, error) {
	return m.sign(userID, "", m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, m.accessSecret)
}

func (m *TokenManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, m.refreshSecret)
}

func (m *TokenManager) sign(userID uint64, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	// Random jti keeps two tokens issued in the same second distinct,
	// which token rotation depends on.
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        hex.EncodeToString(jti),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

func (m *TokenManager) verify(raw string, secret []byte) (*Claims, error) {
	claims := new(Claims)

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
