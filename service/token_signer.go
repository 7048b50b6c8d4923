package service

import (
	"fmt"
	"hrms-api/logger"
	"hrms-api/model"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner mints and verifies HS256 access tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenSigner struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenSigner fails when any setting is missing; callers treat that as fatal.
func NewTokenSigner(secret, issuer, audience string, ttl time.Duration) (*TokenSigner, error) {
	switch {
	case strings.TrimSpace(secret) == "":
		return nil, fmt.Errorf("%w: empty secret", ErrSignerConfig)
	case issuer == "" || audience == "":
		return nil, fmt.Errorf("%w: issuer and audience are required", ErrSignerConfig)
	case ttl <= 0:
		return nil, fmt.Errorf("%w: non-positive ttl", ErrSignerConfig)
	}
	return &TokenSigner{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source used for iat, exp and verification.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	s.now = now
	return s
}

// TTL is the lifetime given to every access token.
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// Sign snapshots the user's current roles into a new access token with a
// fresh token id.
func (s *TokenSigner) Sign(user *model.User) (string, *model.Identity, error) {
	now := s.now()
	roles := user.RoleSet()
	identity := &model.Identity{
		Subject:   user.ID,
		Email:     user.Email,
		TokenID:   uuid.NewString(),
		Roles:     roles,
		Issuer:    s.issuer,
		Audience:  s.audience,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}

	claims := &model.AppClaims{
		Email: identity.Email,
		Roles: identity.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			ID:        identity.TokenID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to sign JWT")
		return "", nil, fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, identity, nil
}

// Verify checks signature, issuer, audience and expiry. Every failure is
// reported as ErrTokenVerification; the cause is only logged.
func (s *TokenSigner) Verify(tokenString string) (*model.Identity, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		logger.Log.WithError(err).Debug("Access token rejected")
		return nil, ErrTokenVerification
	}
	if claims.Subject == "" || claims.ID == "" {
		logger.Log.Debug("Access token rejected: missing subject or token id")
		return nil, ErrTokenVerification
	}

	roles := model.NewRoleSet()
	for _, name := range claims.Roles {
		if role, err := model.ParseRole(name); err == nil {
			roles[role] = struct{}{}
		}
	}

	return &model.Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		TokenID:   claims.ID,
		Roles:     roles,
		Issuer:    claims.Issuer,
		Audience:  s.audience,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
