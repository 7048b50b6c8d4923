package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/repository"
	"io"
	"time"
)

// refreshTokenBytes is the entropy of a refresh token (256 bits).
const refreshTokenBytes = 32

// RefreshLedger issues, validates and revokes opaque refresh tokens. Only the
// SHA-256 of a token is stored; the raw value exists on the client alone.
type RefreshLedger struct {
	repo   repository.ITokenRepository
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewRefreshLedger(repo repository.ITokenRepository, ttl time.Duration) *RefreshLedger {
	return &RefreshLedger{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		random: rand.Reader,
	}
}

// WithClock replaces the time source used for issue and expiry checks.
func (l *RefreshLedger) WithClock(now func() time.Time) *RefreshLedger {
	l.now = now
	return l
}

// HashRefreshToken is the lookup key stored for a raw token.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (l *RefreshLedger) newRawToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := io.ReadFull(l.random, buf); err != nil {
		return "", fmt.Errorf("could not generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue persists a new token for userID and returns its raw value.
func (l *RefreshLedger) Issue(ctx context.Context, userID string) (string, *model.RefreshToken, error) {
	return l.IssueTx(ctx, nil, userID)
}

// IssueTx is Issue within q, which may be a caller-owned transaction.
func (l *RefreshLedger) IssueTx(ctx context.Context, q repository.DBTX, userID string) (string, *model.RefreshToken, error) {
	raw, err := l.newRawToken()
	if err != nil {
		return "", nil, err
	}

	now := l.now().UTC()
	record := &model.RefreshToken{
		UserID:    userID,
		TokenHash: HashRefreshToken(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(l.ttl),
	}
	if err := l.repo.Create(ctx, q, record); err != nil {
		return "", nil, fmt.Errorf("could not persist refresh token: %w", err)
	}
	return raw, record, nil
}

// Validate returns the owner of an active token. It never mutates the ledger.
func (l *RefreshLedger) Validate(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidRefreshToken
	}

	record, err := l.repo.GetByTokenHash(ctx, HashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("could not load refresh token: %w", err)
	}

	if !record.IsActive(l.now()) {
		logger.Log.WithField("user_id", record.UserID).
			WithField("revoked", record.Revoked).
			Info("Rejected inactive refresh token")
		return "", ErrInvalidRefreshToken
	}
	return record.UserID, nil
}

// Revoke marks the user's token revoked. ErrTokenNotFound is returned for
// unknown, foreign or already revoked tokens.
func (l *RefreshLedger) Revoke(ctx context.Context, raw, userID string) error {
	return l.RevokeTx(ctx, nil, raw, userID)
}

func (l *RefreshLedger) RevokeTx(ctx context.Context, q repository.DBTX, raw, userID string) error {
	if raw == "" {
		return ErrTokenNotFound
	}
	return l.repo.Revoke(ctx, q, HashRefreshToken(raw), userID)
}
