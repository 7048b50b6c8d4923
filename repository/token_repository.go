// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"hrms-api/logger"
	"hrms-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
type ITokenRepository interface {
	Create(ctx context.Context, q DBTX, token *model.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, q DBTX, tokenHash, userID string) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record. q is r.DB or a caller's transaction.
func (r *TokenRepository) Create(ctx context.Context, q DBTX, token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	if q == nil {
		q = r.DB
	}
	query := `INSERT INTO refresh_tokens (user_id, token_hash, created_at, expires_at, revoked) VALUES ($1, $2, $3, $4, FALSE) RETURNING id`
	err := q.QueryRowContext(ctx, query, token.UserID, token.TokenHash, token.CreatedAt, token.ExpiresAt).Scan(&token.ID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByTokenHash retrieves a refresh token by its hashed value.
func (r *TokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT id, user_id, token_hash, created_at, expires_at, revoked FROM refresh_tokens WHERE token_hash = $1`
	err := r.DB.QueryRowContext(ctx, query, tokenHash).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.CreatedAt, &token.ExpiresAt, &token.Revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get refresh token by hash query")
		return nil, err
	}
	return token, nil
}

// Revoke marks the user's still-unrevoked token as revoked. Unknown, foreign
// and already-revoked tokens all yield ErrTokenNotFound.
func (r *TokenRepository) Revoke(ctx context.Context, q DBTX, tokenHash, userID string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to revoke a refresh token")

	if q == nil {
		q = r.DB
	}
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND user_id = $2 AND revoked = FALSE`
	res, err := q.ExecContext(ctx, query, tokenHash, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke refresh token query")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}
