package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshLedger_IssueStoresOnlyHash(t *testing.T) {
	repo := newMemTokenRepo()
	clock := newTestClock()
	ledger := newTestLedger(repo, clock)

	raw, record, err := ledger.Issue(context.Background(), "u-1")
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, refreshTokenBytes)

	assert.Equal(t, HashRefreshToken(raw), record.TokenHash)
	assert.NotContains(t, record.TokenHash, raw)
	assert.Len(t, record.TokenHash, 64)
	assert.Equal(t, "u-1", record.UserID)
	assert.False(t, record.Revoked)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), record.ExpiresAt)
}

func TestRefreshLedger_IssueIsUnique(t *testing.T) {
	ledger := newTestLedger(newMemTokenRepo(), newTestClock())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		raw, _, err := ledger.Issue(context.Background(), "u-1")
		require.NoError(t, err)
		assert.False(t, seen[raw])
		seen[raw] = true
	}
}

func TestRefreshLedger_IssueFailsWithoutEntropy(t *testing.T) {
	ledger := newTestLedger(newMemTokenRepo(), newTestClock())
	ledger.random = strings.NewReader("short")

	_, _, err := ledger.Issue(context.Background(), "u-1")
	assert.Error(t, err)
}

func TestRefreshLedger_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("active token", func(t *testing.T) {
		ledger := newTestLedger(newMemTokenRepo(), newTestClock())
		raw, _, err := ledger.Issue(ctx, "u-1")
		require.NoError(t, err)

		userID, err := ledger.Validate(ctx, raw)
		assert.NoError(t, err)
		assert.Equal(t, "u-1", userID)
	})

	t.Run("unknown token", func(t *testing.T) {
		ledger := newTestLedger(newMemTokenRepo(), newTestClock())
		_, err := ledger.Validate(ctx, "never-issued")
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("empty token", func(t *testing.T) {
		ledger := newTestLedger(newMemTokenRepo(), newTestClock())
		_, err := ledger.Validate(ctx, "")
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("expired token", func(t *testing.T) {
		clock := newTestClock()
		ledger := newTestLedger(newMemTokenRepo(), clock)
		raw, _, err := ledger.Issue(ctx, "u-1")
		require.NoError(t, err)

		clock.Advance(7*24*time.Hour - time.Second)
		_, err = ledger.Validate(ctx, raw)
		assert.NoError(t, err)

		clock.Advance(time.Second)
		_, err = ledger.Validate(ctx, raw)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("revoked token", func(t *testing.T) {
		ledger := newTestLedger(newMemTokenRepo(), newTestClock())
		raw, _, err := ledger.Issue(ctx, "u-1")
		require.NoError(t, err)
		require.NoError(t, ledger.Revoke(ctx, raw, "u-1"))

		_, err = ledger.Validate(ctx, raw)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("validation does not consume the token", func(t *testing.T) {
		ledger := newTestLedger(newMemTokenRepo(), newTestClock())
		raw, _, err := ledger.Issue(ctx, "u-1")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = ledger.Validate(ctx, raw)
			assert.NoError(t, err)
		}
	})
}

func TestRefreshLedger_Revoke(t *testing.T) {
	ctx := context.Background()
	repo := newMemTokenRepo()
	ledger := newTestLedger(repo, newTestClock())

	mine, _, err := ledger.Issue(ctx, "u-1")
	require.NoError(t, err)
	other, _, err := ledger.Issue(ctx, "u-1")
	require.NoError(t, err)

	t.Run("foreign owner is not found", func(t *testing.T) {
		err := ledger.Revoke(ctx, mine, "u-2")
		assert.True(t, errors.Is(err, ErrTokenNotFound))
		assert.False(t, repo.isRevoked(mine))
	})

	t.Run("owner revokes only that token", func(t *testing.T) {
		require.NoError(t, ledger.Revoke(ctx, mine, "u-1"))
		assert.True(t, repo.isRevoked(mine))

		_, err := ledger.Validate(ctx, other)
		assert.NoError(t, err, "sibling sessions stay valid")
	})

	t.Run("second revoke is not found", func(t *testing.T) {
		err := ledger.Revoke(ctx, mine, "u-1")
		assert.True(t, errors.Is(err, ErrTokenNotFound))
		assert.True(t, repo.isRevoked(mine), "revocation is permanent")
	})
}
