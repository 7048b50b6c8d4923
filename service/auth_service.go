package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuthPolicy holds the configurable parts of the session lifecycle.
type AuthPolicy struct {
	// DefaultRole is granted on first login to a user with no roles. Empty
	// disables auto-assignment.
	DefaultRole         model.Role
	SelfAssignableRoles model.RoleSet
	RotateRefreshTokens bool
}

// AuthService issues, refreshes and terminates sessions.
type AuthService struct {
	db       *sql.DB
	userRepo repository.IUserRepository
	signer   *TokenSigner
	ledger   *RefreshLedger
	hasher   *PasswordHasher
	limiter  LoginLimiter
	policy   AuthPolicy
}

func NewAuthService(db *sql.DB, userRepo repository.IUserRepository, signer *TokenSigner, ledger *RefreshLedger, hasher *PasswordHasher, limiter LoginLimiter, policy AuthPolicy) *AuthService {
	if limiter == nil {
		limiter = noopLoginLimiter{}
	}
	if policy.DefaultRole == model.RoleAdmin {
		policy.DefaultRole = ""
	}
	return &AuthService{
		db:       db,
		userRepo: userRepo,
		signer:   signer,
		ledger:   ledger,
		hasher:   hasher,
		limiter:  limiter,
		policy:   policy,
	}
}

// Signer exposes the token signer to the authorization middleware.
func (s *AuthService) Signer() *TokenSigner {
	return s.signer
}

// Register creates a user. A requested role must be self-assignable; without
// one the user starts with no roles and receives the default role on first login.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	log := logger.Log.WithField("email", model.NormalizeEmail(req.Email))

	var roles []model.Role
	if req.Role != "" {
		role, err := model.ParseRole(req.Role)
		if err != nil || !s.policy.SelfAssignableRoles.Has(role) {
			log.WithField("role", req.Role).Warn("Rejected registration with non-assignable role")
			return nil, ErrRoleNotAssignable
		}
		roles = append(roles, role)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies credentials and opens a session. Default-role assignment and
// the refresh-token insert commit together before the pair is returned.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	key := model.NormalizeEmail(req.Email)
	log := logger.Log.WithField("email", key)

	allowed, err := s.limiter.Allow(ctx, key)
	if err != nil {
		log.WithError(err).Warn("Login limiter unavailable, allowing attempt")
		allowed = true
	}
	if !allowed {
		log.Warn("Login throttled")
		return nil, ErrTooManyAttempts
	}

	user, err := s.userRepo.GetUserByEmail(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		s.hasher.BurnCompare(req.Password)
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, ErrInvalidCredentials
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(user.Roles) == 0 && s.policy.DefaultRole != "" {
		if err := s.userRepo.AddRole(ctx, tx, user.ID, s.policy.DefaultRole); err != nil {
			return nil, fmt.Errorf("could not assign default role: %w", err)
		}
		user.Roles = []model.Role{s.policy.DefaultRole}
		log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"role":    s.policy.DefaultRole,
		}).Info("Assigned default role on first login")
	}

	accessToken, _, err := s.signer.Sign(user)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.ledger.IssueTx(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		log.WithError(err).Warn("Could not reset login failure counter")
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	return &model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.RecordFailure(ctx, key); err != nil {
		logger.Log.WithError(err).WithField("email", key).Warn("Could not record login failure")
	}
}

// Refresh exchanges a valid refresh token for a new access token carrying the
// user's current roles. With rotation enabled the presented token is revoked
// and a new one is returned in the same transaction.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*model.TokenPair, error) {
	userID, err := s.ledger.Validate(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logger.Log.WithField("user_id", userID).Warn("Refresh token belongs to a missing user")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	accessToken, _, err := s.signer.Sign(user)
	if err != nil {
		return nil, err
	}
	pair := &model.TokenPair{AccessToken: accessToken}

	if !s.policy.RotateRefreshTokens {
		return pair, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.ledger.RevokeTx(ctx, tx, rawToken, user.ID); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// Lost a race with a concurrent refresh or logout.
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	next, _, err := s.ledger.IssueTx(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	pair.RefreshToken = next
	return pair, nil
}

// Logout revokes the caller's refresh token. Unknown, foreign and already
// revoked tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, identity *model.Identity, rawToken string) error {
	log := logger.Log.WithField("user_id", identity.Subject)
	if rawToken == "" {
		log.Info("Logout without refresh token")
		return nil
	}

	err := s.ledger.Revoke(ctx, rawToken, identity.Subject)
	if errors.Is(err, repository.ErrTokenNotFound) {
		log.Info("Logout with unknown or already revoked refresh token")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("Refresh token revoked")
	return nil
}
