package service

import (
	"context"
	"fmt"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserService handles administrative user management.
type UserService struct {
	userRepo repository.IUserRepository
	hasher   *PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository, hasher *PasswordHasher) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher}
}

func (s *UserService) ListHRUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.GetUsersByRole(ctx, model.RoleHR)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// CreateHRUser provisions a user holding only the HR role.
func (s *UserService) CreateHRUser(ctx context.Context, req model.CreateHRRequest) (*model.User, error) {
	return s.createUser(ctx, req.Email, req.Password, []model.Role{model.RoleHR})
}

func (s *UserService) createUser(ctx context.Context, email, password string, roles []model.Role) (*model.User, error) {
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"roles":   roles,
	}).Info("User created")
	return user, nil
}

// UpdateHRUser changes an HR user's email and, when a new password is given,
// its password hash.
func (s *UserService) UpdateHRUser(ctx context.Context, id string, req model.UpdateHRRequest) (*model.User, error) {
	user, err := s.getHRUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = req.Email
	if req.NewPassword != "" {
		hash, err := s.hasher.HashPassword(req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("could not hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":          user.ID,
		"password_changed": req.NewPassword != "",
	}).Info("HR user updated")
	return user, nil
}

// DeleteHRUser removes an HR user. Its outstanding refresh tokens stop working
// because they no longer resolve to a user.
func (s *UserService) DeleteHRUser(ctx context.Context, id string) error {
	if _, err := s.getHRUser(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		return err
	}

	logger.Log.WithField("user_id", id).Info("HR user deleted")
	return nil
}

func (s *UserService) getHRUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.RoleSet().Has(model.RoleHR) {
		return nil, ErrNotHRUser
	}
	return user, nil
}

// UpdateUserRoles replaces the roles of userID. New roles reach the user's
// access tokens on the next refresh. An admin cannot drop their own Admin role.
func (s *UserService) UpdateUserRoles(ctx context.Context, actor *model.Identity, userID string, names []string) (*model.User, error) {
	roles := make([]model.Role, 0, len(names))
	seen := model.NewRoleSet()
	for _, name := range names {
		role, err := model.ParseRole(name)
		if err != nil {
			return nil, err
		}
		if !seen.Has(role) {
			seen[role] = struct{}{}
			roles = append(roles, role)
		}
	}

	if actor != nil && actor.Subject == userID && !seen.Has(model.RoleAdmin) {
		return nil, ErrSelfDemotion
	}

	if err := s.userRepo.SetRoles(ctx, userID, roles); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserByID(ctx, userID)
}
