// service/user_service_test.go
package service

import (
	"context"
	"errors"
	"hrms-api/model"
	"hrms-api/repository"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_ListHRUsers(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		hr := []*model.User{{ID: "u-2", Email: "hr@example.com", Roles: []model.Role{model.RoleHR}}}
		mockRepo.On("GetUsersByRole", model.RoleHR).Return(hr, nil).Once()

		users, err := NewUserService(mockRepo, newTestHasher()).ListHRUsers(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, hr, users)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUsersByRole", model.RoleHR).Return([]*model.User(nil), nil).Once()

		users, err := NewUserService(mockRepo, newTestHasher()).ListHRUsers(context.Background())

		assert.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		expectedError := errors.New("database error")
		mockRepo.On("GetUsersByRole", model.RoleHR).Return(nil, expectedError).Once()

		_, err := NewUserService(mockRepo, newTestHasher()).ListHRUsers(context.Background())

		assert.Equal(t, expectedError, err)
	})
}

func TestUserService_CreateHRUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("CreateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "hr@example.com" && len(u.Roles) == 1 && u.Roles[0] == model.RoleHR
		})).Return(nil).Once()

		user, err := NewUserService(mockRepo, newTestHasher()).CreateHRUser(context.Background(),
			model.CreateHRRequest{Email: "hr@example.com", Password: "secret-pass"})

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.NotEqual(t, "secret-pass", user.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("CreateUser", mock.Anything).Return(repository.ErrEmailTaken).Once()

		_, err := NewUserService(mockRepo, newTestHasher()).CreateHRUser(context.Background(),
			model.CreateHRRequest{Email: "hr@example.com", Password: "secret-pass"})

		assert.True(t, errors.Is(err, ErrEmailTaken))
	})
}

func TestUserService_UpdateUserRoles(t *testing.T) {
	ctx := context.Background()
	admin := &model.Identity{Subject: "admin-1", Roles: model.NewRoleSet(model.RoleAdmin)}

	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		updated := &model.User{ID: "u-2", Roles: []model.Role{model.RoleHR, model.RoleEmployee}}
		mockRepo.On("SetRoles", "u-2", []model.Role{model.RoleHR, model.RoleEmployee}).Return(nil).Once()
		mockRepo.On("GetUserByID", "u-2").Return(updated, nil).Once()

		user, err := NewUserService(mockRepo, newTestHasher()).UpdateUserRoles(ctx, admin, "u-2", []string{"HR", "employee", "HR"})

		assert.NoError(t, err)
		assert.Equal(t, updated, user)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("SetRoles", "missing", []model.Role{model.RoleHR}).Return(repository.ErrUserNotFound).Once()

		_, err := NewUserService(mockRepo, newTestHasher()).UpdateUserRoles(ctx, admin, "missing", []string{"HR"})

		assert.True(t, errors.Is(err, ErrUserNotFound))
	})

	t.Run("invalid role", func(t *testing.T) {
		mockRepo := new(mockUserRepo)

		_, err := NewUserService(mockRepo, newTestHasher()).UpdateUserRoles(ctx, admin, "u-2", []string{"Owner"})

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "SetRoles", mock.Anything, mock.Anything)
	})

	t.Run("admin cannot demote themselves", func(t *testing.T) {
		mockRepo := new(mockUserRepo)

		_, err := NewUserService(mockRepo, newTestHasher()).UpdateUserRoles(ctx, admin, "admin-1", []string{"HR"})

		assert.Equal(t, ErrSelfDemotion, err)
		mockRepo.AssertNotCalled(t, "SetRoles", mock.Anything, mock.Anything)
	})
}

func TestUserService_UpdateHRUser(t *testing.T) {
	ctx := context.Background()
	hasher := newTestHasher()

	t.Run("changes email and password", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "u-2").
			Return(&model.User{ID: "u-2", Email: "hr@example.com", PasswordHash: "old-hash", Roles: []model.Role{model.RoleHR}}, nil).Once()
		mockRepo.On("UpdateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.ID == "u-2" && u.Email == "hr2@example.com" && hasher.CheckPasswordHash("new-secret", u.PasswordHash)
		})).Return(nil).Once()

		user, err := NewUserService(mockRepo, hasher).UpdateHRUser(ctx, "u-2",
			model.UpdateHRRequest{Email: "hr2@example.com", NewPassword: "new-secret"})

		require.NoError(t, err)
		assert.Equal(t, "hr2@example.com", user.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("keeps password when none given", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "u-2").
			Return(&model.User{ID: "u-2", Email: "hr@example.com", PasswordHash: "old-hash", Roles: []model.Role{model.RoleHR}}, nil).Once()
		mockRepo.On("UpdateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.PasswordHash == "old-hash"
		})).Return(nil).Once()

		_, err := NewUserService(mockRepo, hasher).UpdateHRUser(ctx, "u-2", model.UpdateHRRequest{Email: "hr2@example.com"})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("user not found", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "missing").Return(nil, repository.ErrUserNotFound).Once()

		_, err := NewUserService(mockRepo, hasher).UpdateHRUser(ctx, "missing", model.UpdateHRRequest{Email: "hr2@example.com"})

		assert.ErrorIs(t, err, ErrUserNotFound)
		mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything)
	})

	t.Run("rejects a non hr user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "admin-1").
			Return(&model.User{ID: "admin-1", Roles: []model.Role{model.RoleAdmin}}, nil).Once()

		_, err := NewUserService(mockRepo, hasher).UpdateHRUser(ctx, "admin-1", model.UpdateHRRequest{Email: "x@example.com"})

		assert.ErrorIs(t, err, ErrNotHRUser)
		mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything)
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "u-2").
			Return(&model.User{ID: "u-2", Roles: []model.Role{model.RoleHR}}, nil).Once()

		_, err := NewUserService(mockRepo, hasher).UpdateHRUser(ctx, "u-2",
			model.UpdateHRRequest{Email: "hr@example.com", NewPassword: strings.Repeat("é", 40)})

		assert.ErrorIs(t, err, ErrPasswordTooLong)
		mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "u-2").
			Return(&model.User{ID: "u-2", Roles: []model.Role{model.RoleHR}}, nil).Once()
		mockRepo.On("UpdateUser", mock.Anything).Return(repository.ErrEmailTaken).Once()

		_, err := NewUserService(mockRepo, hasher).UpdateHRUser(ctx, "u-2", model.UpdateHRRequest{Email: "admin@example.com"})

		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_DeleteHRUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "u-2").Return(&model.User{ID: "u-2", Roles: []model.Role{model.RoleHR}}, nil).Once()
		mockRepo.On("DeleteUser", "u-2").Return(nil).Once()

		err := NewUserService(mockRepo, newTestHasher()).DeleteHRUser(ctx, "u-2")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("user not found", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "missing").Return(nil, repository.ErrUserNotFound).Once()

		err := NewUserService(mockRepo, newTestHasher()).DeleteHRUser(ctx, "missing")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("rejects a non hr user", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByID", "admin-1").Return(&model.User{ID: "admin-1", Roles: []model.Role{model.RoleAdmin}}, nil).Once()

		err := NewUserService(mockRepo, newTestHasher()).DeleteHRUser(ctx, "admin-1")

		assert.ErrorIs(t, err, ErrNotHRUser)
		mockRepo.AssertNotCalled(t, "DeleteUser", mock.Anything)
	})
}

func TestPasswordHasher_RejectsOver72Bytes(t *testing.T) {
	hasher := newTestHasher()

	_, err := hasher.HashPassword(strings.Repeat("é", 36))
	assert.NoError(t, err, "72 bytes is accepted")

	_, err = hasher.HashPassword(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
