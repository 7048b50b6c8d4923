package handler

import (
	"context"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/service"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(_ context.Context, req model.RegisterRequest) (*model.User, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthService) Login(_ context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenPair), args.Error(1)
}

func (m *mockAuthService) Refresh(_ context.Context, refreshToken string) (*model.TokenPair, error) {
	args := m.Called(refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenPair), args.Error(1)
}

func (m *mockAuthService) Logout(_ context.Context, identity *model.Identity, refreshToken string) error {
	args := m.Called(identity, refreshToken)
	return args.Error(0)
}

type mockUserManager struct{ mock.Mock }

func (m *mockUserManager) ListHRUsers(context.Context) ([]*model.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *mockUserManager) CreateHRUser(_ context.Context, req model.CreateHRRequest) (*model.User, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserManager) UpdateHRUser(_ context.Context, id string, req model.UpdateHRRequest) (*model.User, error) {
	args := m.Called(id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserManager) DeleteHRUser(_ context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *mockUserManager) UpdateUserRoles(_ context.Context, actor *model.Identity, userID string, roles []string) (*model.User, error) {
	args := m.Called(actor, userID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// stubVerifier accepts exactly the tokens in its map.
type stubVerifier map[string]*model.Identity

func (v stubVerifier) Verify(token string) (*model.Identity, error) {
	if identity, ok := v[token]; ok {
		return identity, nil
	}
	return nil, service.ErrTokenVerification
}
