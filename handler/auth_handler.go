package handler

import (
	"context"
	"encoding/json"
	"errors"
	"hrms-api/common"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/service"
	"io"
	"net/http"
)

// AuthService is the session lifecycle used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, identity *model.Identity, refreshToken string) error
}

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RegisterRequest  true  "Credentials"
// @Success      200      {object}  messageResponse
// @Failure      400      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	_, err := h.service.Register(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmailTaken):
		return common.NewAppError(http.StatusConflict, "Email is already registered", nil)
	case errors.Is(err, service.ErrRoleNotAssignable):
		return common.NewValidationError([]string{"role cannot be self-assigned"})
	case errors.Is(err, service.ErrPasswordTooLong):
		return passwordTooLong()
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not register user", err)
	}

	common.WriteJSON(w, http.StatusOK, messageResponse{Message: "User registered successfully"})
	return nil
}

// Login godoc
// @Summary      Log in and receive an access and refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "Credentials"
// @Success      200      {object}  model.TokenPair
// @Failure      401      {object}  common.AppError
// @Failure      429      {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.service.Login(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		return common.NewAppError(http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, service.ErrTooManyAttempts):
		return common.NewAppError(http.StatusTooManyRequests, "Too many failed login attempts. Try again later.", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
	}

	common.WriteJSON(w, http.StatusOK, pair)
	return nil
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  model.TokenPair
// @Failure      401      {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired refresh token", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not refresh token", err)
	}

	common.WriteJSON(w, http.StatusOK, pair)
	return nil
}

// Logout godoc
// @Summary      Revoke the caller's refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.RefreshRequest  false  "Refresh token"
// @Success      200      {object}  messageResponse
// @Failure      401      {object}  common.AppError
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Authentication required", nil)
	}

	// The body is optional; a missing or unreadable one revokes nothing.
	var req model.RefreshRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Log.WithField("user_id", identity.Subject).Debug("Ignoring malformed logout body")
	}

	// Unknown and revoked tokens already succeed in the service. A store
	// failure is reported so the client does not treat the token as revoked.
	if err := h.service.Logout(r.Context(), identity, req.RefreshToken); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not log out", err)
	}

	common.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
	return nil
}
