package handler

import (
	"context"
	"errors"
	"hrms-api/common"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/service"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// UserManager is the administrative user API used by UserHandler.
type UserManager interface {
	ListHRUsers(ctx context.Context) ([]*model.User, error)
	CreateHRUser(ctx context.Context, req model.CreateHRRequest) (*model.User, error)
	UpdateHRUser(ctx context.Context, id string, req model.UpdateHRRequest) (*model.User, error)
	DeleteHRUser(ctx context.Context, id string) error
	UpdateUserRoles(ctx context.Context, actor *model.Identity, userID string, roles []string) (*model.User, error)
}

func passwordTooLong() *common.AppError {
	return common.NewValidationError([]string{"password must be at most 72 bytes"})
}

type UserHandler struct {
	service UserManager
}

func NewUserHandler(service UserManager) *UserHandler {
	return &UserHandler{service: service}
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Me godoc
// @Summary      Show the identity carried by the access token
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  common.AppError
// @Router       /api/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Authentication required", nil)
	}

	common.WriteJSON(w, http.StatusOK, meResponse{
		ID:        identity.Subject,
		Email:     identity.Email,
		Roles:     identity.RoleNames(),
		ExpiresAt: identity.ExpiresAt,
	})
	return nil
}

// ListHRUsers godoc
// @Summary      List HR users
// @Tags         hr
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.User
// @Failure      403  {object}  common.AppError
// @Router       /api/hr/all [get]
func (h *UserHandler) ListHRUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.service.ListHRUsers(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve HR users", err)
	}

	common.WriteJSON(w, http.StatusOK, users)
	return nil
}

// CreateHRUser godoc
// @Summary      Create an HR user
// @Tags         hr
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.CreateHRRequest  true  "HR user"
// @Success      201      {object}  model.User
// @Failure      400      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Router       /api/hr/create [post]
func (h *UserHandler) CreateHRUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateHRRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.CreateHRUser(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return common.NewAppError(http.StatusConflict, "Email is already registered", nil)
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			return passwordTooLong()
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create HR user", err)
	}

	common.WriteJSON(w, http.StatusCreated, user)
	return nil
}

// UpdateHRUser godoc
// @Summary      Update an HR user's email and password
// @Tags         hr
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "User ID"
// @Param        request  body      model.UpdateHRRequest  true  "Changes"
// @Success      200      {object}  model.User
// @Failure      400      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Failure      409      {object}  common.AppError
// @Router       /api/hr/update/{id} [put]
func (h *UserHandler) UpdateHRUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id := r.PathValue("id")
	if id == "" {
		return common.NewValidationError([]string{"id is required"})
	}

	var req model.UpdateHRRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.UpdateHRUser(r.Context(), id, req)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrNotHRUser):
		return common.NewAppError(http.StatusBadRequest, "User is not an HR user", nil)
	case errors.Is(err, service.ErrPasswordTooLong):
		return passwordTooLong()
	case errors.Is(err, service.ErrEmailTaken):
		return common.NewAppError(http.StatusConflict, "Email is already registered", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not update HR user", err)
	}

	common.WriteJSON(w, http.StatusOK, user)
	return nil
}

// DeleteHRUser godoc
// @Summary      Delete an HR user
// @Tags         hr
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/hr/delete/{id} [delete]
func (h *UserHandler) DeleteHRUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id := r.PathValue("id")
	if id == "" {
		return common.NewValidationError([]string{"id is required"})
	}

	err := h.service.DeleteHRUser(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrNotHRUser):
		return common.NewAppError(http.StatusBadRequest, "User is not an HR user", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not delete HR user", err)
	}

	common.WriteJSON(w, http.StatusOK, messageResponse{Message: "HR user deleted"})
	return nil
}

// UpdateUserRoles godoc
// @Summary      Replace a user's roles
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "User ID"
// @Param        request  body      model.UpdateUserRolesRequest  true  "Roles"
// @Success      200      {object}  model.User
// @Failure      400      {object}  common.AppError
// @Failure      404      {object}  common.AppError
// @Router       /api/users/{id}/roles [put]
func (h *UserHandler) UpdateUserRoles(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID := r.PathValue("id")
	if userID == "" {
		return common.NewValidationError([]string{"id is required"})
	}

	var req model.UpdateUserRolesRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	actor, _ := IdentityFromContext(r.Context())
	log := logger.Log.WithFields(logrus.Fields{
		"target_user_id": userID,
		"roles":          req.Roles,
	})
	if actor != nil {
		log = log.WithField("actor_id", actor.Subject)
	}
	log.Info("Update user roles request received")

	user, err := h.service.UpdateUserRoles(r.Context(), actor, userID, req.Roles)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrUserNotFound):
		return common.NewAppError(http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrSelfDemotion):
		return common.NewAppError(http.StatusBadRequest, "Admins cannot remove their own Admin role", nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Could not update user roles", err)
	}

	common.WriteJSON(w, http.StatusOK, user)
	return nil
}
