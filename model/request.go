// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user. Role is
// optional and restricted to the configured self-assignable roles.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72,bcryptlen"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=Admin HR Employee"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the opaque refresh token for refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// CreateHRRequest is the admin payload for provisioning an HR user.
type CreateHRRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72,bcryptlen"`
}

// UpdateUserRolesRequest replaces a user's role memberships.
type UpdateUserRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=Admin HR Employee"`
}

// UpdateHRRequest changes an HR user's email and, when set, password.
type UpdateHRRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	NewPassword string `json:"newPassword,omitempty" validate:"omitempty,min=8,max=72,bcryptlen"`
}
