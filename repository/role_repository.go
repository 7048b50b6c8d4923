package repository

import (
	"context"
	"database/sql"
	"hrms-api/logger"
	"hrms-api/model"
)

type IRoleRepository interface {
	SeedRoles(ctx context.Context, roles []model.Role) error
}

type RoleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

// SeedRoles makes sure every role in roles exists. It is safe to run on every
// startup.
func (r *RoleRepository) SeedRoles(ctx context.Context, roles []model.Role) error {
	for _, role := range roles {
		if _, err := r.DB.ExecContext(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT DO NOTHING`, string(role)); err != nil {
			logger.Log.WithError(err).WithField("role", role).Error("Failed to seed role")
			return err
		}
	}
	logger.Log.WithField("roles", roles).Info("Roles seeded")
	return nil
}
