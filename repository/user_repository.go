package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hrms-api/logger"
	"hrms-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// IUserRepository is the credential store: identities, password hashes and
// role memberships.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUsersByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	AddRole(ctx context.Context, q DBTX, userID string, role model.Role) error
	SetRoles(ctx context.Context, userID string, roles []model.Role) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const selectUserWithRoles = `
	SELECT u.id, u.email, u.password_hash, u.created_at,
	       COALESCE(array_agg(ur.role ORDER BY ur.role) FILTER (WHERE ur.role IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	var roles pq.StringArray
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &roles); err != nil {
		return nil, err
	}
	for _, name := range roles {
		if role, err := model.ParseRole(name); err == nil {
			user.Roles = append(user.Roles, role)
		}
	}
	return user, nil
}

// CreateUser inserts the user and its initial roles in one transaction.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"roles":   user.Roles,
	})
	log.Info("Executing query to create a new user")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO users (id, email, email_normalized, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err = tx.QueryRowContext(ctx, query, user.ID, user.Email, model.NormalizeEmail(user.Email), user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("Email already registered")
			return ErrEmailTaken
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}

	for _, role := range user.Roles {
		if err := r.AddRole(ctx, tx, user.ID, role); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up by its normalized email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := selectUserWithRoles + ` WHERE u.email_normalized = $1 GROUP BY u.id`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, model.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get user by email query")
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := selectUserWithRoles + ` WHERE u.id = $1 GROUP BY u.id`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		// A malformed uuid is indistinguishable from an unknown id to callers.
		if isInvalidText(err) {
			return nil, ErrUserNotFound
		}
		logger.Log.WithError(err).WithField("user_id", id).Error("Failed to execute get user by id query")
		return nil, err
	}
	return user, nil
}

// GetUsersByRole lists every user holding role.
func (r *UserRepository) GetUsersByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	log := logger.Log.WithField("role", role)
	log.Info("Executing query to get users by role")

	query := selectUserWithRoles + `
	WHERE u.id IN (SELECT user_id FROM user_roles WHERE role = $1)
	GROUP BY u.id
	ORDER BY u.created_at`
	rows, err := r.DB.QueryContext(ctx, query, string(role))
	if err != nil {
		log.WithError(err).Error("Failed to execute query for users by role")
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan user row")
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// AddRole grants role to the user; granting a held role is a no-op.
func (r *UserRepository) AddRole(ctx context.Context, q DBTX, userID string, role model.Role) error {
	query := `INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := q.ExecContext(ctx, query, userID, string(role)); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"role":    role,
		}).Error("Failed to execute add role query")
		return err
	}
	return nil
}

// SetRoles replaces the user's memberships with roles.
func (r *UserRepository) SetRoles(ctx context.Context, userID string, roles []model.Role) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"roles":   roles,
	})
	log.Info("Executing query to replace user roles")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		log.WithError(err).Error("Failed to check user existence")
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		log.WithError(err).Error("Failed to clear user roles")
		return err
	}
	for _, role := range roles {
		if err := r.AddRole(ctx, tx, userID, role); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// UpdateUser writes the user's email and password hash.
func (r *UserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	log := logger.Log.WithField("user_id", user.ID)
	log.Info("Executing query to update a user")

	query := `UPDATE users SET email = $2, email_normalized = $3, password_hash = $4 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, user.ID, user.Email, model.NormalizeEmail(user.Email), user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("Email already registered")
			return ErrEmailTaken
		}
		if isInvalidText(err) {
			return ErrUserNotFound
		}
		log.WithError(err).Error("Failed to execute update user query")
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}

// DeleteUser removes the user and its role memberships. Refresh tokens are
// kept; they no longer resolve to a user and are rejected on refresh.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to delete a user")

	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return ErrUserNotFound
		}
		log.WithError(err).Error("Failed to execute delete user query")
		return err
	}
	return expectOneRow(res, ErrUserNotFound)
}
