package service

import (
	"context"
	"errors"
	"fmt"
	"hrms-api/logger"
	"hrms-api/model"
	"hrms-api/repository"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedUser is one entry of the seed users file.
type SeedUser struct {
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedUsers reads a YAML file of the form:
//
//	users:
//	  - email: admin@example.com
//	    password: change-me-now
//	    roles: [Admin]
func LoadSeedUsers(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeedUsers(data)
}

func parseSeedUsers(data []byte) ([]SeedUser, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, u := range file.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %d: email and password are required", i)
		}
		for _, name := range u.Roles {
			if _, err := model.ParseRole(name); err != nil {
				return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
			}
		}
	}
	return file.Users, nil
}

// SeedUsers creates every listed user whose email is not yet registered.
// Existing users are left untouched, so running it twice is harmless.
func (s *UserService) SeedUsers(ctx context.Context, users []SeedUser) (int, error) {
	created := 0
	for _, u := range users {
		_, err := s.userRepo.GetUserByEmail(ctx, u.Email)
		if err == nil {
			logger.Log.WithField("email", model.NormalizeEmail(u.Email)).Debug("Seed user already exists")
			continue
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return created, err
		}

		roles := make([]model.Role, 0, len(u.Roles))
		for _, name := range u.Roles {
			role, err := model.ParseRole(name)
			if err != nil {
				return created, err
			}
			roles = append(roles, role)
		}

		if _, err := s.createUser(ctx, u.Email, u.Password, roles); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
