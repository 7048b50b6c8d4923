package model

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleSet returns the user's memberships as a set.
func (u *User) RoleSet() RoleSet {
	return NewRoleSet(u.Roles...)
}

// NormalizeEmail is the case-insensitive lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
