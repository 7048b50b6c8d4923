package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AppClaims is the wire form of an access token.
type AppClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the verified, typed view of an access token. It is produced once
// by the signer and read by handlers; claims are never re-parsed downstream.
type Identity struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	TokenID   string    `json:"jti"`
	Roles     RoleSet   `json:"-"`
	Issuer    string    `json:"iss"`
	Audience  string    `json:"aud"`
	ExpiresAt time.Time `json:"exp"`
}

// HasAnyRole reports whether the identity holds at least one of roles.
func (i *Identity) HasAnyRole(roles ...Role) bool {
	return i.Roles.Intersects(NewRoleSet(roles...))
}

// RoleNames returns the roles as strings in seed order.
func (i *Identity) RoleNames() []string {
	roles := i.Roles.Slice()
	out := make([]string, len(roles))
	for n, r := range roles {
		out[n] = string(r)
	}
	return out
}
