// file: model/role.go

package model

import (
	"fmt"
	"strings"
)

// Role is one of the fixed roles seeded at startup.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleHR       Role = "HR"
	RoleEmployee Role = "Employee"
)

// AllRoles is the seed set, in the order it is written to the store.
var AllRoles = []Role{RoleAdmin, RoleHR, RoleEmployee}

// ParseRole matches a role name case-insensitively against the fixed set.
func ParseRole(name string) (Role, error) {
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", name)
}

// RoleSet is an unordered set of role memberships.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether the set shares at least one role with allowed.
func (s RoleSet) Intersects(allowed RoleSet) bool {
	for r := range allowed {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Slice returns the roles in seed order so tokens are stable for equal sets.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}
